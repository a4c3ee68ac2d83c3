package display

import (
	"time"

	"snake-console/game/types"
)

// OpKind tags a recorded draw call
type OpKind int

const (
	OpFill OpKind = iota
	OpText
)

// Op is one draw call captured by Recorder
type Op struct {
	Kind  OpKind
	Rect  types.Rect
	Text  string
	Color types.Color
}

// Recorder is an in-memory Sink. It keeps every call and the last color of each
// cell so tests can assert on what is visible without a real screen.
type Recorder struct {
	Ops  []Op
	Err  error // When set, every draw fails with Err
	grid [types.GridWidth][types.GridHeight]types.Color
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) FillRect(rect types.Rect, c types.Color) error {
	if r.Err != nil {
		return r.Err
	}
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Color: c})

	clipped := rect.Intersect(types.Screen)
	if clipped.Empty() {
		return nil
	}
	for x := clipped.X / types.CellSize; x*types.CellSize < clipped.X+clipped.W; x++ {
		for y := clipped.Y / types.CellSize; y*types.CellSize < clipped.Y+clipped.H; y++ {
			r.grid[x][y] = c
		}
	}
	return nil
}

func (r *Recorder) DrawText(text string, x, y int, c types.Color) error {
	if r.Err != nil {
		return r.Err
	}
	r.Ops = append(r.Ops, Op{Kind: OpText, Rect: types.Rect{X: x, Y: y}, Text: text, Color: c})
	return nil
}

// CellColor returns the last fill color covering the cell at p
func (r *Recorder) CellColor(p types.Point) types.Color {
	cx, cy := p.GridIndex()
	return r.grid[cx][cy]
}

// Count returns how many cells currently show c
func (r *Recorder) Count(c types.Color) int {
	n := 0
	for x := range r.grid {
		for y := range r.grid[x] {
			if r.grid[x][y] == c {
				n++
			}
		}
	}
	return n
}

// Texts returns every string drawn so far, in order
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps the visible grid
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// ManualClock records delays instead of sleeping
type ManualClock struct {
	Delays  []time.Duration
	Elapsed time.Duration
}

func (m *ManualClock) Delay(d time.Duration) {
	m.Delays = append(m.Delays, d)
	m.Elapsed += d
}

// Last returns the most recent delay, or zero
func (m *ManualClock) Last() time.Duration {
	if len(m.Delays) == 0 {
		return 0
	}
	return m.Delays[len(m.Delays)-1]
}
