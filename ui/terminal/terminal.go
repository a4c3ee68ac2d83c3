// Package terminal hosts the game in a tcell screen. Every grid cell becomes
// two terminal columns by one row so the board keeps a square look.
package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"snake-console/game/queue"
	"snake-console/game/types"
)

const (
	ColsPerCell = 2
	Cols        = types.GridWidth * ColsPerCell
	Rows        = types.GridHeight
)

// Host is a display.Sink and display.Clock over a tcell.Screen. Listen is the
// only producer for the button queue.
type Host struct {
	screen tcell.Screen
	press  *queue.Producer[types.Event]
	log    zerolog.Logger

	// Background of every terminal cell, so text keeps what is under it
	bg [Cols][Rows]tcell.Color
}

// Open creates and initializes the real terminal screen
func Open(press *queue.Producer[types.Event], log zerolog.Logger) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "create terminal screen")
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "init terminal screen")
	}
	return New(screen, press, log), nil
}

// New wraps an initialized screen
func New(screen tcell.Screen, press *queue.Producer[types.Event], log zerolog.Logger) *Host {
	screen.HideCursor()
	screen.Clear()
	h := &Host{
		screen: screen,
		press:  press,
		log:    log,
	}
	for c := range h.bg {
		for r := range h.bg[c] {
			h.bg[c][r] = tcell.ColorBlack
		}
	}
	return h
}

func tcellColor(c types.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// FillRect paints every terminal cell whose area overlaps r
func (h *Host) FillRect(r types.Rect, c types.Color) error {
	r = r.Intersect(types.Screen)
	if r.Empty() {
		return nil
	}
	col0 := r.X * ColsPerCell / types.CellSize
	col1 := ((r.X+r.W)*ColsPerCell + types.CellSize - 1) / types.CellSize
	row0 := r.Y / types.CellSize
	row1 := (r.Y + r.H + types.CellSize - 1) / types.CellSize

	bg := tcellColor(c)
	style := tcell.StyleDefault.Background(bg)
	for col := col0; col < col1; col++ {
		for row := row0; row < row1; row++ {
			h.screen.SetContent(col, row, ' ', nil, style)
			h.bg[col][row] = bg
		}
	}
	return nil
}

// DrawText writes text starting at the terminal cell that holds pixel (x, y)
func (h *Host) DrawText(text string, x, y int, c types.Color) error {
	col := x * ColsPerCell / types.CellSize
	row := y / types.CellSize
	if row < 0 || row >= Rows {
		return nil
	}
	fg := tcellColor(c)
	for _, ch := range text {
		if col >= Cols {
			break
		}
		if col >= 0 {
			h.screen.SetContent(col, row, ch, nil, tcell.StyleDefault.Foreground(fg).Background(h.bg[col][row]))
		}
		col++
	}
	return nil
}

// Delay presents the frame, then sleeps
func (h *Host) Delay(d time.Duration) {
	h.screen.Show()
	time.Sleep(d)
}

// KeyButton maps a key press to a console button. Arrows, WASD and HJKL steer;
// Enter and Space are the other button.
func KeyButton(ev *tcell.EventKey) (types.Button, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return types.ButtonUp, true
	case tcell.KeyDown:
		return types.ButtonDown, true
	case tcell.KeyLeft:
		return types.ButtonLeft, true
	case tcell.KeyRight:
		return types.ButtonRight, true
	case tcell.KeyEnter:
		return types.ButtonOther, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W', 'k', 'K':
			return types.ButtonUp, true
		case 's', 'S', 'j', 'J':
			return types.ButtonDown, true
		case 'a', 'A', 'h', 'H':
			return types.ButtonLeft, true
		case 'd', 'D', 'l', 'L':
			return types.ButtonRight, true
		case ' ':
			return types.ButtonOther, true
		}
	}
	return 0, false
}

func isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	return ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')
}

// Listen forwards key presses to the queue until the screen is finalized.
// Quit keys call cancel.
func (h *Host) Listen(cancel context.CancelFunc) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventResize:
			h.screen.Sync()
		case *tcell.EventKey:
			if isQuit(e) {
				h.log.Info().Msg("quit key pressed")
				cancel()
				continue
			}
			b, ok := KeyButton(e)
			if !ok {
				continue
			}
			if !h.press.Enqueue(types.Event{Button: b}) {
				h.log.Debug().Str("button", b.String()).Msg("input queue full, press dropped")
			}
		}
	}
}

// Close restores the terminal
func (h *Host) Close() {
	h.screen.Fini()
}
