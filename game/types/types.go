package types

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Display and grid geometry. Cell coordinates are expressed in display pixels
// and are always multiples of CellSize.
const (
	DisplayWidth  = 320
	DisplayHeight = 240
	CellSize      = 10

	GridWidth  = DisplayWidth / CellSize
	GridHeight = DisplayHeight / CellSize
	GridCells  = GridWidth * GridHeight
)

// Queue sizes
const (
	EventQueueCapacity     = 8         // Button events buffered between producer and main loop
	DefaultHistoryCapacity = GridCells // Large enough that the body can cover the whole grid
)

// Point is the top-left pixel of a cell
type Point struct {
	X, Y int
}

// Cell returns the CellSize square whose top-left corner is p
func (p Point) Cell() Rect {
	return Rect{X: p.X, Y: p.Y, W: CellSize, H: CellSize}
}

// GridIndex converts p to column/row indices
func (p Point) GridIndex() (int, int) {
	return p.X / CellSize, p.Y / CellSize
}

// Aligned reports whether p sits on a cell boundary inside the display
func (p Point) Aligned() bool {
	return p.X >= 0 && p.X < DisplayWidth &&
		p.Y >= 0 && p.Y < DisplayHeight &&
		p.X%CellSize == 0 && p.Y%CellSize == 0
}

// CellPoint returns the pixel position of column cx, row cy
func CellPoint(cx, cy int) Point {
	return Point{X: cx * CellSize, Y: cy * CellSize}
}

// Rect is an axis-aligned rectangle in display pixels
type Rect struct {
	X, Y, W, H int
}

// Screen covers the whole display
var Screen = Rect{X: 0, Y: 0, W: DisplayWidth, H: DisplayHeight}

// Empty reports whether r has zero area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of r and o, which is Empty when they only touch
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the bounding box of r and o. An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.X+r.W, o.X+o.W)
	y1 := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Direction is a cardinal heading
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Opposite returns the reverse heading
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta converts a direction into a one-cell pixel offset
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -CellSize
	case Down:
		return 0, CellSize
	case Left:
		return -CellSize, 0
	default:
		return CellSize, 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Color is a 24-bit RGB fill color
type Color struct {
	R, G, B uint8
}

var (
	Black  = Color{R: 0, G: 0, B: 0}
	White  = Color{R: 255, G: 255, B: 255}
	Orange = Color{R: 255, G: 165, B: 0}
	Gray   = Color{R: 128, G: 128, B: 128}
)

// RGB565 packs c into the 16-bit format used by SPI panels
func (c Color) RGB565() uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// ParseColor reads "#rrggbb" or "rrggbb"
func ParseColor(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	var c Color
	if len(s) != 6 {
		return c, errors.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return c, errors.Wrapf(err, "color %q", s)
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return c, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette groups the fill colors the game draws with
type Palette struct {
	Background Color
	Snake      Color
	Food       Color
	Text       Color
}

// DefaultPalette is a white snake and orange food on a black backdrop
func DefaultPalette() Palette {
	return Palette{
		Background: Black,
		Snake:      White,
		Food:       Orange,
		Text:       White,
	}
}

// Button identifies a physical key
type Button uint8

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonOther
)

// Direction maps a directional button to a heading
func (b Button) Direction() (Direction, bool) {
	switch b {
	case ButtonUp:
		return Up, true
	case ButtonDown:
		return Down, true
	case ButtonLeft:
		return Left, true
	case ButtonRight:
		return Right, true
	}
	return 0, false
}

func (b Button) String() string {
	switch b {
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonOther:
		return "other"
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// Event is one button press delivered by the input producer
type Event struct {
	Button Button
}
