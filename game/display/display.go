// Package display defines what the game needs from the screen and the timer.
// Hosts in ui/ implement these contracts; the game never talks to hardware directly.
package display

import (
	"time"

	"github.com/pkg/errors"

	"snake-console/game/types"
)

// Sink accepts filled rectangles and text at display pixel coordinates.
// Whatever was drawn stays on screen until overdrawn, so callers only redraw changed cells.
type Sink interface {
	FillRect(r types.Rect, c types.Color) error
	DrawText(text string, x, y int, c types.Color) error
}

// Clock blocks the caller for the requested duration
type Clock interface {
	Delay(d time.Duration)
}

// FillCell paints the cell at p
func FillCell(s Sink, p types.Point, c types.Color) error {
	if err := s.FillRect(p.Cell(), c); err != nil {
		return errors.Wrapf(err, "fill cell (%d,%d)", p.X, p.Y)
	}
	return nil
}

// Clear paints the whole display
func Clear(s Sink, c types.Color) error {
	if err := s.FillRect(types.Screen, c); err != nil {
		return errors.Wrap(err, "clear display")
	}
	return nil
}

// SleepClock delays with time.Sleep
type SleepClock struct{}

func (SleepClock) Delay(d time.Duration) {
	time.Sleep(d)
}
