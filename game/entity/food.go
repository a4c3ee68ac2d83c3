package entity

import (
	"github.com/pkg/errors"

	"snake-console/game/display"
	"snake-console/game/rng"
	"snake-console/game/types"
)

// Food is the single edible cell. Its generator lives as long as the Food, so
// respawns within one session continue the same seeded sequence.
type Food struct {
	cell  types.Point
	rng   *rng.Generator
	color types.Color
	erase types.Color
}

// NewFood creates food with a fresh generator. Nothing is drawn until Place.
// erase is the color used to paint over the old cell on respawn.
func NewFood(seed uint64, color, erase types.Color) *Food {
	return &Food{
		rng:   rng.New(seed),
		color: color,
		erase: erase,
	}
}

// SpawnFood creates food, samples its first cell and draws it
func SpawnFood(seed uint64, color, erase types.Color, sink display.Sink) (*Food, error) {
	f := NewFood(seed, color, erase)
	if err := f.Place(f.Sample(), sink); err != nil {
		return nil, err
	}
	return f, nil
}

// Cell returns the current food position
func (f *Food) Cell() types.Point {
	return f.cell
}

// Seed returns the seed the generator started from
func (f *Food) Seed() uint64 {
	return f.rng.Seed()
}

// Sample draws the next candidate cell from the generator without moving the food
func (f *Food) Sample() types.Point {
	cx, cy := f.rng.NextCell(types.GridWidth, types.GridHeight)
	return types.CellPoint(int(cx), int(cy))
}

// Place sets the food at p and draws it, without erasing anything
func (f *Food) Place(p types.Point, sink display.Sink) error {
	f.cell = p
	if err := display.FillCell(sink, p, f.color); err != nil {
		return errors.Wrap(err, "draw food")
	}
	return nil
}

// MoveTo erases the current cell and places the food at p
func (f *Food) MoveTo(p types.Point, sink display.Sink) error {
	if err := display.FillCell(sink, f.cell, f.erase); err != nil {
		return errors.Wrap(err, "erase food")
	}
	return f.Place(p, sink)
}

// Respawn erases the current cell and moves the food to a freshly sampled one
func (f *Food) Respawn(sink display.Sink) error {
	return f.MoveTo(f.Sample(), sink)
}
