package entity

import (
	"github.com/pkg/errors"

	"snake-console/game/display"
	"snake-console/game/queue"
	"snake-console/game/types"
)

// Snake is the player. Only the head is tracked as a position; the body is the
// history of cells the head has left, oldest first.
type Snake struct {
	head      types.Point
	direction types.Direction
	history   *queue.Ring[types.Point]
	color     types.Color
}

// StartPosition is where every new snake's head is placed
func StartPosition() types.Point {
	return types.CellPoint(types.GridWidth/2-1, types.GridHeight/2-1)
}

// NewSnake places a snake near the middle of the grid heading down.
// historyCapacity bounds the body length.
func NewSnake(color types.Color, historyCapacity int) *Snake {
	return &Snake{
		head:      StartPosition(),
		direction: types.Down,
		history:   queue.NewRing[types.Point](historyCapacity),
		color:     color,
	}
}

func (s *Snake) Head() types.Point {
	return s.head
}

func (s *Snake) Direction() types.Direction {
	return s.direction
}

// SetDirection changes heading unless dir is the exact reverse of the current one.
// May be called any number of times between ticks; the last accepted value wins.
func (s *Snake) SetDirection(dir types.Direction) {
	// Prevent 180-degree turns
	if dir == s.direction.Opposite() {
		return
	}
	s.direction = dir
}

// Translate advances the head one cell, wrapping at the display edges, and draws it
func (s *Snake) Translate(sink display.Sink) error {
	s.head = step(s.head, s.direction)
	if err := display.FillCell(sink, s.head, s.color); err != nil {
		return errors.Wrap(err, "draw snake head")
	}
	return nil
}

// step moves p one cell in dir with wrap-around on both axes
func step(p types.Point, dir types.Direction) types.Point {
	dx, dy := dir.Delta()
	p.X += dx
	p.Y += dy

	// Wrap-around
	if p.Y < 0 {
		p.Y = types.DisplayHeight - types.CellSize
	}
	if p.X < 0 {
		p.X = types.DisplayWidth - types.CellSize
	}
	if p.X >= types.DisplayWidth {
		p.X = 0
	}
	if p.Y >= types.DisplayHeight {
		p.Y = 0
	}
	return p
}

// IsPlayerEatFood reports whether the head cell overlaps the food cell
func (s *Snake) IsPlayerEatFood(food *Food) bool {
	return !s.head.Cell().Intersect(food.Cell().Cell()).Empty()
}

// IsSelfIntersecting reports whether the head overlaps any cell in the history
func (s *Snake) IsSelfIntersecting() bool {
	head := s.head.Cell()
	for p := range s.history.All() {
		if !p.Cell().Intersect(head).Empty() {
			return true
		}
	}
	return false
}

// Remember pushes the current head onto the history. Must be called before Translate.
// Returns queue.ErrFull when the body cannot grow any further.
func (s *Snake) Remember() error {
	if err := s.history.Push(s.head); err != nil {
		return errors.Wrapf(err, "remember head (%d,%d)", s.head.X, s.head.Y)
	}
	return nil
}

// Shrink drops the oldest history cell and paints it with background, unless
// the head has just moved into it. Returns the dropped cell, or false when the
// history was empty.
func (s *Snake) Shrink(sink display.Sink, background types.Color) (types.Point, bool, error) {
	tail, ok := s.history.Pop()
	if !ok {
		return types.Point{}, false, nil
	}
	// Chasing the tail: the cell is still covered by the head
	if tail == s.head {
		return tail, true, nil
	}
	if err := display.FillCell(sink, tail, background); err != nil {
		return tail, true, errors.Wrap(err, "erase snake tail")
	}
	return tail, true, nil
}

// Len returns the number of history cells, i.e. the body without the head
func (s *Snake) Len() int {
	return s.history.Len()
}

// Size returns the number of cells the snake covers, head included
func (s *Snake) Size() int {
	return s.history.Len() + 1
}

// Occupies reports whether p is the head or part of the body
func (s *Snake) Occupies(p types.Point) bool {
	if p == s.head {
		return true
	}
	for c := range s.history.All() {
		if c == p {
			return true
		}
	}
	return false
}
