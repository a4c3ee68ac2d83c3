package manager

import (
	"snake-console/game/entity"
	"snake-console/game/types"
)

// CollisionType represents the outcome of a collision check
type CollisionType int

const (
	NoCollision CollisionType = iota
	FoodCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case FoodCollision:
		return "food"
	case SelfCollision:
		return "self"
	}
	return "none"
}

// Collisions holds both checks for one tick. Eating and crashing are evaluated
// independently: food is consumed even on the tick the snake bites itself.
type Collisions struct {
	Ate  bool
	Self bool
}

type CollisionManager struct{}

func NewCollisionManager() *CollisionManager {
	return &CollisionManager{}
}

// Check runs the food and self-intersection tests against the current head
func (cm *CollisionManager) Check(snake *entity.Snake, food *entity.Food) Collisions {
	return Collisions{
		Ate:  food != nil && snake.IsPlayerEatFood(food),
		Self: snake.IsSelfIntersecting(),
	}
}

// Classify reduces a Collisions to the most severe type
func (c Collisions) Classify() CollisionType {
	switch {
	case c.Self:
		return SelfCollision
	case c.Ate:
		return FoodCollision
	}
	return NoCollision
}

// ValidateSpawnPosition checks if a cell is free for food
func (cm *CollisionManager) ValidateSpawnPosition(pos types.Point, snake *entity.Snake) bool {
	if !pos.Aligned() {
		return false
	}
	return snake == nil || !snake.Occupies(pos)
}

// IsBoardFull reports whether the snake covers every cell of the grid
func (cm *CollisionManager) IsBoardFull(snake *entity.Snake) bool {
	return snake.Size() >= types.GridCells
}
