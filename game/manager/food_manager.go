package manager

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"snake-console/game/display"
	"snake-console/game/entity"
	"snake-console/game/types"
)

// MaxPlacementTries bounds the rejection loop when food must avoid the snake
const MaxPlacementTries = 4 * types.GridCells

// FoodManager decides where food goes. By default it keeps the classic behaviour of
// taking the generator's next cell as-is, which may land under the snake's body.
// With AvoidSnake it resamples until the cell is free.
type FoodManager struct {
	collisionMgr *CollisionManager
	avoidSnake   bool
	color        types.Color
	erase        types.Color
	log          zerolog.Logger
}

func NewFoodManager(collisionMgr *CollisionManager, avoidSnake bool, color, erase types.Color, log zerolog.Logger) *FoodManager {
	return &FoodManager{
		collisionMgr: collisionMgr,
		avoidSnake:   avoidSnake,
		color:        color,
		erase:        erase,
		log:          log,
	}
}

// Spawn creates the session's food with a fresh generator and draws it
func (fm *FoodManager) Spawn(seed uint64, snake *entity.Snake, sink display.Sink) (*entity.Food, error) {
	var (
		food *entity.Food
		err  error
	)
	if fm.avoidSnake {
		food = entity.NewFood(seed, fm.color, fm.erase)
		err = food.Place(fm.nextCell(food, snake), sink)
	} else {
		food, err = entity.SpawnFood(seed, fm.color, fm.erase, sink)
	}
	if err != nil {
		return nil, errors.Wrap(err, "spawn food")
	}
	cell := food.Cell()
	fm.log.Debug().Uint64("seed", seed).Int("x", cell.X).Int("y", cell.Y).Msg("food spawned")
	return food, nil
}

// Respawn moves eaten food to its next cell
func (fm *FoodManager) Respawn(food *entity.Food, snake *entity.Snake, sink display.Sink) error {
	var err error
	if fm.avoidSnake {
		err = food.MoveTo(fm.nextCell(food, snake), sink)
	} else {
		err = food.Respawn(sink)
	}
	if err != nil {
		return errors.Wrap(err, "respawn food")
	}
	cell := food.Cell()
	fm.log.Debug().Int("x", cell.X).Int("y", cell.Y).Msg("food respawned")
	return nil
}

// nextCell samples the generator, rejecting occupied cells when avoidSnake is set.
// Falls back to the last sample after MaxPlacementTries so a nearly full board cannot stall the loop.
func (fm *FoodManager) nextCell(food *entity.Food, snake *entity.Snake) types.Point {
	cell := food.Sample()
	if !fm.avoidSnake {
		return cell
	}
	for i := 1; i < MaxPlacementTries; i++ {
		if fm.collisionMgr.ValidateSpawnPosition(cell, snake) {
			return cell
		}
		cell = food.Sample()
	}
	fm.log.Warn().Int("tries", MaxPlacementTries).Msg("no free cell for food, placing under snake")
	return cell
}
