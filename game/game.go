package game

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"snake-console/config"
	"snake-console/game/display"
	"snake-console/game/entity"
	"snake-console/game/manager"
	"snake-console/game/queue"
	"snake-console/game/types"
)

// Game is the main loop. It owns the state machine, the per-session snake and
// food, and all drawing; hosts only supply the sink, the clock and the input queue.
type Game struct {
	cfg     *config.Config
	palette types.Palette
	sink    display.Sink
	clock   display.Clock
	input   *queue.Consumer[types.Event]
	log     zerolog.Logger
	now     func() time.Time

	status     *manager.StateManager
	collisions *manager.CollisionManager
	foods      *manager.FoodManager

	// Session state, nil outside Playing
	snake *entity.Snake
	food  *entity.Food

	initFlag bool          // Menu artwork drawn since the last Menu entry
	grow     bool          // Food eaten this tick, skip the tail pop
	delay    time.Duration // Per-tick delay, shrinks as food is eaten
}

func New(cfg *config.Config, sink display.Sink, clock display.Clock, input *queue.Consumer[types.Event], log zerolog.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	palette, err := cfg.Palette.Resolve()
	if err != nil {
		return nil, err
	}

	collisions := manager.NewCollisionManager()
	// Eaten food sits under the snake's head, so the old food cell is repainted in
	// the snake color rather than the background
	foods := manager.NewFoodManager(collisions, cfg.FoodAvoidSnake, palette.Food, palette.Snake, log)

	return &Game{
		cfg:        cfg,
		palette:    palette,
		sink:       sink,
		clock:      clock,
		input:      input,
		log:        log,
		now:        time.Now,
		status:     manager.NewStateManager(log),
		collisions: collisions,
		foods:      foods,
		delay:      cfg.InitialDelay(),
	}, nil
}

// Run steps the loop until ctx is cancelled or a draw fails
func (g *Game) Run(ctx context.Context) error {
	g.log.Info().Str("state", g.status.State().String()).Msg("game loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.Step(); err != nil {
			return errors.Wrap(err, "game halted")
		}
	}
}

// Step runs one orchestrator iteration: take at most one button event, then
// advance whichever state is active
func (g *Game) Step() error {
	ev, ok := g.input.Dequeue()

	switch g.status.State() {
	case manager.Menu:
		return g.stepMenu(ev, ok)
	case manager.Playing:
		return g.stepPlaying(ev, ok)
	case manager.GameOver:
		return g.stepGameOver()
	}
	return errors.Errorf("unknown state %s", g.status.State())
}

func (g *Game) stepMenu(ev types.Event, ok bool) error {
	if !g.initFlag {
		if err := g.drawMenu(); err != nil {
			return err
		}
		g.initFlag = true
	}

	if ok {
		started, err := g.status.HandleMenuPress(ev.Button)
		if err != nil {
			return err
		}
		if started {
			return g.startSession()
		}
	}

	g.clock.Delay(g.cfg.MenuDelay())
	return nil
}

// startSession builds a fresh snake and food on a cleared backdrop
func (g *Game) startSession() error {
	g.initFlag = false
	g.grow = false
	g.delay = g.cfg.InitialDelay()

	if err := display.Clear(g.sink, g.palette.Background); err != nil {
		return err
	}

	g.snake = entity.NewSnake(g.palette.Snake, g.cfg.HistoryCapacity)
	if err := g.snake.Translate(g.sink); err != nil {
		return err
	}

	seed := g.cfg.SessionSeed(g.now())
	food, err := g.foods.Spawn(seed, g.snake, g.sink)
	if err != nil {
		return err
	}
	g.food = food

	g.log.Debug().
		Str("session", g.status.SessionID()).
		Uint64("seed", seed).
		Dur("delay", g.delay).
		Msg("playfield ready")
	return nil
}

// stepPlaying is one simulation and render tick
func (g *Game) stepPlaying(ev types.Event, ok bool) error {
	if ok {
		if dir, directional := ev.Button.Direction(); directional {
			g.snake.SetDirection(dir)
		}
	}

	hit := g.collisions.Check(g.snake, g.food)
	if kind := hit.Classify(); kind != manager.NoCollision {
		g.log.Debug().
			Stringer("collision", kind).
			Int("x", g.snake.Head().X).
			Int("y", g.snake.Head().Y).
			Msg("collision")
	}
	if hit.Ate {
		if err := g.foods.Respawn(g.food, g.snake, g.sink); err != nil {
			return err
		}
		g.grow = true
		g.status.AddPoint()
		g.speedUp()
	}

	if hit.Self {
		return g.endSession(manager.OutcomeCrashed)
	}

	// The cell being left becomes the newest body cell
	if err := g.snake.Remember(); err != nil {
		if errors.Is(err, queue.ErrFull) {
			return g.endSession(manager.OutcomeWon)
		}
		return err
	}
	if err := g.snake.Translate(g.sink); err != nil {
		return err
	}
	// Growing keeps the tail on screen for exactly one tick
	if !g.grow {
		if _, _, err := g.snake.Shrink(g.sink, g.palette.Background); err != nil {
			return err
		}
	}
	g.grow = false

	if g.collisions.IsBoardFull(g.snake) {
		return g.endSession(manager.OutcomeWon)
	}

	g.clock.Delay(g.delay)
	return nil
}

// speedUp shortens the tick delay by one step, never below the floor
func (g *Game) speedUp() {
	floor := g.cfg.MinDelay()
	if g.delay <= floor {
		return
	}
	g.delay -= g.cfg.DelayStep()
	if g.delay < floor {
		g.delay = floor
	}
	g.log.Debug().Dur("delay", g.delay).Int("score", g.status.Score()).Msg("speed up")
}

func (g *Game) endSession(outcome manager.Outcome) error {
	g.grow = false
	if err := g.status.Finish(outcome); err != nil {
		return err
	}
	if err := g.drawGameOver(outcome); err != nil {
		return err
	}
	g.snake = nil
	g.food = nil
	return nil
}

func (g *Game) stepGameOver() error {
	g.clock.Delay(g.cfg.GameOverHold())

	// Presses made while the banner was up belong to the finished session
	if n := g.input.Len(); n > 0 {
		for range n {
			g.input.Dequeue()
		}
		g.log.Debug().Int("dropped", n).Msg("discarded presses from game over hold")
	}

	g.initFlag = false
	return g.status.ReturnToMenu()
}

func (g *Game) State() manager.State {
	return g.status.State()
}

func (g *Game) Status() *manager.StateManager {
	return g.status
}

// Snake returns the active snake, nil outside Playing
func (g *Game) Snake() *entity.Snake {
	return g.snake
}

// Food returns the active food, nil outside Playing
func (g *Game) Food() *entity.Food {
	return g.food
}

// Delay returns the current per-tick delay
func (g *Game) Delay() time.Duration {
	return g.delay
}
