package game

import (
	"context"
	"testing"
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

// farCell is away from the snake's starting column
var farCell = types.Point{X: 0, Y: 0}

type harness struct {
	g     *Game
	sink  *display.Recorder
	clock *display.ManualClock
	press *queue.Producer[types.Event]
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	producer, consumer := queue.NewSPSC[types.Event](types.EventQueueCapacity)
	h := &harness{
		sink:  display.NewRecorder(),
		clock: &display.ManualClock{},
		press: producer,
	}
	g, err := New(cfg, h.sink, h.clock, consumer, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.g = g
	return h
}

func (h *harness) step(t *testing.T) {
	t.Helper()
	if err := h.g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func (h *harness) pressButton(t *testing.T, b types.Button) {
	t.Helper()
	if !h.press.Enqueue(types.Event{Button: b}) {
		t.Fatalf("event queue full")
	}
	h.step(t)
}

// start leaves the menu and parks the food out of the snake's way
func (h *harness) start(t *testing.T) {
	t.Helper()
	h.step(t)
	h.pressButton(t, types.ButtonOther)
	if h.g.State() != manager.Playing {
		t.Fatalf("state = %s, want playing", h.g.State())
	}
	h.parkFood(t)
}

// parkFood moves the food to farCell, repainting its old cell as background
func (h *harness) parkFood(t *testing.T) {
	t.Helper()
	if err := display.FillCell(h.sink, h.g.Food().Cell(), h.g.palette.Background); err != nil {
		t.Fatal(err)
	}
	if err := h.g.Food().Place(farCell, h.sink); err != nil {
		t.Fatal(err)
	}
}

// feed puts the food on the head so the next tick eats it
func (h *harness) feed(t *testing.T) {
	t.Helper()
	if err := h.g.Food().Place(h.g.Snake().Head(), h.sink); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) clears() int {
	n := 0
	for _, op := range h.sink.Ops {
		if op.Kind == display.OpFill && op.Rect == types.Screen {
			n++
		}
	}
	return n
}

func TestStateMachineScenario(t *testing.T) {
	h := newHarness(t, nil)

	h.step(t)
	if h.g.State() != manager.Menu {
		t.Fatalf("initial state = %s", h.g.State())
	}
	if h.clears() != 1 {
		t.Fatalf("menu drawn %d times, want 1", h.clears())
	}

	// Directional presses keep the menu and do not redraw it
	for _, b := range []types.Button{types.ButtonUp, types.ButtonDown, types.ButtonLeft, types.ButtonRight} {
		h.pressButton(t, b)
		if h.g.State() != manager.Menu {
			t.Fatalf("%s press left the menu", b)
		}
	}
	if h.clears() != 1 {
		t.Fatalf("menu redrawn while idle: %d clears", h.clears())
	}
	if h.clock.Last() != h.g.cfg.MenuDelay() {
		t.Errorf("menu delay = %v, want %v", h.clock.Last(), h.g.cfg.MenuDelay())
	}

	h.pressButton(t, types.ButtonOther)
	if h.g.State() != manager.Playing {
		t.Fatalf("state = %s, want playing", h.g.State())
	}
	if h.g.Snake() == nil || h.g.Food() == nil {
		t.Fatal("session entities not created")
	}
	h.parkFood(t)

	// Simulated self-intersection: the head is already in the history
	if err := h.g.Snake().Remember(); err != nil {
		t.Fatal(err)
	}
	h.step(t)
	if h.g.State() != manager.GameOver {
		t.Fatalf("state = %s, want game over", h.g.State())
	}
	if h.g.Snake() != nil || h.g.Food() != nil {
		t.Error("session entities should be dropped on game over")
	}
	if h.g.Status().LastOutcome() != manager.OutcomeCrashed {
		t.Errorf("outcome = %s", h.g.Status().LastOutcome())
	}

	h.step(t)
	if h.g.State() != manager.Menu {
		t.Fatalf("state = %s, want menu", h.g.State())
	}
	if h.clock.Last() != h.g.cfg.GameOverHold() {
		t.Errorf("game over hold = %v", h.clock.Last())
	}

	before := h.clears()
	h.step(t)
	if h.clears() != before+1 {
		t.Error("menu not redrawn after returning from game over")
	}
}

func TestGameOverBannerAndScores(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	h.g.Snake().Remember()
	h.sink.Reset()
	h.step(t) // crash

	texts := h.sink.Texts()
	if len(texts) != 2 || texts[0] != "GAME OVER" || texts[1] != "score 0" {
		t.Errorf("game over texts = %q", texts)
	}

	h.step(t) // back to menu
	h.sink.Reset()
	h.step(t) // menu redraw
	found := false
	for _, s := range h.sink.Texts() {
		if s == "last 0  best 0" {
			found = true
		}
	}
	if !found {
		t.Errorf("menu scores missing, texts: %q", h.sink.Texts())
	}
}

func TestGrowthScenario(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	// One plain tick: a one-cell snake stays one cell
	h.step(t)
	if h.g.Snake().Len() != 0 {
		t.Fatalf("history len = %d after plain tick, want 0", h.g.Snake().Len())
	}

	h.feed(t)
	eatenAt := h.g.Snake().Head()
	h.step(t)
	h.parkFood(t)

	if h.g.Snake().Len() != 1 {
		t.Fatalf("history len = %d after eating, want 1", h.g.Snake().Len())
	}
	if h.sink.CellColor(eatenAt) != types.White {
		t.Error("tail cell erased on the growth tick")
	}

	h.step(t)
	if h.g.Snake().Len() != 1 {
		t.Fatalf("history len = %d on the following tick, want 1", h.g.Snake().Len())
	}
	if h.sink.CellColor(eatenAt) != types.Black {
		t.Error("oldest cell not erased on the following tick")
	}
	if h.g.Status().Score() != 1 {
		t.Errorf("score = %d, want 1", h.g.Status().Score())
	}
}

func TestTailChaseKeepsSnakeVisible(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	// Grow to four cells heading down. Every cell the snake enters is
	// painted after the respawned food, so stray food cells never show.
	trail := []types.Point{h.g.Snake().Head()}
	for range 3 {
		h.feed(t)
		h.step(t)
		trail = append(trail, h.g.Snake().Head())
	}
	if err := h.g.Food().Place(farCell, h.sink); err != nil {
		t.Fatal(err)
	}
	if h.g.Snake().Size() != 4 {
		t.Fatalf("size = %d, want 4", h.g.Snake().Size())
	}

	// Circle a 2x2 square: from the second turn on, the head enters the
	// cell the tail leaves on the same tick
	turns := []types.Button{
		types.ButtonRight, types.ButtonUp, types.ButtonLeft,
		types.ButtonDown, types.ButtonRight, types.ButtonUp,
	}
	for i, b := range turns {
		h.pressButton(t, b)
		if h.g.State() != manager.Playing {
			t.Fatalf("turn %d: state = %s, want playing", i, h.g.State())
		}
		trail = append(trail, h.g.Snake().Head())
		if h.g.Snake().Size() != 4 {
			t.Fatalf("turn %d: size = %d, want 4", i, h.g.Snake().Size())
		}
		for _, p := range trail[len(trail)-4:] {
			if h.sink.CellColor(p) != types.White {
				t.Errorf("turn %d: snake cell %+v not drawn", i, p)
			}
		}
	}

	// The cells left behind before the loop closed are background again
	for _, p := range trail[:2] {
		if h.sink.CellColor(p) != types.Black {
			t.Errorf("vacated cell %+v = %v, want background", p, h.sink.CellColor(p))
		}
	}
}

// holdPressClock enqueues presses while the game over banner is held
type holdPressClock struct {
	*display.ManualClock
	hold  time.Duration
	press func()
}

func (c holdPressClock) Delay(d time.Duration) {
	c.ManualClock.Delay(d)
	if d == c.hold {
		c.press()
	}
}

func TestPressesDuringGameOverHoldAreDropped(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	h.g.clock = holdPressClock{
		ManualClock: h.clock,
		hold:        h.g.cfg.GameOverHold(),
		press: func() {
			h.press.Enqueue(types.Event{Button: types.ButtonOther})
			h.press.Enqueue(types.Event{Button: types.ButtonOther})
		},
	}

	h.g.Snake().Remember()
	h.step(t) // crash
	h.step(t) // hold, then back to menu
	if h.g.State() != manager.Menu {
		t.Fatalf("state = %s, want menu", h.g.State())
	}

	h.step(t)
	if h.g.State() != manager.Menu {
		t.Fatalf("press made during the hold started a session, state = %s", h.g.State())
	}

	h.pressButton(t, types.ButtonOther)
	if h.g.State() != manager.Playing {
		t.Errorf("fresh press after the menu: state = %s, want playing", h.g.State())
	}
}

func TestTickRedrawsOnlyChangedCells(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	h.step(t)
	h.step(t)

	h.sink.Reset()
	before := h.g.Snake().Head()
	h.step(t)

	// Plain tick: draw the new head, erase the tail, nothing else
	if len(h.sink.Ops) != 2 {
		t.Fatalf("plain tick made %d draw calls, want 2: %+v", len(h.sink.Ops), h.sink.Ops)
	}
	if h.sink.Ops[0].Rect != h.g.Snake().Head().Cell() || h.sink.Ops[0].Color != types.White {
		t.Errorf("first op = %+v, want head draw", h.sink.Ops[0])
	}
	if h.sink.Ops[1].Rect != before.Cell() || h.sink.Ops[1].Color != types.Black {
		t.Errorf("second op = %+v, want tail erase at %+v", h.sink.Ops[1], before)
	}
	if n := h.sink.Count(types.White); n != 1 {
		t.Errorf("%d white cells on screen, want 1", n)
	}
}

func TestDirectionInput(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.pressButton(t, types.ButtonUp) // reverse of the initial heading
	if h.g.Snake().Direction() != types.Down {
		t.Errorf("reverse press changed heading to %s", h.g.Snake().Direction())
	}
	h.pressButton(t, types.ButtonLeft)
	if h.g.Snake().Direction() != types.Left {
		t.Errorf("heading = %s, want left", h.g.Snake().Direction())
	}
	h.pressButton(t, types.ButtonOther)
	if h.g.State() != manager.Playing || h.g.Snake().Direction() != types.Left {
		t.Error("other button should be ignored while playing")
	}
}

func TestDelayRamp(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	h.step(t)
	if h.clock.Last() != 100*time.Millisecond {
		t.Fatalf("initial tick delay = %v", h.clock.Last())
	}

	want := 100 * time.Millisecond
	for i := 0; i < 20; i++ {
		h.feed(t)
		h.step(t)
		h.parkFood(t)
		if want > 40*time.Millisecond {
			want -= 5 * time.Millisecond
		}
		if h.clock.Last() != want {
			t.Fatalf("after %d meals delay = %v, want %v", i+1, h.clock.Last(), want)
		}
	}
	if h.g.Delay() != 40*time.Millisecond {
		t.Errorf("delay floor = %v, want 40ms", h.g.Delay())
	}
}

func TestWinWhenHistoryFull(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.HistoryCapacity = 2 })
	h.start(t)

	for i := 0; i < 3 && h.g.State() == manager.Playing; i++ {
		h.feed(t)
		h.step(t)
		if h.g.State() == manager.Playing {
			h.parkFood(t)
		}
	}
	if h.g.State() != manager.GameOver {
		t.Fatalf("state = %s, want game over", h.g.State())
	}
	if h.g.Status().LastOutcome() != manager.OutcomeWon {
		t.Errorf("outcome = %s, want won", h.g.Status().LastOutcome())
	}
	found := false
	for _, s := range h.sink.Texts() {
		if s == "YOU WIN" {
			found = true
		}
	}
	if !found {
		t.Error("win banner not drawn")
	}
}

func TestFoodSequenceRepeatsEverySession(t *testing.T) {
	h := newHarness(t, nil)
	h.step(t)
	h.pressButton(t, types.ButtonOther)
	first := h.g.Food().Cell()

	h.g.Snake().Remember()
	h.parkFood(t)
	h.step(t) // crash
	h.step(t) // menu
	h.pressButton(t, types.ButtonOther)
	if h.g.Food().Cell() != first {
		t.Errorf("second session food at %+v, want %+v", h.g.Food().Cell(), first)
	}

	want := entity.NewFood(config.DefaultSeed, types.Orange, types.White).Sample()
	if first != want {
		t.Errorf("first food %+v, want seed-%d cell %+v", first, config.DefaultSeed, want)
	}
}

func TestRandomSeedUsesClock(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.RandomSeed = true })
	h.g.now = func() time.Time { return time.Unix(0, 777) }
	h.step(t)
	h.pressButton(t, types.ButtonOther)
	if h.g.Food().Seed() != 777 {
		t.Errorf("food seed = %d, want 777", h.g.Food().Seed())
	}
}

func TestDrawFailureHalts(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	boom := errors.New("display bus error")
	h.sink.Err = boom
	err := h.g.Run(context.Background())
	if err == nil {
		t.Fatal("Run should stop on draw failure")
	}
	if errors.Cause(err) != boom {
		t.Errorf("Cause = %v, want %v", errors.Cause(err), boom)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestHeadAlwaysInBounds(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	turns := []types.Button{types.ButtonRight, types.ButtonUp, types.ButtonLeft, types.ButtonDown}
	for tick := 0; tick < 300 && h.g.State() == manager.Playing; tick++ {
		if tick%41 == 0 {
			h.press.Enqueue(types.Event{Button: turns[(tick/41)%len(turns)]})
		}
		h.step(t)
		if s := h.g.Snake(); s != nil && !s.Head().Aligned() {
			t.Fatalf("tick %d: head %+v out of bounds", tick, s.Head())
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MinDelayMs = 0
	_, c := queue.NewSPSC[types.Event](types.EventQueueCapacity)
	if _, err := New(cfg, display.NewRecorder(), &display.ManualClock{}, c, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}
}
