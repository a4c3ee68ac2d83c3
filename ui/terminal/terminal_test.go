package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"snake-console/game/display"
	"snake-console/game/queue"
	"snake-console/game/types"
)

var (
	_ display.Sink  = (*Host)(nil)
	_ display.Clock = (*Host)(nil)
)

func newSimHost(t *testing.T) (*Host, tcell.SimulationScreen, *queue.Consumer[types.Event]) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(Cols, Rows)
	producer, consumer := queue.NewSPSC[types.Event](types.EventQueueCapacity)
	h := New(screen, producer, zerolog.Nop())
	t.Cleanup(h.Close)
	return h, screen, consumer
}

func TestFillCellCoversTwoColumns(t *testing.T) {
	h, screen, _ := newSimHost(t)
	if err := display.FillCell(h, types.CellPoint(3, 2), types.Orange); err != nil {
		t.Fatal(err)
	}
	want := tcellColor(types.Orange)
	for _, col := range []int{6, 7} {
		_, _, style, _ := screen.GetContent(col, 2)
		_, bg, _ := style.Decompose()
		if bg != want {
			t.Errorf("col %d bg = %v, want %v", col, bg, want)
		}
	}
	_, _, style, _ := screen.GetContent(8, 2)
	if _, bg, _ := style.Decompose(); bg == want {
		t.Error("fill leaked into the next cell")
	}
}

func TestFillRectClipsToScreen(t *testing.T) {
	h, _, _ := newSimHost(t)
	if err := h.FillRect(types.Rect{X: 310, Y: 230, W: 50, H: 50}, types.White); err != nil {
		t.Fatal(err)
	}
	if h.bg[Cols-1][Rows-1] != tcellColor(types.White) {
		t.Error("corner cell not painted")
	}
	if err := h.FillRect(types.Rect{X: -100, Y: -100, W: 10, H: 10}, types.White); err != nil {
		t.Fatal(err)
	}
}

func TestDrawTextKeepsBackground(t *testing.T) {
	h, screen, _ := newSimHost(t)
	display.Clear(h, types.Gray)
	if err := h.DrawText("SNAKE", 135, 50, types.White); err != nil {
		t.Fatal(err)
	}
	col, row := 135*ColsPerCell/types.CellSize, 50/types.CellSize
	for i, want := range "SNAKE" {
		ch, _, style, _ := screen.GetContent(col+i, row)
		if ch != want {
			t.Errorf("col %d = %q, want %q", col+i, ch, want)
		}
		fg, bg, _ := style.Decompose()
		if fg != tcellColor(types.White) || bg != tcellColor(types.Gray) {
			t.Errorf("col %d style fg=%v bg=%v", col+i, fg, bg)
		}
	}
}

func TestDrawTextTruncatesAtEdge(t *testing.T) {
	h, screen, _ := newSimHost(t)
	h.DrawText("abcdef", 315, 0, types.White)
	ch, _, _, _ := screen.GetContent(Cols-1, 0)
	if ch != 'a' {
		t.Errorf("last column = %q, want 'a'", ch)
	}
}

func TestKeyButton(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want types.Button
		ok   bool
	}{
		{tcell.KeyUp, 0, types.ButtonUp, true},
		{tcell.KeyDown, 0, types.ButtonDown, true},
		{tcell.KeyLeft, 0, types.ButtonLeft, true},
		{tcell.KeyRight, 0, types.ButtonRight, true},
		{tcell.KeyEnter, 0, types.ButtonOther, true},
		{tcell.KeyRune, ' ', types.ButtonOther, true},
		{tcell.KeyRune, 'w', types.ButtonUp, true},
		{tcell.KeyRune, 'j', types.ButtonDown, true},
		{tcell.KeyRune, 'a', types.ButtonLeft, true},
		{tcell.KeyRune, 'L', types.ButtonRight, true},
		{tcell.KeyRune, 'x', 0, false},
		{tcell.KeyTab, 0, 0, false},
	}
	for _, tc := range tests {
		got, ok := KeyButton(tcell.NewEventKey(tc.key, tc.r, tcell.ModNone))
		if ok != tc.ok || got != tc.want {
			t.Errorf("KeyButton(%v, %q) = %s, %v; want %s, %v", tc.key, tc.r, got, ok, tc.want, tc.ok)
		}
	}
}

func waitEvent(t *testing.T, c *queue.Consumer[types.Event]) types.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ev, ok := c.Dequeue(); ok {
			return ev
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no event received")
	return types.Event{}
}

func TestListenForwardsKeysAndQuits(t *testing.T) {
	h, screen, consumer := newSimHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Listen(cancel)

	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	if ev := waitEvent(t, consumer); ev.Button != types.ButtonLeft {
		t.Errorf("got %s, want left", ev.Button)
	}
	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	if ev := waitEvent(t, consumer); ev.Button != types.ButtonOther {
		t.Errorf("got %s, want other", ev.Button)
	}

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("escape did not cancel")
	}
}
