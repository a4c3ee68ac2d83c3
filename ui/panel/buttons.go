package panel

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"snake-console/game/queue"
	"snake-console/game/types"
)

// PollInterval is how often button lines are sampled
const PollInterval = 5 * time.Millisecond

// InputPin is the subset of gpio.PinIn the buttons use
type InputPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// Buttons samples active-low push buttons and enqueues one event per press
type Buttons struct {
	pins  map[types.Button]InputPin
	last  map[types.Button]gpio.Level
	press *queue.Producer[types.Event]
	log   zerolog.Logger
}

// NewButtons configures every pin as a pulled-up input
func NewButtons(pins map[types.Button]InputPin, press *queue.Producer[types.Event], log zerolog.Logger) (*Buttons, error) {
	last := make(map[types.Button]gpio.Level, len(pins))
	for b, pin := range pins {
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, errors.Wrapf(err, "configure %s button", b)
		}
		last[b] = gpio.High
	}
	return &Buttons{
		pins:  pins,
		last:  last,
		press: press,
		log:   log,
	}, nil
}

// Scan samples every pin once. A high to low transition is a press.
func (bt *Buttons) Scan() {
	for b, pin := range bt.pins {
		level := pin.Read()
		if level == gpio.Low && bt.last[b] == gpio.High {
			if !bt.press.Enqueue(types.Event{Button: b}) {
				bt.log.Debug().Str("button", b.String()).Msg("input queue full, press dropped")
			}
		}
		bt.last[b] = level
	}
}

// Poll scans until ctx is done
func (bt *Buttons) Poll(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.Scan()
		}
	}
}
