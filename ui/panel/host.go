package panel

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"snake-console/config"
	"snake-console/game/queue"
	"snake-console/game/types"
)

// Host bundles the panel, its buttons and the open SPI port
type Host struct {
	*Panel
	Buttons *Buttons
	port    spi.PortCloser
}

// Open loads the periph.io host drivers and claims the SPI port and GPIO lines
// named in cfg
func Open(cfg config.PanelConfig, press *queue.Producer[types.Event], log zerolog.Logger) (*Host, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi port %q", cfg.SPIPort)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SpeedMHz)*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "connect spi")
	}

	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		port.Close()
		return nil, errors.Errorf("dc pin %q not found", cfg.DCPin)
	}
	var reset OutputPin
	if cfg.ResetPin != "" {
		pin := gpioreg.ByName(cfg.ResetPin)
		if pin == nil {
			port.Close()
			return nil, errors.Errorf("reset pin %q not found", cfg.ResetPin)
		}
		reset = pin
	}

	names := map[types.Button]string{
		types.ButtonUp:    cfg.UpPin,
		types.ButtonDown:  cfg.DownPin,
		types.ButtonLeft:  cfg.LeftPin,
		types.ButtonRight: cfg.RightPin,
		types.ButtonOther: cfg.OtherPin,
	}
	pins := make(map[types.Button]InputPin, len(names))
	for b, name := range names {
		pin := gpioreg.ByName(name)
		if pin == nil {
			port.Close()
			return nil, errors.Errorf("%s button pin %q not found", b, name)
		}
		pins[b] = pin
	}

	p := NewPanel(conn, dc, reset, log)
	if err := p.Init(); err != nil {
		port.Close()
		return nil, err
	}
	buttons, err := NewButtons(pins, press, log)
	if err != nil {
		port.Close()
		return nil, err
	}

	log.Info().
		Str("port", cfg.SPIPort).
		Int("mhz", cfg.SpeedMHz).
		Str("dc", cfg.DCPin).
		Msg("panel host opened")
	return &Host{Panel: p, Buttons: buttons, port: port}, nil
}

func (h *Host) Close() error {
	return h.port.Close()
}
