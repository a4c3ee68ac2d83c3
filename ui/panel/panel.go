// Package panel drives an ILI9341-class SPI display and five GPIO buttons
// through periph.io. Draws land in a framebuffer and only its dirty regions are
// sent to the panel when the game waits.
package panel

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"snake-console/game/types"
	"snake-console/ui/framebuffer"
)

// Controller commands
const (
	cmdSoftReset   = 0x01
	cmdSleepOut    = 0x11
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdPageAddr    = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMemAccess   = 0x36
	cmdPixelFormat = 0x3A
)

const (
	pixelFormat565  = 0x55
	madctlLandscape = 0x28 // Row/column exchange, BGR order

	// maxChunk bounds a single SPI transfer; most Linux spidev buffers are 4 KiB
	maxChunk = 4096
)

// Bus is the subset of spi.Conn the panel uses
type Bus interface {
	Tx(w, r []byte) error
}

// OutputPin is the subset of gpio.PinOut used for the D/C and reset lines
type OutputPin interface {
	Out(l gpio.Level) error
}

// Panel is a display.Sink and display.Clock
type Panel struct {
	bus   Bus
	dc    OutputPin
	reset OutputPin // Optional
	fb    *framebuffer.Framebuffer
	log   zerolog.Logger
	sleep func(time.Duration)

	// First flush failure, returned by every later draw so the game halts
	err error
}

func NewPanel(bus Bus, dc, reset OutputPin, log zerolog.Logger) *Panel {
	return &Panel{
		bus:   bus,
		dc:    dc,
		reset: reset,
		fb:    framebuffer.New(),
		log:   log,
		sleep: time.Sleep,
	}
}

// Init resets the controller and configures 16-bit landscape mode
func (p *Panel) Init() error {
	if p.reset != nil {
		if err := p.reset.Out(gpio.Low); err != nil {
			return errors.Wrap(err, "assert reset")
		}
		p.sleep(10 * time.Millisecond)
		if err := p.reset.Out(gpio.High); err != nil {
			return errors.Wrap(err, "release reset")
		}
		p.sleep(120 * time.Millisecond)
	}

	steps := []struct {
		cmd   byte
		data  []byte
		pause time.Duration
	}{
		{cmdSoftReset, nil, 150 * time.Millisecond},
		{cmdSleepOut, nil, 120 * time.Millisecond},
		{cmdPixelFormat, []byte{pixelFormat565}, 0},
		{cmdMemAccess, []byte{madctlLandscape}, 0},
		{cmdDisplayOn, nil, 20 * time.Millisecond},
	}
	for _, s := range steps {
		if err := p.command(s.cmd, s.data); err != nil {
			return errors.Wrapf(err, "init command %#02x", s.cmd)
		}
		if s.pause > 0 {
			p.sleep(s.pause)
		}
	}
	p.log.Info().Msg("panel initialized")
	return nil
}

func (p *Panel) command(cmd byte, data []byte) error {
	if err := p.dc.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "dc low")
	}
	if err := p.bus.Tx([]byte{cmd}, nil); err != nil {
		return errors.Wrap(err, "write command")
	}
	if len(data) == 0 {
		return nil
	}
	return p.write(data)
}

func (p *Panel) write(data []byte) error {
	if err := p.dc.Out(gpio.High); err != nil {
		return errors.Wrap(err, "dc high")
	}
	for len(data) > 0 {
		n := min(len(data), maxChunk)
		if err := p.bus.Tx(data[:n], nil); err != nil {
			return errors.Wrap(err, "write data")
		}
		data = data[n:]
	}
	return nil
}

func be16(a, b int) []byte {
	return []byte{byte(a >> 8), byte(a), byte(b >> 8), byte(b)}
}

// Flush sends each dirty region of the framebuffer to panel RAM
func (p *Panel) Flush() error {
	for _, r := range p.fb.Dirty() {
		if err := p.writeWindow(r); err != nil {
			return err
		}
	}
	p.fb.ClearDirty()
	return nil
}

// writeWindow sets the RAM address window to r and streams its pixels
func (p *Panel) writeWindow(r types.Rect) error {
	if err := p.command(cmdColumnAddr, be16(r.X, r.X+r.W-1)); err != nil {
		return err
	}
	if err := p.command(cmdPageAddr, be16(r.Y, r.Y+r.H-1)); err != nil {
		return err
	}
	return p.command(cmdMemoryWrite, p.fb.Region(r))
}

func (p *Panel) FillRect(r types.Rect, c types.Color) error {
	if p.err != nil {
		return p.err
	}
	return p.fb.FillRect(r, c)
}

func (p *Panel) DrawText(text string, x, y int, c types.Color) error {
	if p.err != nil {
		return p.err
	}
	return p.fb.DrawText(text, x, y, c)
}

// Delay flushes pending draws, then sleeps
func (p *Panel) Delay(d time.Duration) {
	if p.err == nil {
		if err := p.Flush(); err != nil {
			p.err = errors.Wrap(err, "flush panel")
			p.log.Error().Err(err).Msg("panel flush failed")
		}
	}
	p.sleep(d)
}
