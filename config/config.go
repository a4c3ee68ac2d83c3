// Package config holds tunables for the game loop and the hosts.
// Values come from Default, then an optional TOML file, then command-line flags.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"snake-console/game/types"
)

// Host names accepted by Config.Host
const (
	HostWindow   = "window"
	HostTerminal = "terminal"
	HostPanel    = "panel"
)

// DefaultSeed seeds food placement unless random_seed is set
const DefaultSeed = 5

type Config struct {
	Host string `toml:"host"`

	// Food placement
	Seed           uint64 `toml:"seed"`
	RandomSeed     bool   `toml:"random_seed"`      // Seed each session from the clock instead of Seed
	FoodAvoidSnake bool   `toml:"food_avoid_snake"` // Resample food that lands on the body

	// Pacing, in milliseconds
	InitialDelayMs int `toml:"initial_delay_ms"`
	MinDelayMs     int `toml:"min_delay_ms"`
	DelayStepMs    int `toml:"delay_step_ms"`
	MenuDelayMs    int `toml:"menu_delay_ms"`
	GameOverHoldMs int `toml:"game_over_hold_ms"`

	HistoryCapacity int `toml:"history_capacity"`

	Palette PaletteConfig `toml:"palette"`
	Window  WindowConfig  `toml:"window"`
	Panel   PanelConfig   `toml:"panel"`
	Log     LogConfig     `toml:"log"`
}

// PaletteConfig holds "#rrggbb" strings
type PaletteConfig struct {
	Background string `toml:"background"`
	Snake      string `toml:"snake"`
	Food       string `toml:"food"`
	Text       string `toml:"text"`
}

type WindowConfig struct {
	Scale int `toml:"scale"` // Window pixels per display pixel
	FPS   int `toml:"fps"`
}

// PanelConfig names the periph.io SPI port and GPIO lines of an SPI panel board
type PanelConfig struct {
	SPIPort  string `toml:"spi_port"`
	SpeedMHz int    `toml:"speed_mhz"`
	DCPin    string `toml:"dc_pin"`
	ResetPin string `toml:"reset_pin"`
	UpPin    string `toml:"up_pin"`
	DownPin  string `toml:"down_pin"`
	LeftPin  string `toml:"left_pin"`
	RightPin string `toml:"right_pin"`
	OtherPin string `toml:"other_pin"`
}

type LogConfig struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir"`
	Level string `toml:"level"`
}

// Default returns the stock console tuning
func Default() *Config {
	return &Config{
		Host:            HostWindow,
		Seed:            DefaultSeed,
		InitialDelayMs:  100,
		MinDelayMs:      40,
		DelayStepMs:     5,
		MenuDelayMs:     50,
		GameOverHoldMs:  1500,
		HistoryCapacity: types.DefaultHistoryCapacity,
		Palette:         paletteConfigOf(types.DefaultPalette()),
		Window: WindowConfig{
			Scale: 3,
			FPS:   60,
		},
		Panel: PanelConfig{
			SPIPort:  "",
			SpeedMHz: 32,
			DCPin:    "GPIO25",
			ResetPin: "GPIO24",
			UpPin:    "GPIO5",
			DownPin:  "GPIO6",
			LeftPin:  "GPIO13",
			RightPin: "GPIO19",
			OtherPin: "GPIO26",
		},
		Log: LogConfig{
			Dir:   "logs",
			Level: "debug",
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	switch c.Host {
	case HostWindow, HostTerminal, HostPanel:
	default:
		return errors.Errorf("unknown host %q", c.Host)
	}
	if c.InitialDelayMs <= 0 {
		return errors.Errorf("initial_delay_ms must be positive, got %d", c.InitialDelayMs)
	}
	if c.MinDelayMs <= 0 || c.MinDelayMs > c.InitialDelayMs {
		return errors.Errorf("min_delay_ms must be in (0, %d], got %d", c.InitialDelayMs, c.MinDelayMs)
	}
	if c.DelayStepMs < 0 {
		return errors.Errorf("delay_step_ms must not be negative, got %d", c.DelayStepMs)
	}
	if c.MenuDelayMs < 0 || c.GameOverHoldMs < 0 {
		return errors.New("menu_delay_ms and game_over_hold_ms must not be negative")
	}
	if c.HistoryCapacity <= 0 {
		return errors.Errorf("history_capacity must be positive, got %d", c.HistoryCapacity)
	}
	if _, err := c.Palette.Resolve(); err != nil {
		return err
	}
	if c.Window.Scale <= 0 {
		return errors.Errorf("window.scale must be positive, got %d", c.Window.Scale)
	}
	if c.Host == HostPanel && c.Panel.DCPin == "" {
		return errors.New("panel.dc_pin is required for the panel host")
	}
	return nil
}

func paletteConfigOf(p types.Palette) PaletteConfig {
	return PaletteConfig{
		Background: p.Background.String(),
		Snake:      p.Snake.String(),
		Food:       p.Food.String(),
		Text:       p.Text.String(),
	}
}

// Resolve parses the palette strings
func (p PaletteConfig) Resolve() (types.Palette, error) {
	var (
		out types.Palette
		err error
	)
	fields := []struct {
		name string
		src  string
		dst  *types.Color
	}{
		{"background", p.Background, &out.Background},
		{"snake", p.Snake, &out.Snake},
		{"food", p.Food, &out.Food},
		{"text", p.Text, &out.Text},
	}
	for _, f := range fields {
		if *f.dst, err = types.ParseColor(f.src); err != nil {
			return out, errors.Wrapf(err, "palette.%s", f.name)
		}
	}
	return out, nil
}

func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

func (c *Config) DelayStep() time.Duration {
	return time.Duration(c.DelayStepMs) * time.Millisecond
}

func (c *Config) MenuDelay() time.Duration {
	return time.Duration(c.MenuDelayMs) * time.Millisecond
}

func (c *Config) GameOverHold() time.Duration {
	return time.Duration(c.GameOverHoldMs) * time.Millisecond
}

// SessionSeed returns the seed for a new play session
func (c *Config) SessionSeed(now time.Time) uint64 {
	if c.RandomSeed {
		return uint64(now.UnixNano())
	}
	return c.Seed
}
