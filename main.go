package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"snake-console/config"
	"snake-console/game"
	"snake-console/game/display"
	"snake-console/game/queue"
	"snake-console/game/types"
	"snake-console/ui/panel"
	"snake-console/ui/terminal"
	"snake-console/ui/window"
)

const (
	logFileName = "snake.log"
	maxLogSize  = 10 * 1024 * 1024
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	hostName := flag.String("host", config.HostWindow, "Display host: window, terminal or panel")
	seed := flag.Uint64("seed", config.DefaultSeed, "Food placement seed")
	speed := flag.Int("speed", 100, "Initial tick delay in milliseconds (lower = faster)")
	debug := flag.Bool("debug", false, "Write a debug log under the log directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(2)
	}

	// Flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *hostName
		case "seed":
			cfg.Seed = *seed
		case "speed":
			cfg.InitialDelayMs = *speed
			cfg.MinDelayMs = min(cfg.MinDelayMs, *speed)
		case "debug":
			cfg.Log.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(2)
	}

	log, logFile, err := setupLogging(cfg.Log.Dir, cfg.Log.Debug, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		// The game cannot recover from a failed draw; stop where we are
		log.Error().Err(err).Msg("halted")
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
	log.Info().Msg("exit")
}

// run opens the configured host and drives the game until it is closed
func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	press, input := queue.NewSPSC[types.Event](types.EventQueueCapacity)

	var (
		sink  display.Sink
		clock display.Clock
	)
	hostLog := log.With().Str("host", cfg.Host).Logger()
	switch cfg.Host {
	case config.HostTerminal:
		h, err := terminal.Open(press, hostLog)
		if err != nil {
			return err
		}
		// Deferred so the terminal is restored even if the game panics
		defer h.Close()
		go h.Listen(cancel)
		sink, clock = h, h

	case config.HostPanel:
		h, err := panel.Open(cfg.Panel, press, hostLog)
		if err != nil {
			return err
		}
		defer h.Close()
		go h.Buttons.Poll(ctx)
		sink, clock = h, h

	default:
		r := window.Open(cfg.Window, press, cancel, hostLog)
		defer r.Close()
		sink, clock = r, r
	}

	g, err := game.New(cfg, sink, clock, input, log.With().Str("component", "game").Logger())
	if err != nil {
		return err
	}
	return g.Run(ctx)
}

// setupLogging returns a file logger when debug is set and a no-op logger
// otherwise. The terminal host owns stdout, so nothing is ever written there.
func setupLogging(dir string, debug bool, level string) (zerolog.Logger, *os.File, error) {
	if !debug {
		return zerolog.Nop(), nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "create log directory")
	}
	path := filepath.Join(dir, logFileName)

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(dir, fmt.Sprintf("snake-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(path, rotated); err != nil {
			return zerolog.Nop(), nil, errors.Wrap(err, "rotate log")
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "open log file")
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}
	log := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	log.Info().Str("path", path).Str("level", lvl.String()).Msg("logging started")
	return log, f, nil
}
