package main

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/cardsim/internal/autodraw"
	"github.com/lox/cardsim/internal/config"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/lox/cardsim/internal/session"
)

// Globals are flags shared by every command
type Globals struct {
	Config   string         `kong:"default='cardsim.hcl',help='Path to HCL config file'"`
	Debug    bool           `kong:"help='Enable debug logging'"`
	Seed     *int64         `kong:"help='Deterministic RNG seed (optional)'"`
	Interval *time.Duration `kong:"help='Auto-draw interval, e.g. 500ms'"`
}

// load resolves config file, environment and flags, in that order of precedence
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if g.Seed != nil {
		cfg.Simulation.Seed = *g.Seed
	}
	if g.Interval != nil {
		cfg.Simulation.Interval = *g.Interval
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession builds a controller from config, logging the seed so the run can be replayed
func newSession(cfg *config.Config, logger *log.Logger) (*session.Controller, int64) {
	seed := randutil.Resolve(cfg.Simulation.Seed)
	logger.Info("Using seed", "seed", seed, "interval", cfg.Simulation.Interval)

	return session.New(session.Config{
		Rand:   randutil.New(seed),
		Logger: logger,
		DriverOptions: []autodraw.Option{
			autodraw.WithInterval(cfg.Simulation.Interval),
		},
	}), seed
}
