// Package config loads cardsim settings from an HCL file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Environment variable names that override the config file
const (
	// EnvSeed sets the random seed (0 picks one)
	EnvSeed = "CARDSIM_SEED"

	// EnvInterval sets the auto-draw interval, e.g. "250ms"
	EnvInterval = "CARDSIM_INTERVAL"
)

// DefaultFile is the config file looked up when none is given
const DefaultFile = "cardsim.hcl"

// Config is the resolved configuration
type Config struct {
	Simulation SimulationSettings
	Server     ServerSettings
	Log        LogSettings
}

// SimulationSettings controls drawing
type SimulationSettings struct {
	Interval time.Duration
	Seed     int64
}

// ServerSettings controls the WebSocket feed
type ServerSettings struct {
	Address string
	Port    int
}

// LogSettings controls logging
type LogSettings struct {
	Level string
	File  string
}

// Addr returns host:port for the listener
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// fileConfig mirrors the HCL layout; every block is optional
type fileConfig struct {
	Simulation *simulationBlock `hcl:"simulation,block"`
	Server     *serverBlock     `hcl:"server,block"`
	Log        *logBlock        `hcl:"log,block"`
}

type simulationBlock struct {
	Interval string `hcl:"interval,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

type serverBlock struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Simulation: SimulationSettings{
			Interval: 500 * time.Millisecond,
			Seed:     0,
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := cfg.apply(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overlays values present in the file onto the defaults
func (c *Config) apply(fc fileConfig) error {
	if sim := fc.Simulation; sim != nil {
		if sim.Interval != "" {
			d, err := time.ParseDuration(sim.Interval)
			if err != nil {
				return fmt.Errorf("invalid simulation interval %q: %w", sim.Interval, err)
			}
			c.Simulation.Interval = d
		}
		c.Simulation.Seed = sim.Seed
	}

	if srv := fc.Server; srv != nil {
		if srv.Address != "" {
			c.Server.Address = srv.Address
		}
		if srv.Port != 0 {
			c.Server.Port = srv.Port
		}
	}

	if l := fc.Log; l != nil {
		if l.Level != "" {
			c.Log.Level = l.Level
		}
		c.Log.File = l.File
	}
	return nil
}

// ApplyEnv overrides settings from CARDSIM_* environment variables
func (c *Config) ApplyEnv() error {
	if seedStr := os.Getenv(EnvSeed); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Simulation.Seed = seed
	}

	if intervalStr := os.Getenv(EnvInterval); intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvInterval, err)
		}
		c.Simulation.Interval = d
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Simulation.Interval <= 0 {
		return fmt.Errorf("simulation interval must be positive, got %s", c.Simulation.Interval)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}
