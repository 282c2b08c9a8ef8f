package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lox/cardsim/cmd/cardsim/shared"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/lox/cardsim/internal/simulator"
)

// SimCmd compares computed odds with empirical draw frequencies
type SimCmd struct {
	Trials  int    `kong:"default='100000',help='Number of draw sequences'"`
	Depth   int    `kong:"default='1',help='Which draw of each sequence to record'"`
	Workers int    `kong:"default='0',help='Worker goroutines (0 = GOMAXPROCS)'"`
	Drawn   string `kong:"help='Cards already drawn, comma separated (e.g. ♠6,♥A)'"`
}

func (c *SimCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := shared.SetupLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = logger.WithPrefix("sim")

	start, err := startDeck(c.Drawn)
	if err != nil {
		return err
	}

	seed := randutil.Resolve(cfg.Simulation.Seed)
	logger.Info("Starting simulation", "trials", c.Trials, "depth", c.Depth, "remaining", start.CardsRemaining(), "seed", seed)

	ctx := shared.SetupSignalHandler(logger)
	result, err := simulator.New(simulator.Config{
		Trials:  c.Trials,
		Depth:   c.Depth,
		Workers: c.Workers,
		Seed:    seed,
		Start:   start,
		Logger:  logger,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, result)
	return nil
}

// startDeck returns a full deck with the listed cards removed
func startDeck(drawn string) (*deck.Deck, error) {
	d := deck.New()
	if strings.TrimSpace(drawn) == "" {
		return d, nil
	}
	for _, field := range strings.Split(drawn, ",") {
		card, err := deck.ParseCard(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		if !d.Remove(card) {
			return nil, fmt.Errorf("card %s listed twice", card)
		}
	}
	return d, nil
}
