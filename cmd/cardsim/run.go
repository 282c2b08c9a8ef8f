package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/cardsim/cmd/cardsim/shared"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/fileutil"
	"github.com/lox/cardsim/internal/session"
)

// RunCmd auto-draws a fresh deck to completion without a UI
type RunCmd struct {
	Out string `kong:"help='Write the JSON report to this file'"`
}

// Report is the outcome of a headless run
type Report struct {
	Session   string        `json:"session"`
	Seed      int64         `json:"seed"`
	Interval  time.Duration `json:"interval"`
	Drawn     []deck.Card   `json:"drawn"`
	Remaining int           `json:"remaining"`
	Completed bool          `json:"completed"`
	Elapsed   time.Duration `json:"elapsed"`
}

func (c *RunCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	out := os.Stderr
	if cfg.Log.File != "" {
		f, err := shared.OpenLogFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger, err := shared.SetupLogger(out, cfg.Log.Level)
	if err != nil {
		return err
	}

	ctx := shared.SetupSignalHandler(logger)
	ctrl, seed := newSession(cfg, logger)

	report := drain(ctx, ctrl, logger.WithPrefix("run"))
	report.Seed = seed
	report.Interval = cfg.Simulation.Interval

	printReport(os.Stdout, report)

	if c.Out != "" {
		if err := fileutil.WriteJSONAtomic(c.Out, report, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "file", c.Out)
	}
	return nil
}

// drain runs auto-draw until the deck is empty or ctx is cancelled
func drain(ctx context.Context, ctrl *session.Controller, logger *log.Logger) Report {
	start := time.Now()
	done := make(chan struct{})

	var mu sync.Mutex
	var lastVersion uint64
	var logged int
	finished := false

	unsubscribe := ctrl.Subscribe(func(s session.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Version <= lastVersion || finished {
			return
		}
		lastVersion = s.Version
		for _, c := range s.Drawn[min(logged, len(s.Drawn)):] {
			logger.Info("Drew card", "card", c.String(), "remaining", s.Remaining)
		}
		logged = len(s.Drawn)
		if s.Exhausted() && !s.Simulating {
			finished = true
			close(done)
		}
	})
	defer unsubscribe()

	if !ctrl.StartSimulation() {
		logger.Warn("Deck already empty")
	} else {
		select {
		case <-done:
		case <-ctx.Done():
			logger.Info("Interrupted", "remaining", ctrl.Remaining())
		}
	}
	ctrl.StopSimulation()

	snap := ctrl.Snapshot()
	return Report{
		Session:   snap.Session,
		Drawn:     snap.Drawn,
		Remaining: snap.Remaining,
		Completed: snap.Exhausted(),
		Elapsed:   time.Since(start),
	}
}

func printReport(w io.Writer, r Report) {
	cards := make([]string, len(r.Drawn))
	for i, c := range r.Drawn {
		cards[i] = c.String()
	}

	fmt.Fprintf(w, "Session:   %s\n", r.Session)
	fmt.Fprintf(w, "Seed:      %d\n", r.Seed)
	fmt.Fprintf(w, "Drawn:     %d\n", len(r.Drawn))
	fmt.Fprintf(w, "Remaining: %d\n", r.Remaining)
	if r.Completed {
		fmt.Fprintln(w, "All cards drawn!")
	}
	if len(cards) > 0 {
		fmt.Fprintf(w, "Order:     %s\n", strings.Join(cards, " "))
	}
}
