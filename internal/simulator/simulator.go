// Package simulator estimates draw frequencies empirically by running many
// independent draw sequences and comparing them with the computed odds.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/odds"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/lox/cardsim/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	// Trials is the number of independent draw sequences
	Trials int
	// Depth is which draw of each sequence is recorded (1 = the next card)
	Depth int
	// Workers defaults to GOMAXPROCS
	Workers int
	Seed    int64
	// Start is the deck each trial begins from; nil means a full deck
	Start  *deck.Deck
	Logger *log.Logger
}

// Result holds observed frequencies alongside the computed odds of the start deck
type Result struct {
	Trials    int
	Depth     int
	Seed      int64
	Suits     *statistics.Tally[deck.Suit]
	Ranks     *statistics.Tally[deck.Rank]
	Predicted odds.Probabilities
}

// Simulator runs draw simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Depth <= 0 {
		config.Depth = 1
	}
	if config.Start == nil {
		config.Start = deck.New()
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns results
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.config
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	if cfg.Depth > cfg.Start.CardsRemaining() {
		return nil, fmt.Errorf("depth %d exceeds the %d cards in the start deck", cfg.Depth, cfg.Start.CardsRemaining())
	}

	workers := min(cfg.Workers, cfg.Trials)
	seeds := randutil.Split(cfg.Seed, workers)
	perWorker := cfg.Trials / workers
	remainder := cfg.Trials % workers

	suitTallies := make([]*statistics.Tally[deck.Suit], workers)
	rankTallies := make([]*statistics.Tally[deck.Rank], workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		trials := perWorker
		if w < remainder {
			trials++
		}
		suitTallies[w] = statistics.NewTally[deck.Suit]()
		rankTallies[w] = statistics.NewTally[deck.Rank]()

		g.Go(func() error {
			return s.runWorker(ctx, trials, seeds[w], suitTallies[w], rankTallies[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Trials:    cfg.Trials,
		Depth:     cfg.Depth,
		Seed:      cfg.Seed,
		Suits:     statistics.NewTally[deck.Suit](),
		Ranks:     statistics.NewTally[deck.Rank](),
		Predicted: odds.Compute(cfg.Start),
	}
	for w := range suitTallies {
		result.Suits.Merge(suitTallies[w])
		result.Ranks.Merge(rankTallies[w])
	}

	if err := result.Suits.Validate(); err != nil {
		return nil, fmt.Errorf("suit tally validation failed: %w", err)
	}
	if err := result.Ranks.Validate(); err != nil {
		return nil, fmt.Errorf("rank tally validation failed: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Debug("Simulation complete", "trials", cfg.Trials, "workers", workers)
	}
	return result, nil
}

// runWorker plays trials sequences, recording the card at the configured depth
func (s *Simulator) runWorker(ctx context.Context, trials int, seed int64, suits *statistics.Tally[deck.Suit], ranks *statistics.Tally[deck.Rank]) error {
	rng := randutil.New(seed)

	for i := 0; i < trials; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		d := s.config.Start.Clone()
		var card deck.Card
		for n := 0; n < s.config.Depth; n++ {
			c, ok := d.Draw(rng)
			if !ok {
				return fmt.Errorf("deck ran out at draw %d", n+1)
			}
			card = c
		}
		suits.Add(card.Suit)
		ranks.Add(card.Rank)
	}
	return nil
}

// SuitDeviation is the largest gap between observed and predicted suit frequency
func (r *Result) SuitDeviation() float64 {
	return r.Suits.MaxDeviation(r.Predicted.Suits)
}

// RankDeviation is the largest gap between observed and predicted rank frequency
func (r *Result) RankDeviation() float64 {
	return r.Ranks.MaxDeviation(r.Predicted.Ranks)
}

// PrintSummary writes observed and predicted frequencies side by side
func PrintSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "\n=== EMPIRICAL FREQUENCIES (draw #%d, %d trials, seed %d) ===\n", r.Depth, r.Trials, r.Seed)

	fmt.Fprintf(w, "\n%-6s %10s %10s %10s\n", "Suit", "Observed", "Computed", "Diff")
	for _, s := range deck.Suits {
		observed := r.Suits.Frequency(s)
		predicted := r.Predicted.Suit(s)
		fmt.Fprintf(w, "%-6s %9.2f%% %9.2f%% %+9.2f%%\n", s, observed*100, predicted*100, (observed-predicted)*100)
	}

	fmt.Fprintf(w, "\n%-6s %10s %10s %10s\n", "Rank", "Observed", "Computed", "Diff")
	for _, rank := range deck.Ranks {
		observed := r.Ranks.Frequency(rank)
		predicted := r.Predicted.Rank(rank)
		fmt.Fprintf(w, "%-6s %9.2f%% %9.2f%% %+9.2f%%\n", rank, observed*100, predicted*100, (observed-predicted)*100)
	}

	fmt.Fprintf(w, "\nMax deviation: suits %.2f%%, ranks %.2f%%\n", r.SuitDeviation()*100, r.RankDeviation()*100)
}
