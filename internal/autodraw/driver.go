// Package autodraw issues draws at a fixed cadence while simulation mode is on.
package autodraw

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cardsim/internal/deck"
)

// DefaultInterval is the pause between automatic draws
const DefaultInterval = 500 * time.Millisecond

// ErrExhausted ends a run once the deck has no cards left
var ErrExhausted = errors.New("deck exhausted")

// errStale ends ticks that belong to a run that has since been stopped
var errStale = errors.New("stale run")

// State is the driver state
type State int

const (
	Idle State = iota
	Running
)

// String returns the state name
func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Target is what the driver draws from
type Target interface {
	DrawOne() (deck.Card, bool)
	Remaining() int
}

// Driver is a two-state machine (Idle, Running). While running it issues
// exactly one draw per tick and returns to Idle after the deck empties.
type Driver struct {
	target   Target
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running atomic.Bool
	ticking atomic.Bool
	gen     uint64
	cancel  context.CancelFunc

	onChange func(State)
}

// Option configures a Driver
type Option func(*Driver)

// WithInterval sets the tick interval
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.interval = d
		}
	}
}

// WithClock replaces the real clock, mainly for tests
func WithClock(c quartz.Clock) Option {
	return func(dr *Driver) {
		dr.clock = c
	}
}

// OnStateChange registers a callback invoked after every Idle/Running transition
func OnStateChange(fn func(State)) Option {
	return func(dr *Driver) {
		dr.onChange = fn
	}
}

// New creates an idle driver
func New(target Target, logger *log.Logger, opts ...Option) *Driver {
	d := &Driver{
		target:   target,
		clock:    quartz.NewReal(),
		interval: DefaultInterval,
		logger:   logger.WithPrefix("autodraw"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state
func (d *Driver) State() State {
	if d.running.Load() {
		return Running
	}
	return Idle
}

// Running reports whether automatic drawing is active
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Interval returns the tick interval
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Start begins automatic drawing. It is ignored when already running or when
// no cards are left, and reports whether the driver is running afterwards.
func (d *Driver) Start() bool {
	d.mu.Lock()
	started := d.startLocked()
	d.mu.Unlock()

	if started {
		d.notify(Running)
	}
	return d.running.Load()
}

// Stop halts automatic drawing and cancels pending ticks
func (d *Driver) Stop() {
	d.mu.Lock()
	stopped := d.stopLocked()
	d.mu.Unlock()

	if stopped {
		d.notify(Idle)
	}
}

// Toggle stops a running driver or starts an idle one, returning the new state
func (d *Driver) Toggle() State {
	d.mu.Lock()
	var changed bool
	if d.running.Load() {
		changed = d.stopLocked()
	} else {
		changed = d.startLocked()
	}
	state := d.State()
	d.mu.Unlock()

	if changed {
		d.notify(state)
	}
	return state
}

// Exhausted tells the driver the target ran out of cards outside a tick,
// e.g. after a manual draw took the last card. A running driver goes Idle.
// During a tick it does nothing because the tick stops the driver itself.
func (d *Driver) Exhausted() {
	if d.ticking.Load() {
		return
	}
	d.Stop()
}

func (d *Driver) startLocked() bool {
	if d.running.Load() {
		return false
	}
	if remaining := d.target.Remaining(); remaining == 0 {
		d.logger.Debug("Ignoring start on empty deck")
		return false
	}

	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.running.Store(true)

	d.logger.Info("Auto-draw started", "interval", d.interval)
	d.clock.TickerFunc(ctx, d.interval, func() error {
		return d.tick(gen)
	}, "autodraw")
	return true
}

func (d *Driver) stopLocked() bool {
	if !d.running.Load() {
		return false
	}
	d.running.Store(false)
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.logger.Info("Auto-draw stopped")
	return true
}

// tick performs one draw for run gen. Returning an error ends the ticker.
// The draw happens under mu so nothing is drawn once Stop has returned.
func (d *Driver) tick(gen uint64) error {
	d.mu.Lock()
	if !d.running.Load() || d.gen != gen {
		d.mu.Unlock()
		return errStale
	}

	d.ticking.Store(true)
	card, ok := d.target.DrawOne()
	d.ticking.Store(false)
	if ok {
		d.logger.Debug("Auto-drew card", "card", card)
	}
	if ok && d.target.Remaining() > 0 {
		d.mu.Unlock()
		return nil
	}

	finished := d.stopLocked()
	d.mu.Unlock()
	if finished {
		d.logger.Info("Deck exhausted, auto-draw finished")
		d.notify(Idle)
	}
	return ErrExhausted
}

func (d *Driver) notify(s State) {
	if d.onChange != nil {
		d.onChange(s)
	}
}
