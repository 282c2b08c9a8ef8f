// Package session owns the state of one drawing session: the deck, the drawn
// history, the remaining counter and the auto-draw driver.
//
// All mutation goes through Controller. Commands are serialised so each one
// runs atomically regardless of which goroutine issued it.
package session

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/cardsim/internal/autodraw"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/odds"
	"github.com/lox/cardsim/internal/sessionid"
)

// Listener receives a snapshot after every change
type Listener func(Snapshot)

// Config holds the controller's collaborators
type Config struct {
	// ID names the session in logs and snapshots; empty generates one
	ID     string
	Rand   deck.RandSource
	Logger *log.Logger

	// DriverOptions are passed to the auto-draw driver
	DriverOptions []autodraw.Option
}

// Controller is the single owner of a session's state
type Controller struct {
	id     string
	logger *log.Logger
	rng    deck.RandSource
	driver *autodraw.Driver

	mu        sync.Mutex
	deck      *deck.Deck
	drawn     []deck.Card
	remaining int
	version   uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a controller with a full deck
func New(cfg Config) *Controller {
	id := cfg.ID
	if id == "" {
		id = sessionid.New()
	}
	c := &Controller{
		id:        id,
		logger:    cfg.Logger.WithPrefix("session").With("session", id),
		rng:       cfg.Rand,
		deck:      deck.New(),
		remaining: deck.Size,
		listeners: make(map[int]Listener),
	}

	opts := append([]autodraw.Option{}, cfg.DriverOptions...)
	opts = append(opts, autodraw.OnStateChange(c.driverChanged))
	c.driver = autodraw.New(c, cfg.Logger, opts...)
	return c
}

// ID returns the session identifier
func (c *Controller) ID() string {
	return c.id
}

// Driver returns the auto-draw driver
func (c *Controller) Driver() *autodraw.Driver {
	return c.driver
}

// DrawOne draws a single card. It is a no-op returning false on an empty deck.
func (c *Controller) DrawOne() (deck.Card, bool) {
	c.mu.Lock()
	if c.remaining == 0 {
		c.mu.Unlock()
		return deck.Card{}, false
	}

	card, ok := c.deck.Draw(c.rng)
	if !ok {
		c.mu.Unlock()
		return deck.Card{}, false
	}
	c.drawn = append(c.drawn, card)
	c.remaining--
	c.version++
	snap := c.snapshotLocked(c.driver.Running())
	c.mu.Unlock()

	c.logger.Debug("Drew card", "card", card, "remaining", snap.Remaining)
	c.publish(snap)

	if snap.Remaining == 0 {
		c.driver.Exhausted()
	}
	return card, true
}

// Reset restores the full deck, clears the history and sets the counter back
// to 36. A running auto-draw keeps running on the fresh deck.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.deck.Reset()
	c.drawn = nil
	c.remaining = deck.Size
	c.version++
	snap := c.snapshotLocked(c.driver.Running())
	c.mu.Unlock()

	c.logger.Info("Deck reset")
	c.publish(snap)
}

// ToggleSimulation flips auto-draw on or off and returns the new flag.
// Turning it on with no cards left does nothing.
func (c *Controller) ToggleSimulation() bool {
	return c.driver.Toggle() == autodraw.Running
}

// StartSimulation turns auto-draw on, ignored on an empty deck
func (c *Controller) StartSimulation() bool {
	return c.driver.Start()
}

// StopSimulation turns auto-draw off
func (c *Controller) StopSimulation() {
	c.driver.Stop()
}

// Simulating reports whether auto-draw is active
func (c *Controller) Simulating() bool {
	return c.driver.Running()
}

// Remaining returns the number of cards left
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Drawn returns a copy of the drawn cards in draw order
func (c *Controller) Drawn() []deck.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]deck.Card(nil), c.drawn...)
}

// Probabilities computes the odds for the next draw
func (c *Controller) Probabilities() odds.Probabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return odds.Compute(c.deck)
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	simulating := c.driver.Running()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(simulating)
}

// Subscribe registers a listener and returns a func that removes it.
// Listeners are called outside the controller's lock, in no particular order.
func (c *Controller) Subscribe(fn Listener) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Controller) driverChanged(state autodraw.State) {
	c.mu.Lock()
	c.version++
	snap := c.snapshotLocked(state == autodraw.Running)
	c.mu.Unlock()

	c.logger.Debug("Simulation state changed", "state", state)
	c.publish(snap)
}

func (c *Controller) snapshotLocked(simulating bool) Snapshot {
	snap := Snapshot{
		Session:       c.id,
		Version:       c.version,
		Remaining:     c.remaining,
		Simulating:    simulating && c.remaining > 0,
		Deck:          c.deck.Map(),
		Drawn:         append([]deck.Card{}, c.drawn...),
		Probabilities: odds.Compute(c.deck),
		deck:          c.deck.Clone(),
	}
	if n := len(c.drawn); n > 0 {
		last := c.drawn[n-1]
		snap.LastDrawn = &last
	}
	return snap
}

func (c *Controller) publish(snap Snapshot) {
	c.listenersMu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
