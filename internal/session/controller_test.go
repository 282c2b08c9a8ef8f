package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cardsim/internal/autodraw"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/lox/cardsim/internal/sessionid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestController(t *testing.T, seed int64) (*Controller, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	c := New(Config{
		Rand:          randutil.New(seed),
		Logger:        testLogger(),
		DriverOptions: []autodraw.Option{autodraw.WithClock(clock)},
	})
	return c, clock
}

func advanceTick(t *testing.T, clock *quartz.Mock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(autodraw.DefaultInterval).MustWait(ctx)
}

func sumCounts(s Snapshot) int {
	total := 0
	for _, ranks := range s.Deck {
		total += len(ranks)
	}
	return total
}

func TestInitialState(t *testing.T) {
	c, _ := newTestController(t, 1)
	snap := c.Snapshot()

	assert.Equal(t, 36, snap.Remaining)
	assert.Empty(t, snap.Drawn)
	assert.Nil(t, snap.LastDrawn)
	assert.False(t, snap.Simulating)
	assert.Len(t, snap.Deck, 4)
	assert.Equal(t, 36, sumCounts(snap))
	assert.Equal(t, 0.25, snap.Probabilities.Suit(deck.Spades))
}

func TestDrawOne(t *testing.T) {
	c, _ := newTestController(t, 2)

	card, ok := c.DrawOne()
	require.True(t, ok)

	snap := c.Snapshot()
	assert.Equal(t, 35, snap.Remaining)
	assert.Equal(t, []deck.Card{card}, snap.Drawn)
	require.NotNil(t, snap.LastDrawn)
	assert.Equal(t, card, *snap.LastDrawn)
	assert.NotContains(t, snap.Ranks(card.Suit), card.Rank)
	assert.False(t, snap.RemainingDeck().Contains(card))
	assert.Zero(t, snap.Probabilities.Card(card))
	assert.Equal(t, snap.Remaining, sumCounts(snap))
}

func TestDrainDeck(t *testing.T) {
	c, _ := newTestController(t, 3)
	seen := make(map[deck.Card]bool)

	for i := 0; i < 36; i++ {
		before := c.Snapshot()
		card, ok := c.DrawOne()
		require.True(t, ok)
		require.False(t, seen[card])
		seen[card] = true

		after := c.Snapshot()
		require.Equal(t, before.Remaining-1, after.Remaining)
		require.Len(t, after.Drawn, len(before.Drawn)+1)
		require.Equal(t, after.Remaining, sumCounts(after))
	}

	snap := c.Snapshot()
	assert.True(t, snap.Exhausted())
	assert.Len(t, snap.Drawn, 36)
	assert.Empty(t, snap.Deck)
	assert.Empty(t, snap.Probabilities.Cards)
}

func TestDrawOnEmptyDeckIsNoop(t *testing.T) {
	c, _ := newTestController(t, 4)
	for i := 0; i < 36; i++ {
		c.DrawOne()
	}
	before := c.Snapshot()

	_, ok := c.DrawOne()
	assert.False(t, ok)

	after := c.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Drawn, after.Drawn)
	assert.Equal(t, 0, after.Remaining)
}

func TestReset(t *testing.T) {
	c, _ := newTestController(t, 5)
	for i := 0; i < 10; i++ {
		c.DrawOne()
	}

	c.Reset()

	snap := c.Snapshot()
	assert.Equal(t, 36, snap.Remaining)
	assert.Empty(t, snap.Drawn)
	assert.Nil(t, snap.LastDrawn)
	assert.Equal(t, deck.New().Map(), snap.Deck)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	c, _ := newTestController(t, 6)

	var mu sync.Mutex
	var versions []uint64
	unsubscribe := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		versions = append(versions, s.Version)
		mu.Unlock()
	})

	c.DrawOne()
	c.DrawOne()
	c.Reset()
	unsubscribe()
	c.DrawOne()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3}, versions)
}

func TestAutoDrawDrainsDeckAndStops(t *testing.T) {
	c, clock := newTestController(t, 7)

	assert.True(t, c.ToggleSimulation())
	assert.True(t, c.Snapshot().Simulating)

	for i := 1; i <= 36; i++ {
		advanceTick(t, clock)
		require.Equal(t, 36-i, c.Remaining())
	}

	snap := c.Snapshot()
	assert.False(t, snap.Simulating)
	assert.Len(t, snap.Drawn, 36)
	assert.Equal(t, autodraw.Idle, c.Driver().State())
}

func TestAutoDrawOneDrawPerTick(t *testing.T) {
	c, clock := newTestController(t, 8)
	c.StartSimulation()

	clock.Advance(autodraw.DefaultInterval / 2).MustWait(context.Background())
	assert.Equal(t, 36, c.Remaining())

	clock.Advance(autodraw.DefaultInterval / 2).MustWait(context.Background())
	assert.Equal(t, 35, c.Remaining())
}

func TestStopCancelsPendingTicks(t *testing.T) {
	c, clock := newTestController(t, 9)

	c.StartSimulation()
	advanceTick(t, clock)
	require.Equal(t, 35, c.Remaining())

	assert.False(t, c.ToggleSimulation())
	advanceTick(t, clock)
	advanceTick(t, clock)

	assert.Equal(t, 35, c.Remaining())
	assert.False(t, c.Simulating())
}

func TestStartIgnoredOnEmptyDeck(t *testing.T) {
	c, clock := newTestController(t, 10)
	for i := 0; i < 36; i++ {
		c.DrawOne()
	}

	assert.False(t, c.ToggleSimulation())
	assert.False(t, c.StartSimulation())
	assert.False(t, c.Snapshot().Simulating)

	advanceTick(t, clock)
	assert.Equal(t, 0, c.Remaining())
}

func TestResetKeepsSimulationRunning(t *testing.T) {
	c, clock := newTestController(t, 11)

	c.StartSimulation()
	advanceTick(t, clock)
	c.Reset()

	assert.True(t, c.Simulating())
	advanceTick(t, clock)
	assert.Equal(t, 35, c.Remaining())
}

func TestSimulationStatePublished(t *testing.T) {
	c, _ := newTestController(t, 12)

	var mu sync.Mutex
	var flags []bool
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		flags = append(flags, s.Simulating)
		mu.Unlock()
	})

	c.StartSimulation()
	c.StopSimulation()
	c.StopSimulation()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, flags)
}

func TestSessionID(t *testing.T) {
	c, _ := newTestController(t, 1)
	require.NoError(t, sessionid.Validate(c.ID()))
	assert.Equal(t, c.ID(), c.Snapshot().Session)

	named := New(Config{ID: "table-1", Rand: randutil.New(1), Logger: testLogger()})
	assert.Equal(t, "table-1", named.Snapshot().Session)
}

func TestManualDrawOfLastCardEndsSimulation(t *testing.T) {
	c, clock := newTestController(t, 13)

	var mu sync.Mutex
	var last Snapshot
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		if s.Version > last.Version {
			last = s
		}
		mu.Unlock()
	})

	require.True(t, c.StartSimulation())
	for i := 0; i < 36; i++ {
		_, ok := c.DrawOne()
		require.True(t, ok)
	}

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Remaining)
	assert.False(t, snap.Simulating)
	assert.Equal(t, autodraw.Idle, c.Driver().State())

	mu.Lock()
	assert.Equal(t, 0, last.Remaining)
	assert.False(t, last.Simulating)
	mu.Unlock()

	advanceTick(t, clock)
	assert.False(t, c.Simulating())
}

func TestEmptyDeckNeverPublishedAsSimulating(t *testing.T) {
	c, _ := newTestController(t, 14)

	var mu sync.Mutex
	var bad []uint64
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		if s.Exhausted() && s.Simulating {
			bad = append(bad, s.Version)
		}
		mu.Unlock()
	})

	c.StartSimulation()
	for i := 0; i < 36; i++ {
		c.DrawOne()
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, bad)
}
