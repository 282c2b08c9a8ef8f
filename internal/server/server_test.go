package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/cardsim/internal/autodraw"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/lox/cardsim/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestServer(t *testing.T) (*Server, *session.Controller, *httptest.Server) {
	t.Helper()
	ctrl := session.New(session.Config{
		Rand:          randutil.New(42),
		Logger:        testLogger(),
		DriverOptions: []autodraw.Option{autodraw.WithClock(quartz.NewMock(t))},
	})
	srv := NewServer(ctrl, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return srv, ctrl, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readSnapshot(t *testing.T, conn *websocket.Conn) session.Snapshot {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, msg.Type)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	return snap
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Message{Type: typ, Timestamp: time.Now()}))
}

func TestServerHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestServerState(t *testing.T) {
	srv, ctrl, _ := newTestServer(t)
	card, ok := ctrl.DrawOne()
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 35, snap.Remaining)
	assert.Equal(t, []deck.Card{card}, snap.Drawn)
	assert.Zero(t, snap.Probabilities.Card(card))
	assert.Len(t, snap.Probabilities.Cards, 35)
}

func TestWebSocketInitialSnapshot(t *testing.T) {
	_, _, ts := newTestServer(t)
	conn := dial(t, ts)

	snap := readSnapshot(t, conn)
	assert.Equal(t, 36, snap.Remaining)
	assert.False(t, snap.Simulating)
	assert.Len(t, snap.Deck, 4)
	assert.Equal(t, 0.25, snap.Probabilities.Suit(deck.Hearts))
}

func TestWebSocketCommands(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	conn := dial(t, ts)
	readSnapshot(t, conn)

	send(t, conn, MessageTypeDraw)
	snap := readSnapshot(t, conn)
	assert.Equal(t, 35, snap.Remaining)
	require.NotNil(t, snap.LastDrawn)
	assert.Equal(t, ctrl.Drawn()[0], *snap.LastDrawn)

	send(t, conn, MessageTypeToggle)
	snap = readSnapshot(t, conn)
	assert.True(t, snap.Simulating)

	send(t, conn, MessageTypeToggle)
	snap = readSnapshot(t, conn)
	assert.False(t, snap.Simulating)

	send(t, conn, MessageTypeReset)
	snap = readSnapshot(t, conn)
	assert.Equal(t, 36, snap.Remaining)
	assert.Empty(t, snap.Drawn)
}

func TestWebSocketBroadcastsToAllViewers(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	readSnapshot(t, a)
	readSnapshot(t, b)

	ctrl.DrawOne()

	assert.Equal(t, 35, readSnapshot(t, a).Remaining)
	assert.Equal(t, 35, readSnapshot(t, b).Remaining)
}

func TestWebSocketDrawOnEmptyDeck(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	for i := 0; i < 36; i++ {
		ctrl.DrawOne()
	}

	conn := dial(t, ts)
	first := readSnapshot(t, conn)
	require.Equal(t, 0, first.Remaining)

	send(t, conn, MessageTypeDraw)
	snap := readSnapshot(t, conn)
	assert.Equal(t, 0, snap.Remaining)
	assert.Equal(t, first.Version, snap.Version)
	assert.Len(t, snap.Drawn, 36)
}

func TestWebSocketUnknownType(t *testing.T) {
	_, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readSnapshot(t, conn)

	send(t, conn, MessageType("shuffle"))
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)

	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "unknown_type", data.Code)
	assert.Contains(t, data.Message, "shuffle")
}

func TestViewerNeverReceivesOlderSnapshot(t *testing.T) {
	srv, ctrl, ts := newTestServer(t)
	conn := dial(t, ts)
	readSnapshot(t, conn)

	stale := ctrl.Snapshot()
	ctrl.DrawOne()
	require.Equal(t, 35, readSnapshot(t, conn).Remaining)

	// A snapshot taken before the draw arrives late
	srv.mu.RLock()
	for c := range srv.connections {
		srv.sendSnapshot(c, stale)
	}
	srv.mu.RUnlock()

	ctrl.DrawOne()
	snap := readSnapshot(t, conn)
	assert.Equal(t, 34, snap.Remaining)
	assert.Greater(t, snap.Version, stale.Version)
}

func TestInitialSnapshotIsFirstMessage(t *testing.T) {
	_, ctrl, ts := newTestServer(t)
	ctrl.DrawOne()

	conn := dial(t, ts)
	first := readSnapshot(t, conn)
	assert.Equal(t, ctrl.Snapshot().Version, first.Version)

	ctrl.DrawOne()
	next := readSnapshot(t, conn)
	assert.Equal(t, first.Version+1, next.Version)
}
