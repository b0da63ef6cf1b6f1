package table

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/mesa-rpg/mesa/internal/app/logger"
	"github.com/mesa-rpg/mesa/internal/auth"
	"github.com/mesa-rpg/mesa/internal/database"
	"github.com/mesa-rpg/mesa/internal/wire"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mu      sync.Mutex
	frames  [][]byte
	inbound chan []byte
	closed  bool

	WriteError error
}

func newMockConn() *mockConn {
	return &mockConn{inbound: make(chan []byte, 16)}
}

func (m *mockConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case payload, ok := <-m.inbound:
		if !ok {
			return 0, nil, websocket.CloseError{Code: websocket.StatusNormalClosure}
		}
		return websocket.MessageText, payload, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (m *mockConn) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	m.frames = append(m.frames, append([]byte(nil), p...))
	return nil
}

func (m *mockConn) CloseNow() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// QueueRead makes the payload available to the next Read call.
func (m *mockConn) QueueRead(payload []byte) { m.inbound <- payload }

// CloseRead ends the read loop with a normal closure.
func (m *mockConn) CloseRead() { close(m.inbound) }

// Events decodes every envelope written to the connection so far.
func (m *mockConn) Events(t *testing.T) []wire.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]wire.Message, 0, len(m.frames))
	for _, frame := range m.frames {
		msg, err := wire.Decode(frame)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func countEvents(t *testing.T, conn *mockConn, msgType wire.EventType) int {
	t.Helper()
	n := 0
	for _, msg := range conn.Events(t) {
		if msg.Type == msgType {
			n++
		}
	}
	return n
}

func findEvent(t *testing.T, conn *mockConn, msgType wire.EventType) (wire.Message, bool) {
	t.Helper()
	for _, msg := range conn.Events(t) {
		if msg.Type == msgType {
			return msg, true
		}
	}
	return wire.Message{}, false
}

func requireEvent[T any](t *testing.T, conn *mockConn, msgType wire.EventType) T {
	t.Helper()
	msg, ok := findEvent(t, conn, msgType)
	require.True(t, ok, "expected a %q event, got %v", msgType, conn.Events(t))

	data, err := wire.DecodeTyped[T](msg)
	require.NoError(t, err)
	return data
}

type fakeGateway struct {
	mu     sync.Mutex
	fichas map[string]json.RawMessage
	prefs  map[string]json.RawMessage

	SaveFichaError error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		fichas: map[string]json.RawMessage{},
		prefs:  map[string]json.RawMessage{},
	}
}

func (g *fakeGateway) GetFicha(_ context.Context, playerID string) (*database.FichaRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ficha, ok := g.fichas[playerID]
	if !ok {
		return nil, nil
	}
	return &database.FichaRecord{PlayerID: playerID, Ficha: ficha}, nil
}

func (g *fakeGateway) SaveFicha(_ context.Context, playerID string, ficha json.RawMessage) error {
	if g.SaveFichaError != nil {
		return g.SaveFichaError
	}
	g.mu.Lock()
	g.fichas[playerID] = ficha
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) ListFichas(_ context.Context) ([]database.FichaRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.fichas))
	for id := range g.fichas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]database.FichaRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, database.FichaRecord{PlayerID: id, Ficha: g.fichas[id]})
	}
	return records, nil
}

func (g *fakeGateway) GetPreference(_ context.Context, key string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	value, ok := g.prefs[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (g *fakeGateway) SavePreference(_ context.Context, key string, value json.RawMessage) error {
	g.mu.Lock()
	g.prefs[key] = value
	g.mu.Unlock()
	return nil
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeGateway) {
	t.Helper()
	logger.SetDiscardLogger()

	db := newFakeGateway()
	c := NewCoordinator(db)
	c.clock = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}
	return c, db
}

func testClaims(username string) *auth.Claims {
	return &auth.Claims{Username: username}
}

// connect accepts a fresh, still unassigned connection.
func connect(c *Coordinator, connID, username string) (*UserSession, *mockConn) {
	conn := newMockConn()
	session := NewUserSession(connID, testClaims(username), conn)
	c.trackConnection(session)
	return session, conn
}

// deliver runs one inbound envelope through the dispatch switch, the same
// way the message pump would.
func deliver(t *testing.T, c *Coordinator, session *UserSession, msgType wire.EventType, payload any) {
	t.Helper()
	msg, err := wire.Decode(wire.Compose(msgType, payload))
	require.NoError(t, err)
	c.HandleIncomingMessage(context.Background(), Inbound{Session: session, Msg: msg})
}

func registerGM(t *testing.T, c *Coordinator, connID, username string) (*UserSession, *mockConn) {
	t.Helper()
	session, conn := connect(c, connID, username)
	deliver(t, c, session, wire.Register, wire.RegisterPayload{Role: wire.RoleGM})
	return session, conn
}

func registerPlayer(t *testing.T, c *Coordinator, connID, playerID, nome string) (*UserSession, *mockConn) {
	t.Helper()
	session, conn := connect(c, connID, nome)
	deliver(t, c, session, wire.Register, wire.RegisterPayload{
		Role:     wire.RolePlayer,
		PlayerID: playerID,
		Nome:     nome,
	})
	return session, conn
}
