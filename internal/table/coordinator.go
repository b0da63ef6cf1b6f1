package table

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/kelindar/event"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/database"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// Gateway is the persistence collaborator consumed by the coordinator.
// *database.Queries implements it; tests provide in-memory fakes.
type Gateway interface {
	GetFicha(ctx context.Context, playerID string) (*database.FichaRecord, error)
	SaveFicha(ctx context.Context, playerID string, ficha json.RawMessage) error
	ListFichas(ctx context.Context) ([]database.FichaRecord, error)
	GetPreference(ctx context.Context, key string) (json.RawMessage, error)
	SavePreference(ctx context.Context, key string, value json.RawMessage) error
}

// Inbound pairs a decoded envelope with the connection that sent it, so the
// message pump knows where replies go.
type Inbound struct {
	Session *UserSession
	Msg     wire.Message
}

// Coordinator owns all live connections of one table: the game master slot,
// the player directory, and the active play sessions. All inbound messages
// are funneled through a single channel and handled one at a time, so the
// handlers never interleave mid-message; the mutex guards the maps against
// the connect and disconnect paths which run on per-connection goroutines.
type Coordinator struct {
	done context.CancelFunc

	mu       sync.RWMutex
	gm       *UserSession
	players  map[string]*UserSession // player id -> live connection
	conns    map[string]*UserSession // connection id -> live connection
	sessions map[string]*GameSession // campaign id -> active session

	Messages chan Inbound
	quit     chan struct{}
	quitOnce sync.Once

	DB  Gateway
	Bus *event.Dispatcher

	clock func() time.Time
}

func NewCoordinator(db Gateway) *Coordinator {
	c := &Coordinator{
		players:  make(map[string]*UserSession),
		conns:    make(map[string]*UserSession),
		sessions: make(map[string]*GameSession),
		Messages: make(chan Inbound),
		quit:     make(chan struct{}),
		DB:       db,
		Bus:      event.NewDispatcher(),
		clock:    time.Now,
	}
	return c
}

func (c *Coordinator) Stop() {
	if c.done != nil {
		c.done()
	}
}

func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, session := range c.conns {
		if session.Websocket != nil {
			_ = session.Websocket.CloseNow()
		}
	}
	c.gm = nil
	clear(c.players)
	clear(c.conns)
	clear(c.sessions)
	// Unblock read loops parked on the Messages send. The channel itself is
	// never closed; the senders are the ones who would race a close.
	c.quitOnce.Do(func() { close(c.quit) })
}

// Run is the message pump. Each inbound message is handled to completion
// before the next one is taken, which keeps registry and session mutations
// atomic with respect to each other.
func (c *Coordinator) Run(ctx context.Context) {
	ctx, done := context.WithCancel(ctx)
	c.done = done
	defer done()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Received signal, closing the coordinator")
			c.Reset()
			return
		case in := <-c.Messages:
			c.HandleIncomingMessage(ctx, in)
		}
	}
}

// HandleIncomingMessage dispatches one inbound envelope to its handler.
func (c *Coordinator) HandleIncomingMessage(ctx context.Context, in Inbound) {
	c.instrument(in)

	switch in.Msg.Type {
	case wire.Register:
		c.handleRegister(ctx, in)
	case wire.AudioSend:
		c.handleAudioSend(ctx, in)
	case wire.AudioBroadcast:
		c.handleAudioBroadcast(ctx, in)
	case wire.AudioStop:
		c.handleAudioStop(ctx, in)
	case wire.FichaRequest:
		c.handleFichaRequest(ctx, in)
	case wire.FichaSave:
		c.handleFichaSave(ctx, in)
	case wire.DiceRoll:
		c.handleDiceRoll(ctx, in)
	case wire.ChatSend:
		c.handleChatSend(ctx, in)
	case wire.ThemeSet:
		c.handleThemeSet(ctx, in)
	case wire.ThemeRequest:
		c.handleThemeRequest(ctx, in)
	case wire.SessionStart:
		c.handleSessionStart(ctx, in)
	case wire.SessionJoin:
		c.handleSessionJoin(ctx, in)
	case wire.SessionEnd:
		c.handleSessionEnd(ctx, in)
	default:
		slog.Debug("Unhandled event type", "type", in.Msg.Type.String())
		metrics.UnhandledMessageTypes.WithLabelValues(in.Msg.Type.String()).Inc()
	}
}

// HandleSession runs the read loop of one connection until it disconnects.
// Teardown always goes through Unregister, whatever the close reason.
func (c *Coordinator) HandleSession(ctx context.Context, session *UserSession) error {
	c.trackConnection(session)
	defer c.Unregister(session)

	for {
		payload, err := session.ReadNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}

			switch state := websocket.CloseStatus(err); state {
			case -1:
				// connection reset by peer
				return nil
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			default:
				slog.Warn("Could not read the message", "connId", session.ConnID, logging.Error(err))
				return err
			}
		}

		m, err := wire.Decode(payload)
		if err != nil {
			slog.Debug("Could not decode the message", logging.Error(err), "payload", string(payload))
			metrics.InvalidPayloads.Inc()
			continue
		}
		select {
		case c.Messages <- Inbound{Session: session, Msg: m}:
		case <-c.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// timestamp returns the server-assigned time for outbound events. Client
// supplied timestamps are never trusted.
func (c *Coordinator) timestamp() string {
	return c.clock().In(time.UTC).Format("2006-01-02T15:04:05.000Z")
}
