package table

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/auth"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// Role of a live connection. A connection is promoted exactly once by its
// first register message and keeps that role until it disconnects.
const (
	RoleUnassigned = ""
	RoleGM         = wire.RoleGM
	RolePlayer     = wire.RolePlayer
)

// UserSession is one live websocket connection at the table. It starts
// unassigned and is promoted to game master or player by registration.
type UserSession struct {
	ConnID string
	Claims *auth.Claims

	Role     string
	PlayerID string
	Nome     string

	ConnectedAt time.Time

	Websocket ConnReadWriter
}

func NewUserSession(connID string, claims *auth.Claims, conn ConnReadWriter) *UserSession {
	return &UserSession{
		ConnID:      connID,
		Claims:      claims,
		ConnectedAt: time.Now().In(time.UTC),
		Websocket:   conn,
	}
}

func (us *UserSession) ReadNext(ctx context.Context) ([]byte, error) {
	if us.Websocket == nil {
		return nil, fmt.Errorf("not connected")
	}
	_, payload, err := us.Websocket.Read(ctx)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (us *UserSession) Send(ctx context.Context, payload []byte) {
	if us.Websocket == nil {
		slog.Debug("not connected", "connId", us.ConnID)
		metrics.FailedMessageSends.WithLabelValues("not_connected").Inc()
		return
	}
	if len(payload) == 0 {
		metrics.FailedMessageSends.WithLabelValues("empty_payload").Inc()
		return
	}

	if err := wire.Write(ctx, us.Websocket, payload); err != nil {
		slog.Warn("Could not send a WS message", "to", us.ConnID, logging.Error(err))
		metrics.FailedMessageSends.WithLabelValues("write_error").Inc()
	}
}

// SendEvent composes an envelope and delivers it to this connection.
// Sends are fire-and-forget; a failed write is logged and counted only.
func (us *UserSession) SendEvent(ctx context.Context, msgType wire.EventType, payload any) {
	us.Send(ctx, wire.Compose(msgType, payload))
}

var _ ConnReadWriter = (*websocket.Conn)(nil)

type ConnReadWriter interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	CloseNow() error
}
