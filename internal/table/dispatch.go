package table

import (
	"context"

	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// DeliveryStatus reports whether a direct-addressed message reached a live
// connection. The wire behavior for an unknown recipient stays a silent
// drop; the status exists so callers and tests can tell the two apart.
type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	NoRecipient
)

// SendToPlayer delivers directly to the connection registered under the
// player identifier. An unknown identifier drops the message.
func (c *Coordinator) SendToPlayer(ctx context.Context, playerID string, msgType wire.EventType, payload any) DeliveryStatus {
	session, ok := c.getPlayer(playerID)
	if !ok {
		metrics.DroppedDirectSends.Inc()
		return NoRecipient
	}
	session.SendEvent(ctx, msgType, payload)
	return Delivered
}

// SendToGM delivers directly to the current GM slot occupant, if any.
func (c *Coordinator) SendToGM(ctx context.Context, msgType wire.EventType, payload any) DeliveryStatus {
	gm, ok := c.gmSession()
	if !ok {
		metrics.DroppedDirectSends.Inc()
		return NoRecipient
	}
	gm.SendEvent(ctx, msgType, payload)
	return Delivered
}

// BroadcastPlayers delivers to every connection in the player directory,
// the GM excluded.
func (c *Coordinator) BroadcastPlayers(ctx context.Context, msgType wire.EventType, payload any) {
	out := wire.Compose(msgType, payload)
	c.forEachPlayer(func(session *UserSession) bool {
		session.Send(ctx, out)
		metrics.MessagesBroadcasted.Inc()
		return true
	})
}

// BroadcastAll delivers to every live connection, the GM and unassigned
// connections included. A non-nil except connection is skipped.
func (c *Coordinator) BroadcastAll(ctx context.Context, msgType wire.EventType, payload any, except *UserSession) {
	out := wire.Compose(msgType, payload)
	c.forEachConn(func(session *UserSession) bool {
		if session == except {
			return true
		}
		session.Send(ctx, out)
		metrics.MessagesBroadcasted.Inc()
		return true
	})
}
