package table

import (
	"log/slog"

	"github.com/kelindar/event"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

const inboundEventKind = 0x01

// InboundEvent is published on the coordinator bus for every inbound
// message, before it is dispatched. Subscribers observe traffic without
// touching the handlers.
type InboundEvent struct {
	Event  wire.EventType
	ConnID string
	Role   string
}

func (InboundEvent) Type() uint32 { return inboundEventKind }

// OnInbound subscribes to the inbound-traffic hook. The returned function
// unsubscribes.
func (c *Coordinator) OnInbound(fn func(InboundEvent)) func() {
	return event.SubscribeTo(c.Bus, inboundEventKind, fn)
}

// instrument is the uniform per-message hook: a metric, a debug line, and a
// bus notification.
func (c *Coordinator) instrument(in Inbound) {
	metrics.MessagesReceived.WithLabelValues(in.Msg.Type.String()).Inc()
	slog.Debug("Received a table message", "type", in.Msg.Type.String(), "connId", in.Session.ConnID, "role", in.Session.Role)

	event.Publish(c.Bus, InboundEvent{
		Event:  in.Msg.Type,
		ConnID: in.Session.ConnID,
		Role:   in.Session.Role,
	})
}
