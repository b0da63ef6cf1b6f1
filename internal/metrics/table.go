package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	startTime = time.Now()

	Uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mesa_uptime_seconds",
			Help: "Coordinator uptime in seconds",
		}, func() float64 {
			return time.Since(startTime).Seconds()
		})

	ConnectionErrs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_websocket_connection_errors",
			Help: "Number of connection errors",
		})

	AuthRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_websocket_auth_rejections_total",
			Help: "Total number of connections rejected for a bad credential",
		})

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mesa_table_active_connections",
			Help: "Current number of live websocket connections",
		},
	)

	ActiveGameSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mesa_table_active_game_sessions",
			Help: "Current number of active play sessions",
		},
	)

	GameSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_table_game_sessions_started_total",
			Help: "Total number of play sessions ever started",
		},
	)

	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesa_table_messages_received_total",
			Help: "Total number of messages received by event type",
		},
		[]string{"type"},
	)

	MessagesBroadcasted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_table_messages_broadcasted_total",
			Help: "Total number of messages broadcasted to connections",
		},
	)

	FailedMessageSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesa_table_failed_message_sends_total",
			Help: "Total number of failed message sends per reason",
		},
		[]string{"reason"},
	)

	DroppedDirectSends = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_table_dropped_direct_sends_total",
			Help: "Total number of direct sends dropped for an unknown recipient",
		},
	)

	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesa_table_persistence_failures_total",
			Help: "Total number of persistence gateway failures by operation",
		},
		[]string{"operation"},
	)

	UnhandledMessageTypes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesa_table_unhandled_message_types_total",
			Help: "Total number of unhandled message types",
		},
		[]string{"type"},
	)

	InvalidPayloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mesa_table_invalid_payloads_total",
			Help: "Total number of invalid payloads received",
		},
	)
)

func InitTable() {
	prometheus.MustRegister(
		Uptime,
		ConnectionErrs,
		AuthRejections,
		ActiveConnections,
		ActiveGameSessions,
		GameSessionsStarted,
		MessagesReceived,
		MessagesBroadcasted,
		FailedMessageSends,
		DroppedDirectSends,
		PersistenceFailures,
		UnhandledMessageTypes,
		InvalidPayloads,
	)
}
