// Package metrics holds the Prometheus collectors of the pairing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolJoins counts pool joins (rejoins included).
	PoolJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blindpair_pool_joins_total",
		Help: "Total number of pool joins",
	})

	// MatchAttempts counts tryMatch calls by outcome: matched, no_candidate, not_in_pool, error.
	MatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blindpair_match_attempts_total",
		Help: "Total number of match attempts by outcome",
	}, []string{"outcome"})

	// MatchConflicts counts claims lost to a concurrent pairing.
	MatchConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blindpair_match_conflicts_total",
		Help: "Total number of pair claims lost to a concurrent match",
	})

	OpeningMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blindpair_opening_moves_total",
		Help: "Total number of opening move submissions by result",
	}, []string{"result"})

	Guesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blindpair_guesses_total",
		Help: "Total number of identity guesses by result",
	}, []string{"result"})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blindpair_notification_failures_total",
		Help: "Notifications that could not be delivered, by type",
	}, []string{"type"})

	SweptRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blindpair_swept_rows_total",
		Help: "Rows changed by the lifecycle sweep, by operation",
	}, []string{"operation"})

	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blindpair_websocket_connections_active",
		Help: "Number of active WebSocket notification streams",
	})
)
