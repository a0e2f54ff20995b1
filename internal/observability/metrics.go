package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FriendshipTransitions counts friendship state changes by outcome.
	FriendshipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinesocial_friendship_transitions_total",
		Help: "Friendship state transitions by outcome",
	}, []string{"outcome"})

	// LikeEdgeChanges counts film like edges added or removed.
	LikeEdgeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinesocial_like_edge_changes_total",
		Help: "Film like edges added or removed",
	}, []string{"operation"})

	// ReviewVoteTransitions counts review vote transitions by previous and new state.
	ReviewVoteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinesocial_review_vote_transitions_total",
		Help: "Review vote transitions",
	}, []string{"from", "to"})

	// CompensatingRollbacks counts writes undone because a dependent update touched no rows.
	CompensatingRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinesocial_compensating_rollbacks_total",
		Help: "Writes undone after a dependent update affected no rows",
	}, []string{"operation"})

	// RankingLatency records how long ranking and recommendation queries take.
	RankingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinesocial_ranking_latency_seconds",
		Help:    "Ranking and recommendation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	// DatabaseQueryLatency records hand-written query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinesocial_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackRanking returns a function that records ranking latency when called (e.g. defer).
func TrackRanking(query string) func() {
	start := time.Now()
	return func() {
		RankingLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
