package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ctf_submissions_total", Help: "Flag submissions by outcome"},
		[]string{"outcome"},
	)
	Solves = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ctf_solves_total", Help: "Newly recorded solves"},
	)
	LeaderboardRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ctf_leaderboard_recomputes_total", Help: "Leaderboard recomputations by scope and result"},
		[]string{"scope", "result"},
	)
	LeaderboardRecomputeSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "ctf_leaderboard_recompute_seconds", Help: "Event leaderboard recompute latency", Buckets: prometheus.DefBuckets},
	)
	LeaderboardCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ctf_leaderboard_cache_total", Help: "Leaderboard cache lookups by result"},
		[]string{"result"},
	)
	GamificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ctf_gamification_failures_total", Help: "Post-solve gamification steps that failed"},
	)
	ProcessedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ctf_outbox_processed_total", Help: "Outbox events dispatched successfully"},
		[]string{"type"},
	)
	FailedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ctf_outbox_failed_total", Help: "Outbox events whose handlers failed"},
		[]string{"type"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ctf_outbox_dlq_total", Help: "Events moved into the dead letter table"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		Submissions,
		Solves,
		LeaderboardRecomputes,
		LeaderboardRecomputeSeconds,
		LeaderboardCache,
		GamificationFailures,
		ProcessedEvents,
		FailedEvents,
		DLQEvents,
	)
}
