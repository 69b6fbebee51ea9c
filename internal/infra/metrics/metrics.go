// Package metrics provides Prometheus metrics for VitalQuest.
// Counters and gauges for the rules engine, the HTTP surface, storage and
// health checks. Everything registers with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Activity Ledger ────────────────────────────────────────────────────────

// ActivitiesLogged tracks recorded activities by type and source.
var ActivitiesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "activities_logged_total",
	Help:      "Total activity records accepted by the ledger.",
}, []string{"type", "source"})

// ─── Character ──────────────────────────────────────────────────────────────

// XPAwarded tracks total XP granted to the character.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "xp_awarded_total",
	Help:      "Total experience points awarded.",
})

// GoldAwarded tracks total gold granted to the character.
var GoldAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "gold_awarded_total",
	Help:      "Total gold awarded.",
})

// LevelUps tracks level-up events (one per transition, however many levels).
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// CharacterLevel tracks the current character level.
var CharacterLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "character_level",
	Help:      "Current character level.",
})

// CharacterHP tracks the current character hit points.
var CharacterHP = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "character_hp",
	Help:      "Current character hit points.",
})

// GoldBalance tracks the current gold balance.
var GoldBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "gold_balance_current",
	Help:      "Current gold balance.",
})

// ─── Quests / Achievements / Streaks ────────────────────────────────────────

// QuestsCompleted tracks completed quests by quest type.
var QuestsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "quests_completed_total",
	Help:      "Total completed quests.",
}, []string{"type"})

// QuestsExpired tracks daily quests removed by the missed-quest sweep.
var QuestsExpired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "quests_expired_total",
	Help:      "Total daily quests expired with an HP penalty.",
})

// ActiveQuests tracks the size of the active quest list.
var ActiveQuests = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "quests_active",
	Help:      "Number of active quests.",
})

// AchievementsUnlocked tracks unlocks by rarity.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"rarity"})

// OverallStreak tracks the overall daily streak.
var OverallStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "streak_overall_days",
	Help:      "Current overall streak in days.",
})

// ─── Engine ─────────────────────────────────────────────────────────────────

// TransitionLatency tracks how long a committed transition took, including
// persistence.
var TransitionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "vitalquest",
	Name:      "transition_latency_seconds",
	Help:      "Engine transition duration in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
}, []string{"op"})

// StoreFailures tracks failed state saves.
var StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "store_failures_total",
	Help:      "Total failed state persistence attempts.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests tracks API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vitalquest",
	Name:      "http_requests_total",
	Help:      "Total API requests.",
}, []string{"method", "route", "status"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "vitalquest",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
