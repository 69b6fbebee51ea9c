package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestActivityCounter(t *testing.T) {
	ActivitiesLogged.WithLabelValues("steps", "manual").Inc()
	ActivitiesLogged.WithLabelValues("sleep", "external_sync").Add(3)

	if !gatheredNames(t)["vitalquest_activities_logged_total"] {
		t.Error("vitalquest_activities_logged_total not found")
	}
}

func TestCharacterMetrics(t *testing.T) {
	XPAwarded.Add(120)
	GoldAwarded.Add(60)
	LevelUps.Inc()
	CharacterLevel.Set(2)
	CharacterHP.Set(110)
	GoldBalance.Set(160)

	names := gatheredNames(t)
	expected := []string{
		"vitalquest_xp_awarded_total",
		"vitalquest_gold_awarded_total",
		"vitalquest_level_ups_total",
		"vitalquest_character_level",
		"vitalquest_character_hp",
		"vitalquest_gold_balance_current",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestProgressMetrics(t *testing.T) {
	QuestsCompleted.WithLabelValues("daily").Inc()
	QuestsExpired.Inc()
	ActiveQuests.Set(7)
	AchievementsUnlocked.WithLabelValues("common").Inc()
	OverallStreak.Set(3)

	names := gatheredNames(t)
	expected := []string{
		"vitalquest_quests_completed_total",
		"vitalquest_quests_expired_total",
		"vitalquest_quests_active",
		"vitalquest_achievements_unlocked_total",
		"vitalquest_streak_overall_days",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestEngineAndHTTPMetrics(t *testing.T) {
	TransitionLatency.WithLabelValues("complete_quest").Observe(0.002)
	StoreFailures.Inc()
	HTTPRequests.WithLabelValues("GET", "/api/character", "200").Inc()
	HealthCheckStatus.WithLabelValues("sqlite").Set(1)

	names := gatheredNames(t)
	expected := []string{
		"vitalquest_transition_latency_seconds",
		"vitalquest_store_failures_total",
		"vitalquest_http_requests_total",
		"vitalquest_health_check_status",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	count := 0
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "vitalquest_") {
			count++
		}
	}

	// Non-vector metrics are always exported.
	if count < 10 {
		t.Errorf("expected at least 10 vitalquest_ metrics, got %d", count)
	}
}
