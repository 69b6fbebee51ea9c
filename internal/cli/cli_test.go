package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/domain"
)

// runCLI executes the root command against an isolated VITALQUEST_HOME.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	initReset = false
	logCalories, logHeartRate, logHealthy, logQuality, logNotes = 0, 0, false, "", ""
	questsDone = false
	questSpec = engagement.CustomQuestSpec{Target: 1}
	questCategory, questDifficulty, questMetric, questDue = "custom", "easy", "", ""
	achievementsAll = false
	notifyMarkRead, notifyClear = false, false
	historyDays = 7
	itemType, itemRarity, itemDescription, itemQuantity, itemHeal = "consumable", "common", "", 1, 0
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("VITALQUEST_HOME", home)
	t.Setenv("VITALQUEST_TIMEZONE", "UTC")
	return home
}

// ═══════════════════════════════════════════════════════════════════════════
// Commands
// ═══════════════════════════════════════════════════════════════════════════

func TestInit(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "init", "hero")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	if !strings.Contains(out, "Welcome, hero!") {
		t.Errorf("init output = %q", out)
	}

	out, err = runCLI(t, "init", "other")
	if err != nil {
		t.Fatalf("second init error: %v", err)
	}
	if !strings.Contains(out, "hero already exists") {
		t.Errorf("second init output = %q", out)
	}
}

func TestStatus_RequiresInit(t *testing.T) {
	setupHome(t)
	_, err := runCLI(t, "status")
	if !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("status error = %v, want ErrNoUser", err)
	}
}

func TestLogAndStatus(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "init", "walker"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "log", "steps", "12000")
	if err != nil {
		t.Fatalf("log steps error: %v", err)
	}
	if !strings.Contains(out, "Logged steps: 12000 steps.") {
		t.Errorf("log output = %q", out)
	}
	if !strings.Contains(out, "quest(s) completed") {
		t.Errorf("12000 steps should complete the steps quest: %q", out)
	}

	out, err = runCLI(t, "status")
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	for _, want := range []string{"walker", "assassin", "covering vast distances", "Lifetime steps:     12000", "Records logged:     1", "HP"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestLog_Invalid(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")

	if _, err := runCLI(t, "log", "water", "lots"); err == nil {
		t.Error("non-numeric amount should fail")
	}
	if _, err := runCLI(t, "log", "water", "--", "-2"); !errors.Is(err, domain.ErrInvalidActivity) {
		t.Errorf("negative amount error = %v, want ErrInvalidActivity", err)
	}
	for _, amount := range []string{"NaN", "Inf", "1e300"} {
		if _, err := runCLI(t, "log", "steps", amount); !errors.Is(err, domain.ErrInvalidActivity) {
			t.Errorf("log steps %s error = %v, want ErrInvalidActivity", amount, err)
		}
	}
	if _, err := runCLI(t, "log", "sleep", "8", "--quality", "dreamy"); err == nil {
		t.Error("unknown sleep quality should fail")
	}
}

func TestImport(t *testing.T) {
	home := setupHome(t)
	runCLI(t, "init")

	path := filepath.Join(home, "export.jsonl")
	body := `{"id":"w-1","type":"water","value":3,"date":"2025-07-01T08:00:00Z"}
{"id":"w-2","type":"water","value":-1,"date":"2025-07-01T09:00:00Z"}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "import", path)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !strings.Contains(out, "Imported 1 of 2 records (1 skipped).") {
		t.Errorf("import output = %q", out)
	}

	out, _ = runCLI(t, "import", path)
	if !strings.Contains(out, "Imported 0 of 2 records") {
		t.Errorf("re-import output = %q", out)
	}
}

func TestQuests_AddCompleteRemove(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")

	out, err := runCLI(t, "quests")
	if err != nil {
		t.Fatalf("quests error: %v", err)
	}
	if !strings.Contains(out, "ID") || !strings.Contains(out, "daily") {
		t.Errorf("quests output = %q", out)
	}

	out, err = runCLI(t, "quests", "add", "Stretch", "--difficulty", "hard")
	if err != nil {
		t.Fatalf("quests add error: %v", err)
	}
	if !strings.Contains(out, "worth 200 XP and 50 gold") {
		t.Errorf("add output = %q", out)
	}
	id := strings.Fields(strings.TrimPrefix(out, "Created "))[0]
	id = strings.TrimSuffix(id, ":")

	out, err = runCLI(t, "complete", id)
	if err != nil {
		t.Fatalf("complete error: %v", err)
	}
	// 200 XP plus the first-quest achievement crosses level 2.
	if !strings.Contains(out, "Quest "+id+" complete.") || !strings.Contains(out, "Level up!") {
		t.Errorf("complete output = %q", out)
	}

	out, _ = runCLI(t, "quests", "--done")
	if !strings.Contains(out, "Stretch") {
		t.Errorf("completed list = %q", out)
	}

	if _, err := runCLI(t, "quests", "rm", "nope"); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("rm unknown error = %v", err)
	}
	if _, err := runCLI(t, "complete", "nope"); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("complete unknown error = %v", err)
	}
}

func TestQuestAdd_Invalid(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")
	if _, err := runCLI(t, "quests", "add", "Run", "--target=-5"); !errors.Is(err, domain.ErrInvalidQuest) {
		t.Errorf("negative target error = %v, want ErrInvalidQuest", err)
	}
	if _, err := runCLI(t, "quests", "add", "Run", "--due", "someday"); err == nil {
		t.Error("bad --due should fail")
	}
}

func TestAchievementsAndStreaks(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")

	out, err := runCLI(t, "achievements")
	if err != nil {
		t.Fatalf("achievements error: %v", err)
	}
	if !strings.Contains(out, "locked") {
		t.Errorf("achievements output = %q", out)
	}
	all, _ := runCLI(t, "achievements", "--all")
	if strings.Count(all, "\n") <= strings.Count(out, "\n") {
		t.Error("--all should list the hidden achievements too")
	}

	out, _ = runCLI(t, "streak")
	if !strings.Contains(out, "No streaks yet") {
		t.Errorf("streak output = %q", out)
	}
	if _, err := runCLI(t, "streak", "freeze", "overall"); !errors.Is(err, domain.ErrStreakNotFound) {
		t.Errorf("freeze error = %v, want ErrStreakNotFound", err)
	}
}

func TestInventory(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")

	out, _ := runCLI(t, "inventory")
	if !strings.Contains(out, "Inventory is empty.") {
		t.Errorf("empty inventory = %q", out)
	}

	out, err := runCLI(t, "inventory", "add", "potion", "Health Potion", "--heal", "25", "--quantity", "2")
	if err != nil {
		t.Fatalf("inventory add error: %v", err)
	}
	if !strings.Contains(out, "Added 2 x Health Potion.") {
		t.Errorf("add output = %q", out)
	}
	out, _ = runCLI(t, "inv")
	for _, want := range []string{"potion", "Health Potion", "hp_restore 25"} {
		if !strings.Contains(out, want) {
			t.Errorf("inventory missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "inventory", "use", "potion")
	if err != nil {
		t.Fatalf("inventory use error: %v", err)
	}
	if !strings.Contains(out, "HP 100 / 100") {
		t.Errorf("use output = %q", out)
	}
	if _, err := runCLI(t, "inventory", "use", "elixir"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("use unknown error = %v, want ErrItemNotFound", err)
	}
	if _, err := runCLI(t, "inventory", "add", "junk", "Junk", "--quantity", "0"); !errors.Is(err, domain.ErrInvalidItem) {
		t.Errorf("add zero quantity error = %v, want ErrInvalidItem", err)
	}

	if _, err := runCLI(t, "inventory", "rm", "potion"); err != nil {
		t.Fatalf("inventory rm error: %v", err)
	}
	out, _ = runCLI(t, "inventory")
	if !strings.Contains(out, "Inventory is empty.") {
		t.Errorf("inventory after rm = %q", out)
	}
}

func TestNotifications(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")
	runCLI(t, "log", "steps", "12000")

	out, err := runCLI(t, "notifications", "--read")
	if err != nil {
		t.Fatalf("notifications error: %v", err)
	}
	if strings.HasPrefix(out, "0 unread") || !strings.Contains(out, "Quest Complete!") {
		t.Errorf("notifications output = %q", out)
	}

	out, _ = runCLI(t, "notifications")
	if !strings.HasPrefix(out, "0 unread") {
		t.Errorf("after --read = %q", out)
	}

	runCLI(t, "notifications", "--clear")
	out, _ = runCLI(t, "notifications")
	if !strings.Contains(out, "No notifications.") {
		t.Errorf("after --clear = %q", out)
	}
}

func TestSummaryAndHistory(t *testing.T) {
	setupHome(t)
	runCLI(t, "init")

	out, _ := runCLI(t, "summary")
	if !strings.Contains(out, "Nothing logged") {
		t.Errorf("empty summary = %q", out)
	}

	runCLI(t, "log", "water", "3")
	out, err := runCLI(t, "summary")
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if !strings.Contains(out, "Water:       3 glasses") {
		t.Errorf("summary output = %q", out)
	}
	for _, want := range []string{"TIME", "SOURCE", "water", "3 glasses"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary records missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "history", "--days", "3")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if !strings.Contains(out, "DAY") || strings.Count(out, "\n") != 2 {
		t.Errorf("history output = %q", out)
	}

	if _, err := runCLI(t, "history", "--days", "0"); err == nil {
		t.Error("--days 0 should fail")
	}
	if _, err := runCLI(t, "summary", "July 1st"); err == nil {
		t.Error("bad date should fail")
	}
}

func TestSweep(t *testing.T) {
	setupHome(t)
	if _, err := runCLI(t, "sweep"); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("sweep without user error = %v", err)
	}
	runCLI(t, "init")
	out, err := runCLI(t, "sweep")
	if err != nil {
		t.Fatalf("sweep error: %v", err)
	}
	if !strings.Contains(out, "Expired 0 quests") {
		t.Errorf("sweep output = %q", out)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════════════════════

func TestReadActivities_Formats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"type":"steps","value":1,"date":"2025-07-01T08:00:00Z"},{"type":"water","value":1,"date":"2025-07-01T08:00:00Z"}]`, 2},
		{"export", `{"activities":[{"type":"steps","value":1,"date":"2025-07-01T08:00:00Z"}]}`, 1},
		{"single", `{"type":"steps","value":1,"date":"2025-07-01T08:00:00Z"}`, 1},
		{"lines", "{\"type\":\"steps\",\"value\":1,\"date\":\"2025-07-01T08:00:00Z\"}\n\n{\"type\":\"meal\",\"value\":1,\"date\":\"2025-07-01T08:00:00Z\",\"metadata\":{\"healthy\":true}}\n", 2},
		{"empty", "  \n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			recs, err := readActivities(path, nil)
			if err != nil {
				t.Fatalf("readActivities() error: %v", err)
			}
			if len(recs) != tt.want {
				t.Errorf("got %d records, want %d", len(recs), tt.want)
			}
		})
	}
}

func TestReadActivities_Stdin(t *testing.T) {
	recs, err := readActivities("-", strings.NewReader(`[{"type":"sleep","value":8,"date":"2025-07-01T06:00:00Z","metadata":{"quality":"good"}}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].SleepQuality() != domain.SleepGood {
		t.Errorf("records = %+v", recs)
	}
}

func TestReadActivities_Errors(t *testing.T) {
	if _, err := readActivities(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := readActivities("-", strings.NewReader("[{broken")); err == nil {
		t.Error("broken JSON should fail")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "[" + strings.Repeat(".", barWidth) + "]   0%"},
		{100, "[" + strings.Repeat("=", barWidth) + "] 100%"},
		{150, "[" + strings.Repeat("=", barWidth) + "] 100%"},
		{50, "[" + strings.Repeat("=", 14) + ">" + strings.Repeat(".", 15) + "]  50%"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.pct); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
	if ratioPct(1, 0) != 0 {
		t.Error("ratioPct with zero whole should be 0")
	}
}
