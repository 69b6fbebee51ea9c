package engagement_test

import (
	"testing"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

func TestClassFor(t *testing.T) {
	tests := []struct {
		name  string
		stats domain.UserStats
		at    time.Time
		want  domain.CharacterClass
	}{
		{"new player", domain.UserStats{}, day0, domain.ClassVillager},
		{"exercise", domain.UserStats{TotalExerciseMinutes: 45}, day0, domain.ClassWarrior},
		{"meditation", domain.UserStats{TotalMeditationMinutes: 20}, day0, domain.ClassMonk},
		{"steps", domain.UserStats{TotalSteps: 12000}, day0, domain.ClassAssassin},
		{"best score wins", domain.UserStats{TotalExerciseMinutes: 31, TotalMeditationMinutes: 30}, day0, domain.ClassMonk},
		{"tie goes to warrior", domain.UserStats{TotalExerciseMinutes: 60, TotalMeditationMinutes: 30}, day0, domain.ClassWarrior},
		{"averaged over days", domain.UserStats{TotalExerciseMinutes: 45}, day0.Add(72 * time.Hour), domain.ClassVillager},
		{"partial day rounds up", domain.UserStats{TotalSteps: 25000}, day0.Add(36 * time.Hour), domain.ClassAssassin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.stats.JoinedDate = day0
			if got := book.ClassFor(tt.stats, tt.at); got != tt.want {
				t.Errorf("ClassFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInitializeUser_Villager(t *testing.T) {
	if c := newPlayer(t).User.Character.Class; c != domain.ClassVillager {
		t.Errorf("class = %q, want villager", c)
	}
}

func TestRecordActivity_SetsClass(t *testing.T) {
	s := barePlayer(t)
	s = book.RecordActivity(s, domain.ActivityRecord{
		Type: domain.ActivityExercise, Value: 40, Date: day0,
		Metadata: domain.ExerciseDetails{DurationMinutes: 40},
	}, day0)
	if c := s.User.Character.Class; c != domain.ClassWarrior {
		t.Fatalf("class after 40 min exercise = %s, want warrior", c)
	}

	// Three days later the average has dropped below the threshold.
	later := day0.Add(72 * time.Hour)
	s = book.DetermineClass(s, later)
	if c := s.User.Character.Class; c != domain.ClassVillager {
		t.Errorf("class after three idle days = %s, want villager", c)
	}
}

func TestDetermineClass_UnchangedReturnsInput(t *testing.T) {
	s := newPlayer(t)
	next := book.DetermineClass(s, day0)
	if next.User != s.User {
		t.Error("DetermineClass should return the input when the class is unchanged")
	}
}
