package engagement

import (
	"math"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Character Class ────────────────────────────────────────────────────────
// The class follows average daily activity since the player joined. Each
// class scores its floored daily average against its threshold. The best
// score of at least 1 wins, ties going to warrior, then monk, then
// assassin. Everyone else is a villager.

// ClassFor returns the class the stats earn at now.
func (r Rulebook) ClassFor(st domain.UserStats, now time.Time) domain.CharacterClass {
	days := max(1, math.Ceil(now.Sub(st.JoinedDate).Hours()/24))
	c := r.rules.Classes

	scores := []struct {
		class domain.CharacterClass
		score float64
	}{
		{domain.ClassWarrior, math.Floor(st.TotalExerciseMinutes/days) / c.WarriorExerciseMinutes},
		{domain.ClassMonk, math.Floor(st.TotalMeditationMinutes/days) / c.MonkMeditationMinutes},
		{domain.ClassAssassin, math.Floor(st.TotalSteps/days) / c.AssassinSteps},
	}
	best, top := domain.ClassVillager, 0.0
	for _, sc := range scores {
		if sc.score > top {
			best, top = sc.class, sc.score
		}
	}
	if top < 1 {
		return domain.ClassVillager
	}
	return best
}

// DetermineClass re-derives the character class from the lifetime totals.
func (r Rulebook) DetermineClass(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil || r.ClassFor(s.User.Stats, now) == s.User.Character.Class {
		return s
	}
	next := s.Clone()
	r.classify(&next, now)
	return next
}

func (r Rulebook) classify(s *domain.GameState, now time.Time) {
	s.User.Character.Class = r.ClassFor(s.User.Stats, now)
}
