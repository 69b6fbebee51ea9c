package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Error Mapping ──────────────────────────────────────────────────────────

// writeEngineError maps engine sentinel errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoUser),
		errors.Is(err, domain.ErrQuestNotFound),
		errors.Is(err, domain.ErrAchievementNotFound),
		errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, domain.ErrStreakNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidActivity),
		errors.Is(err, domain.ErrInvalidQuest),
		errors.Is(err, domain.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientGold):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrStaleState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseDay reads a YYYY-MM-DD query value in the engine's zone. An empty
// value yields fallback.
func (s *Server) parseDay(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	return time.ParseInLocation(time.DateOnly, v, s.eng.Rulebook().Location())
}

// ─── Profile ────────────────────────────────────────────────────────────────

type profileResponse struct {
	User             domain.User `json:"user"`
	XPForNextLevel   int64       `json:"xp_for_next_level"`
	XPToNextLevel    int64       `json:"xp_to_next_level"`
	LevelProgressPct float64     `json:"level_progress_pct"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.State())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.eng.User()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	book := s.eng.Rulebook()
	writeJSON(w, http.StatusOK, profileResponse{
		User:             u,
		XPForNextLevel:   book.XPForNextLevel(u.Character),
		XPToNextLevel:    book.XPToNextLevel(u.Character),
		LevelProgressPct: book.LevelProgressPct(u.Character),
	})
}

type createUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.eng.Initialize(req.Username); err != nil {
		writeEngineError(w, err)
		return
	}
	u, _ := s.eng.User()
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleResetUser(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.Reset(); err != nil {
		writeEngineError(w, err)
		return
	}
	u, _ := s.eng.User()
	writeJSON(w, http.StatusOK, u)
}

// ─── Activity Ledger ────────────────────────────────────────────────────────

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	today := s.eng.Rulebook().StartOfDay(s.eng.Now())
	from, err := s.parseDay(r.URL.Query().Get("from"), today)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	to, err := s.parseDay(r.URL.Query().Get("to"), from)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to is before from")
		return
	}
	acts := s.eng.Activities(from, to.AddDate(0, 0, 1))
	if acts == nil {
		acts = []domain.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": acts})
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var rec domain.ActivityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.eng.LogActivity(rec)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

type importRequest struct {
	Activities []domain.ActivityRecord `json:"activities"`
}

func (s *Server) handleImportActivities(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.eng.ImportActivities(req.Activities)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"imported": n,
		"skipped":  len(req.Activities) - n,
	})
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	var rec domain.ActivityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.ID = chi.URLParam(r, "id")
	if err := s.eng.UpdateActivity(rec); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.DeleteActivity(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	day, err := s.parseDay(r.URL.Query().Get("date"), s.eng.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	sum, ok := s.eng.DailySummary(day)
	if !ok {
		sum = domain.DailySummary{Date: s.eng.Rulebook().StartOfDay(day)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     sum,
		"activity_xp": s.eng.Rulebook().DailyActivityXP(sum),
	})
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	active, completed := s.eng.ActiveQuests(), s.eng.CompletedQuests()
	if active == nil {
		active = []domain.Quest{}
	}
	if completed == nil {
		completed = []domain.Quest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":    active,
		"completed": completed,
	})
}

type createQuestRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    domain.QuestCategory   `json:"category"`
	Difficulty  domain.QuestDifficulty `json:"difficulty"`
	Metric      domain.ProgressMetric  `json:"metric"`
	Target      float64                `json:"target"`
	DueDate     time.Time              `json:"due_date"`
}

func (s *Server) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req createQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := s.eng.CreateCustomQuest(engagement.CustomQuestSpec{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Metric:      req.Metric,
		Target:      req.Target,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleCompleteQuest(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.CompleteQuest(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	u, _ := s.eng.User()
	writeJSON(w, http.StatusOK, u.Character)
}

func (s *Server) handleDeleteQuest(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.DeleteQuest(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Achievements & Streaks ─────────────────────────────────────────────────

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	all := s.eng.Achievements()
	// Hidden achievements stay out of the list until unlocked.
	visible := make([]domain.Achievement, 0, len(all))
	for _, a := range all {
		if a.Hidden && !a.Unlocked {
			continue
		}
		visible = append(visible, a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": visible})
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	streaks := s.eng.Streaks()
	if streaks == nil {
		streaks = []domain.Streak{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"streaks": streaks})
}

func (s *Server) handleBuyFreeze(w http.ResponseWriter, r *http.Request) {
	t := domain.StreakType(chi.URLParam(r, "type"))
	ref := r.URL.Query().Get("ref")
	if err := s.eng.BuyStreakFreeze(t, ref); err != nil {
		writeEngineError(w, err)
		return
	}
	for _, st := range s.eng.Streaks() {
		if st.Matches(t, ref) {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Inventory ──────────────────────────────────────────────────────────────

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	items := s.eng.Inventory()
	if items == nil {
		items = []domain.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.eng.AddItem(item); err != nil {
		writeEngineError(w, err)
		return
	}
	s.writeItem(w, http.StatusCreated, item.ID)
}

func (s *Server) handleUseItem(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.UseItem(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	u, err := s.eng.User()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"character": u.Character, "items": s.eng.Inventory()})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.RemoveItem(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeItem(w http.ResponseWriter, code int, id string) {
	for _, it := range s.eng.Inventory() {
		if it.ID == id {
			writeJSON(w, code, it)
			return
		}
	}
	w.WriteHeader(code)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, unread := s.eng.Notifications()
	if list == nil {
		list = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unread_count":  unread,
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.MarkNotificationRead(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.MarkAllNotificationsRead(); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.ClearNotifications(); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Maintenance ────────────────────────────────────────────────────────────

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	rep, err := s.eng.Sweep()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"quests_expired":  rep.QuestsExpired,
		"streaks_broken":  rep.StreaksBroken,
		"quests_added":    rep.QuestsAdded,
		"quests_finished": rep.QuestsFinished,
	})
}
