package engagement

import (
	"slices"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// Notifications are data only. Newest first; UnreadCount counts entries
// with Read == false and never goes negative. Delivery belongs to whoever
// reads the list.

// AddNotification prepends an externally built notification.
func (r Rulebook) AddNotification(s domain.GameState, n domain.Notification, now time.Time) domain.GameState {
	next := s.Clone()
	if n.ID == "" {
		n.ID = r.newID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	next.Notifications = slices.Insert(next.Notifications, 0, n)
	if !n.Read {
		next.UnreadCount++
	}
	return next
}

// MarkNotificationRead marks one notification read.
func (r Rulebook) MarkNotificationRead(s domain.GameState, id string) domain.GameState {
	i := slices.IndexFunc(s.Notifications, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 || s.Notifications[i].Read {
		return s
	}
	next := s.Clone()
	next.Notifications[i].Read = true
	next.UnreadCount = max(next.UnreadCount-1, 0)
	return next
}

// MarkAllNotificationsRead marks every notification read.
func (r Rulebook) MarkAllNotificationsRead(s domain.GameState) domain.GameState {
	if s.UnreadCount == 0 {
		return s
	}
	next := s.Clone()
	for i := range next.Notifications {
		next.Notifications[i].Read = true
	}
	next.UnreadCount = 0
	return next
}

// ClearNotifications drops every notification.
func (r Rulebook) ClearNotifications(s domain.GameState) domain.GameState {
	next := s.Clone()
	next.Notifications = nil
	next.UnreadCount = 0
	return next
}

func (r Rulebook) notify(s *domain.GameState, t domain.NotificationType, title, message, icon string, now time.Time) {
	n := domain.Notification{
		ID:        r.newID(),
		Type:      t,
		Title:     title,
		Message:   message,
		Icon:      icon,
		Timestamp: now,
	}
	s.Notifications = slices.Insert(s.Notifications, 0, n)
	s.UnreadCount++
}

// collapseLevelUps keeps only the newest level_up notification among those
// a composite transition prepended, so one player action announces one
// level-up however many XP grants it contained.
func collapseLevelUps(before, after domain.GameState) domain.GameState {
	k := len(after.Notifications) - len(before.Notifications)
	if k < 2 {
		return after
	}
	kept := make([]domain.Notification, 0, len(after.Notifications))
	seen := false
	for _, n := range after.Notifications[:k] {
		if n.Type == domain.NotifyLevelUp {
			if seen {
				if !n.Read {
					after.UnreadCount = max(after.UnreadCount-1, 0)
				}
				continue
			}
			seen = true
		}
		kept = append(kept, n)
	}
	after.Notifications = append(kept, after.Notifications[k:]...)
	return after
}
