package sync

import (
	"context"

	"github.com/taskflow/task-sync/internal/models"
)

// logActivity appends one activity record. The call is awaited so that
// dependent notifications keep their causal order in the feed, but a
// failure only logs a warning: the originating mutation already
// succeeded.
func (e *Engine) logActivity(ctx context.Context, groupID, taskID string, action models.ActivityAction, details string) {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return
	}
	actorID := e.identity.UserID
	e.mu.Unlock()

	rec := models.ActivityRecord{
		GroupID: groupID,
		TaskID:  taskID,
		ActorID: actorID,
		Action:  action,
		Details: details,
	}
	if err := e.api.InsertActivity(ctx, rec); err != nil {
		e.log.Warnw("activity log failed", "group", groupID, "action", action, "error", err)
		return
	}

	// Keep the visible feed current without a remote rescan.
	e.mu.Lock()
	if e.mode.IsGroup() && e.mode.GroupID == groupID {
		rec.CreatedAt = e.now()
		e.activity = append([]models.ActivityRecord{rec}, e.activity...)
		if len(e.activity) > models.ActivityWindow {
			e.activity = e.activity[:models.ActivityWindow]
		}
	}
	e.mu.Unlock()
}

// notifyMembers bulk-inserts one notification per group member other than
// the acting identity. A group with no other members is a no-op.
func (e *Engine) notifyMembers(ctx context.Context, groupID string, typ models.NotificationType, title, message string, data map[string]string) {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return
	}
	actorID := e.identity.UserID
	e.mu.Unlock()

	members, err := e.api.ListMembers(ctx, groupID)
	if err != nil {
		e.log.Warnw("notify members failed", "group", groupID, "error", err)
		return
	}

	var ns []models.Notification
	for _, m := range members {
		if m.UserID == actorID {
			continue
		}
		ns = append(ns, models.Notification{
			RecipientID: m.UserID,
			Type:        typ,
			Title:       title,
			Message:     message,
			Data:        data,
		})
	}
	if len(ns) == 0 {
		return
	}

	if err := e.api.InsertNotifications(ctx, ns); err != nil {
		e.log.Warnw("notify members failed", "group", groupID, "error", err)
	}
}

// RefreshNotifications replaces the notification cache with the most
// recent window and recounts unread from it.
func (e *Engine) RefreshNotifications(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	userID := e.identity.UserID
	e.mu.Unlock()

	ns, err := e.api.ListNotifications(ctx, userID, models.NotificationWindow)
	if err != nil {
		return e.fail("load notifications", err)
	}

	unread := 0
	for _, n := range ns {
		if !n.Read {
			unread++
		}
	}

	e.mu.Lock()
	e.notifications = ns
	e.unread = unread
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}

// MarkRead flips one notification's read flag remotely, then decrements
// the local unread counter, never below zero and never by rescanning the
// remote collection.
func (e *Engine) MarkRead(ctx context.Context, id string) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	userID := e.identity.UserID
	e.mu.Unlock()

	if err := e.api.MarkNotificationRead(ctx, id, userID); err != nil {
		return e.fail("mark read", err)
	}

	e.mu.Lock()
	for i := range e.notifications {
		if e.notifications[i].ID == id {
			if !e.notifications[i].Read && e.unread > 0 {
				e.unread--
			}
			e.notifications[i].Read = true
			break
		}
	}
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}

// MarkAllRead flips every notification's read flag remotely, then zeroes
// the local unread counter.
func (e *Engine) MarkAllRead(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	userID := e.identity.UserID
	e.mu.Unlock()

	if err := e.api.MarkAllNotificationsRead(ctx, userID); err != nil {
		return e.fail("mark all read", err)
	}

	e.mu.Lock()
	for i := range e.notifications {
		e.notifications[i].Read = true
	}
	e.unread = 0
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}
