package handlers

import (
	"net/http"

	"github.com/taskflow/task-sync/internal/sync"
)

type NotificationHandler struct {
	engine *sync.Engine
}

func NewNotificationHandler(engine *sync.Engine) *NotificationHandler {
	return &NotificationHandler{engine: engine}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RefreshNotifications(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.engine.Notifications(),
		"unread":        h.engine.UnreadCount(),
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"unread": h.engine.UnreadCount()})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.MarkAllRead(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"unread": h.engine.UnreadCount()})
}
