package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/taskflow/task-sync/internal/sync"
)

type GroupHandler struct {
	engine *sync.Engine
}

func NewGroupHandler(engine *sync.Engine) *GroupHandler {
	return &GroupHandler{engine: engine}
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ListGroups(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": h.engine.Groups()})
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.CreateGroup(r.Context(), body.Name, body.Description); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"groups": h.engine.Groups()})
}

func (h *GroupHandler) SelectGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.SelectGroup(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":   h.engine.Tasks(),
		"members": h.engine.Members(),
	})
}

func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.LeaveGroup(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": h.engine.Groups()})
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": h.engine.Members()})
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.AddMember(r.Context(), body.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"members": h.engine.Members()})
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveMember(r.Context(), r.PathValue("userId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": h.engine.Members()})
}

type activityEntry struct {
	ID      string `json:"id"`
	TaskID  string `json:"task_id"`
	ActorID string `json:"actor_id"`
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
	When    string `json:"when"`
}

// Activity returns the selected group's feed with humanized timestamps.
func (h *GroupHandler) Activity(w http.ResponseWriter, r *http.Request) {
	feed := h.engine.ActivityFeed()

	entries := make([]activityEntry, 0, len(feed))
	for _, rec := range feed {
		entries = append(entries, activityEntry{
			ID:      rec.ID,
			TaskID:  rec.TaskID,
			ActorID: rec.ActorID,
			Action:  string(rec.Action),
			Details: rec.Details,
			When:    humanize.Time(rec.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"activity": entries})
}
