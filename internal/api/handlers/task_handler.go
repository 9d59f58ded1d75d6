package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/sync"
)

type TaskHandler struct {
	engine *sync.Engine
}

func NewTaskHandler(engine *sync.Engine) *TaskHandler {
	return &TaskHandler{engine: engine}
}

// ListTasks projects the task cache through the filter criteria given as
// query parameters and returns it with the summary figures.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := sync.Filter{
		Search:   r.URL.Query().Get("search"),
		Priority: r.URL.Query().Get("priority"),
		Status:   sync.StatusFilter(r.URL.Query().Get("status")),
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":   h.engine.View(filter),
		"stats":   h.engine.Stats(),
		"overdue": h.engine.OverdueTasks(),
	})
}

type createTaskBody struct {
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body createTaskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	draft := models.TaskDraft{
		Description: body.Description,
		Priority:    models.TaskPriority(body.Priority),
		Status:      models.TaskStatus(body.Status),
	}
	if body.DueDate != "" {
		due, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date: " + err.Error()})
			return
		}
		draft.DueDate = &due
	}

	if err := h.engine.Create(r.Context(), draft); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"tasks": h.engine.Tasks()})
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ToggleCompletion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": h.engine.Tasks()})
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.SetStatus(r.Context(), r.PathValue("id"), models.TaskStatus(body.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": h.engine.Tasks()})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.Update(r.Context(), r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": h.engine.Tasks()})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": h.engine.Tasks()})
}

func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.engine.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (h *TaskHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.CommentOn(r.Context(), r.PathValue("id"), body.Content); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "comment added"})
}
