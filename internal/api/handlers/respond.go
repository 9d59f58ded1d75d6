package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskflow/task-sync/internal/sync"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the engine's error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sync.ErrNotSignedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, sync.ErrTaskNotFound), errors.Is(err, sync.ErrMemberNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sync.ErrAlreadyMember):
		status = http.StatusConflict
	case errors.Is(err, sync.ErrNoGroupSelected):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
