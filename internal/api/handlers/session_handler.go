package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskflow/task-sync/internal/auth"
	"github.com/taskflow/task-sync/internal/sync"
)

type SessionHandler struct {
	engine *sync.Engine
}

func NewSessionHandler(engine *sync.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": h.engine.Authenticated(),
		"identity":      h.engine.Identity(),
		"profile":       h.engine.Profile(),
	})
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.SignIn(r.Context(), body.Email, body.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"identity": h.engine.Identity()})
}

func (h *SessionHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.SignUp(r.Context(), body.Email, body.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"identity": h.engine.Identity()})
}

func (h *SessionHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := auth.Provider(r.PathValue("provider"))
	state := r.URL.Query().Get("state")

	url, err := h.engine.OAuthURL(provider, state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *SessionHandler) OAuthComplete(w http.ResponseWriter, r *http.Request) {
	provider := auth.Provider(r.PathValue("provider"))

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	if err := h.engine.CompleteOAuth(r.Context(), provider, body.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"identity": h.engine.Identity()})
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.SignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
