package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/task-sync/internal/api"
	"github.com/taskflow/task-sync/internal/auth/authtest"
	"github.com/taskflow/task-sync/internal/remote/remotetest"
	"github.com/taskflow/task-sync/internal/sync"
)

func newServer(t *testing.T) (*httptest.Server, *remotetest.Fake) {
	t.Helper()
	backend := remotetest.New()
	engine := sync.New(backend, authtest.New(), nil)
	server := httptest.NewServer(api.SetupRouter(engine))
	t.Cleanup(server.Close)
	return server, backend
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSessionAndTaskFlow(t *testing.T) {
	server, _ := newServer(t)

	resp, err := http.Get(server.URL + "/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.False(t, decode(t, resp)["authenticated"].(bool))

	resp = postJSON(t, server.URL+"/session/signin", map[string]string{
		"email": "ana@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/tasks", map[string]string{
		"description": "buy milk", "priority": "high", "due_date": "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tasks := decode(t, resp)["tasks"].([]interface{})
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]interface{})
	assert.Equal(t, "buy milk", task["description"])
	assert.Equal(t, "high", task["priority"])
	assert.Equal(t, "pending", task["status"])

	resp, err = http.Get(server.URL + "/tasks?search=MILK&status=active")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := decode(t, resp)
	assert.Len(t, body["tasks"].([]interface{}), 1)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["Total"])
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	server, _ := newServer(t)
	postJSON(t, server.URL+"/session/signin", map[string]string{"email": "a@b.c", "password": "x"})

	resp := postJSON(t, server.URL+"/tasks", map[string]string{
		"description": "x", "due_date": "15/09/2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGroupEndpointsMapDomainErrors(t *testing.T) {
	server, backend := newServer(t)
	postJSON(t, server.URL+"/session/signin", map[string]string{"email": "ana@example.com", "password": "x"})

	resp := postJSON(t, server.URL+"/groups", map[string]string{"name": "Household"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	groups := decode(t, resp)["groups"].([]interface{})
	require.Len(t, groups, 1)
	groupID := groups[0].(map[string]interface{})["id"].(string)

	resp = postJSON(t, server.URL+"/groups/"+groupID+"/select", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown email maps to 404.
	resp = postJSON(t, server.URL+"/groups/members", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A duplicate membership maps to 409.
	bob := backend.AddProfile("bob@example.com", "Bob")
	resp = postJSON(t, server.URL+"/groups/members", map[string]string{"email": bob.Email})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = postJSON(t, server.URL+"/groups/members", map[string]string{"email": bob.Email})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestNotificationEndpointsRequireSession(t *testing.T) {
	server, _ := newServer(t)

	resp, err := http.Get(server.URL + "/notifications")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
