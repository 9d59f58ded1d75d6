package postgrest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

func TestListTasksBuildsScopedQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		w.Write([]byte(`[{"id":"t1","owner_id":"u1","description":"x","due_date":"2026-09-15","created_at":"2026-08-31T10:00:00Z"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", nil)
	client.SetTokenSource(func() string { return "jwt" })

	tasks, err := client.ListTasks(context.Background(), remote.Personal("u1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"eq.u1"}, gotQuery["owner_id"])
	assert.Equal(t, []string{"is.null"}, gotQuery["group_id"])
	assert.Equal(t, []string{"created_at.desc"}, gotQuery["order"])
	assert.Equal(t, "Bearer jwt", gotAuth)
	assert.Equal(t, "anon-key", gotKey)

	require.Len(t, tasks, 1)
	assert.Equal(t, models.PriorityMedium, tasks[0].Priority, "rows are normalized on the way in")
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC), *tasks[0].DueDate)
}

func TestListTasksGroupScope(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", nil)
	_, err := client.ListTasks(context.Background(), remote.InGroup("g1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"eq.g1"}, gotQuery["group_id"])
	assert.Empty(t, gotQuery["owner_id"])
}

func TestInsertTaskDecodesRepresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"t1","owner_id":"u1","description":"x","priority":"medium","status":"pending","created_at":"2026-08-31T10:00:00Z"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", nil)
	created, err := client.InsertTask(context.Background(), models.Task{OwnerID: "u1", Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)
}

func TestUniqueViolationIsConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", nil)
	err := client.InsertMembership(context.Background(), models.Membership{GroupID: "g1", UserID: "u1"})
	require.Error(t, err)
	assert.True(t, remote.IsConflict(err))
}

func TestEmptyProfileLookupIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ilike.ghost@example.com", r.URL.Query().Get("email"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", nil)
	_, err := client.FindProfileByEmail(context.Background(), "ghost@example.com")
	assert.True(t, remote.IsNotFound(err))
}

func TestDueDateRoundTrip(t *testing.T) {
	due, err := parseDueDate("2026-09-15")
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, 12, due.Hour(), "due dates land at noon UTC to survive timezone display")
	assert.Equal(t, "2026-09-15", formatDueDate(due))

	none, err := parseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseDueDate("15/09/2026")
	assert.Error(t, err)
}
