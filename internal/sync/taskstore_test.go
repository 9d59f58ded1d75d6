package sync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/sync"
)

func TestCreateAppliesDefaults(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "buy milk"}))

	tasks := engine.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, models.PriorityMedium, tasks[0].Priority)
	assert.Equal(t, models.StatusPending, tasks[0].Status)
	assert.False(t, tasks[0].Completed)
	assert.NotEmpty(t, tasks[0].ID, "cache holds the server-assigned row")
	assert.Len(t, backend.Tasks(), 1)
}

func TestCreateEmptyDescriptionIsNoOp(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	require.NoError(t, engine.Create(context.Background(), models.TaskDraft{Description: "   "}))
	assert.Empty(t, engine.Tasks())
	assert.Empty(t, backend.Tasks())
}

func TestCreateWithoutIdentityIsNoOp(t *testing.T) {
	engine, backend, _ := newEngine(t)

	require.NoError(t, engine.Create(context.Background(), models.TaskDraft{Description: "orphan"}))
	assert.Empty(t, backend.Tasks())
}

func TestToggleCompletionRoundTrip(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "laundry"}))
	id := engine.Tasks()[0].ID

	require.NoError(t, engine.ToggleCompletion(ctx, id))
	task := engine.Tasks()[0]
	assert.True(t, task.Completed)
	assert.Equal(t, models.StatusCompleted, task.Status)

	require.NoError(t, engine.ToggleCompletion(ctx, id))
	task = engine.Tasks()[0]
	assert.False(t, task.Completed)
	assert.Equal(t, models.StatusPending, task.Status)
}

func TestFailedUpdateLeavesCacheUntouched(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "laundry"}))
	before := engine.Tasks()

	backend.UpdateTaskErr = errors.New("network down")
	err := engine.ToggleCompletion(ctx, before[0].ID)
	require.Error(t, err)

	assert.Equal(t, before, engine.Tasks(), "a failed remote call must not mutate the cache")
	assert.NotEmpty(t, engine.LastError())
	assert.False(t, engine.Loading())
}

func TestFailedReloadLeavesCacheUntouched(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "kept"}))
	before := engine.Tasks()

	backend.ListTasksErr = errors.New("network down")
	require.Error(t, engine.ReloadTasks(ctx))

	assert.Equal(t, before, engine.Tasks(), "a failed load must not replace the cache")
	assert.NotEmpty(t, engine.LastError())
	assert.False(t, engine.Loading())
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "laundry"}))
	id := engine.Tasks()[0].ID

	assert.Error(t, engine.SetStatus(ctx, id, "done"))

	require.NoError(t, engine.SetStatus(ctx, id, models.StatusInProgress))
	task := engine.Tasks()[0]
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.False(t, task.Completed)
}

func TestUpdateDerivesCompletionFromStatus(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "laundry"}))
	id := engine.Tasks()[0].ID

	status := models.StatusCompleted
	require.NoError(t, engine.Update(ctx, id, models.TaskPatch{Status: &status}))
	assert.True(t, engine.Tasks()[0].Completed)
}

func TestRemoveUnknownTask(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	err := engine.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, sync.ErrTaskNotFound)
}

func TestRemoveDropsTask(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "first"}))
	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "second"}))

	id := engine.Tasks()[1].ID
	require.NoError(t, engine.Remove(ctx, id))

	require.Len(t, engine.Tasks(), 1)
	assert.Equal(t, "second", engine.Tasks()[0].Description)
	assert.Len(t, backend.Tasks(), 1)
}

func TestGroupTaskLifecycleFeedsActivityAndNotifications(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	groupID := enterGroup(t, engine, "Household")
	other := backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(ctx, other.Email))

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "clean kitchen"}))
	task := engine.Tasks()[0]
	require.NotNil(t, task.GroupID)
	assert.Equal(t, groupID, *task.GroupID)

	require.NoError(t, engine.ToggleCompletion(ctx, task.ID))

	actions := make(map[models.ActivityAction]int)
	for _, rec := range backend.Activity() {
		actions[rec.Action]++
	}
	assert.Equal(t, 1, actions[models.ActionCreated])
	assert.Equal(t, 1, actions[models.ActionCompleted])

	var completedNotices int
	for _, n := range backend.Notifications() {
		if n.Type == models.NotifyTaskCompleted {
			completedNotices++
			assert.Equal(t, other.ID, n.RecipientID, "the actor is never notified")
		}
	}
	assert.Equal(t, 1, completedNotices)
}

func TestCommentOnGroupTaskNotifiesMembers(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	enterGroup(t, engine, "Household")
	other := backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(ctx, other.Email))

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "clean kitchen"}))
	taskID := engine.Tasks()[0].ID

	require.NoError(t, engine.CommentOn(ctx, taskID, "I can take this one"))

	comments, err := engine.Comments(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "I can take this one", comments[0].Content)

	var commentNotices int
	for _, n := range backend.Notifications() {
		if n.Type == models.NotifyTaskCommented {
			commentNotices++
			assert.Equal(t, other.ID, n.RecipientID)
		}
	}
	assert.Equal(t, 1, commentNotices)
}

func TestCommentEmptyContentIsNoOp(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "quiet"}))
	taskID := engine.Tasks()[0].ID

	require.NoError(t, engine.CommentOn(ctx, taskID, "  "))
	comments, err := engine.Comments(ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
