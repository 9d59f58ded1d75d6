package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

// loadScope replaces the whole task cache with the remote result. A failed
// query leaves the previous cache untouched.
func (e *Engine) loadScope(ctx context.Context, scope remote.Scope) error {
	e.setLoading(true)
	tasks, err := e.api.ListTasks(ctx, scope)
	if err != nil {
		return e.fail("load tasks", err)
	}

	e.mu.Lock()
	e.tasks = tasks
	e.loading = false
	e.mu.Unlock()
	return nil
}

// ReloadTasks refreshes the task cache for the active scope.
func (e *Engine) ReloadTasks(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	scope := e.scopeLocked()
	e.mu.Unlock()
	return e.loadScope(ctx, scope)
}

// Create validates the draft and inserts a task in the active scope. An
// empty description or a missing identity is a silent no-op, matching the
// interface behavior of ignoring an empty submit. The server-returned row
// is prepended to the cache; creating a group task logs a "created"
// activity record.
func (e *Engine) Create(ctx context.Context, draft models.TaskDraft) error {
	e.mu.Lock()
	identity := e.identity
	mode := e.mode
	e.mu.Unlock()

	if identity == nil || strings.TrimSpace(draft.Description) == "" {
		return nil
	}
	if err := models.ValidateStruct(draft); err != nil {
		return fmt.Errorf("invalid task draft: %w", err)
	}

	task := models.Task{
		OwnerID:     identity.UserID,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      draft.Status,
		DueDate:     draft.DueDate,
	}
	task.Normalize()
	if mode.IsGroup() {
		groupID := mode.GroupID
		task.GroupID = &groupID
	}

	created, err := e.api.InsertTask(ctx, task)
	if err != nil {
		return e.fail("create task", err)
	}

	e.mu.Lock()
	e.tasks = append([]models.Task{created}, e.tasks...)
	e.lastErr = ""
	e.mu.Unlock()

	if created.IsGroupTask() {
		e.logActivity(ctx, *created.GroupID, created.ID, models.ActionCreated, created.Description)
	}
	return nil
}

// ToggleCompletion flips the completion flag of a cached task, keeping the
// workflow status in agreement. Completing a group task logs an activity
// record and notifies the other members.
func (e *Engine) ToggleCompletion(ctx context.Context, id string) error {
	task, ok := e.cachedTask(id)
	if !ok {
		return ErrTaskNotFound
	}

	completed := !task.Completed
	status := models.StatusPending
	if completed {
		status = models.StatusCompleted
	}
	patch := models.TaskPatch{Completed: &completed, Status: &status}

	if err := e.api.UpdateTask(ctx, id, patch); err != nil {
		return e.fail("toggle task", err)
	}
	e.applyPatch(id, patch)

	if completed && task.IsGroupTask() {
		e.logActivity(ctx, *task.GroupID, id, models.ActionCompleted, task.Description)
		e.notifyMembers(ctx, *task.GroupID, models.NotifyTaskCompleted,
			"Task completed",
			fmt.Sprintf("%q was completed", task.Description),
			map[string]string{"task_id": id})
	}
	return nil
}

// SetStatus moves a task to the given workflow status and derives the
// completion flag from it. Group tasks log a status_<value> activity
// record.
func (e *Engine) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
	default:
		return fmt.Errorf("invalid status: %q", status)
	}

	task, ok := e.cachedTask(id)
	if !ok {
		return ErrTaskNotFound
	}

	completed := status == models.StatusCompleted
	patch := models.TaskPatch{Completed: &completed, Status: &status}

	if err := e.api.UpdateTask(ctx, id, patch); err != nil {
		return e.fail("set task status", err)
	}
	e.applyPatch(id, patch)

	if task.IsGroupTask() {
		e.logActivity(ctx, *task.GroupID, id, models.StatusAction(status), task.Description)
	}
	return nil
}

// Update applies description/priority/due-date/status edits as one remote
// update and replaces the cached record with the patched fields.
func (e *Engine) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if _, ok := e.cachedTask(id); !ok {
		return ErrTaskNotFound
	}
	if err := models.ValidateStruct(patch); err != nil {
		return fmt.Errorf("invalid task patch: %w", err)
	}

	// Status and completion flag never disagree.
	if patch.Status != nil && patch.Completed == nil {
		completed := *patch.Status == models.StatusCompleted
		patch.Completed = &completed
	}

	if err := e.api.UpdateTask(ctx, id, patch); err != nil {
		return e.fail("update task", err)
	}
	e.applyPatch(id, patch)
	return nil
}

// Remove deletes a task remotely, then drops it from the cache. Deleting
// a group task logs a "deleted" activity record.
func (e *Engine) Remove(ctx context.Context, id string) error {
	task, ok := e.cachedTask(id)
	if !ok {
		return ErrTaskNotFound
	}

	if err := e.api.DeleteTask(ctx, id); err != nil {
		return e.fail("delete task", err)
	}

	e.mu.Lock()
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
			break
		}
	}
	e.lastErr = ""
	e.mu.Unlock()

	if task.IsGroupTask() {
		e.logActivity(ctx, *task.GroupID, id, models.ActionDeleted, task.Description)
	}
	return nil
}

// Comments returns a task's comments ordered oldest first.
func (e *Engine) Comments(ctx context.Context, taskID string) ([]models.Comment, error) {
	comments, err := e.api.ListComments(ctx, taskID)
	if err != nil {
		return nil, e.fail("load comments", err)
	}
	return comments, nil
}

// CommentOn adds a comment to a task. Empty content or a missing identity
// is a silent no-op. Commenting on a group task logs an activity record
// and notifies the other members.
func (e *Engine) CommentOn(ctx context.Context, taskID, content string) error {
	e.mu.Lock()
	identity := e.identity
	e.mu.Unlock()

	if identity == nil || strings.TrimSpace(content) == "" {
		return nil
	}

	comment := models.Comment{
		TaskID:   taskID,
		AuthorID: identity.UserID,
		Content:  content,
	}
	created, err := e.api.InsertComment(ctx, comment)
	if err != nil {
		return e.fail("add comment", err)
	}

	if task, ok := e.cachedTask(taskID); ok && task.IsGroupTask() {
		e.logActivity(ctx, *task.GroupID, taskID, models.ActionCommented, created.Content)
		e.notifyMembers(ctx, *task.GroupID, models.NotifyTaskCommented,
			"New comment",
			fmt.Sprintf("New comment on %q", task.Description),
			map[string]string{"task_id": taskID, "comment_id": created.ID})
	}
	return nil
}

// cachedTask returns a copy of the cached task with the given id.
func (e *Engine) cachedTask(id string) (models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// applyPatch mutates the cached task after a remote acknowledgment.
func (e *Engine) applyPatch(id string, patch models.TaskPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			patch.Apply(&e.tasks[i])
			break
		}
	}
	e.lastErr = ""
}
