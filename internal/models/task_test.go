package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/task-sync/internal/models"
)

func TestNormalizeDefaults(t *testing.T) {
	task := models.Task{Description: "water the plants"}
	task.Normalize()

	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.False(t, task.Completed)
}

func TestNormalizeDerivesStatusFromFlag(t *testing.T) {
	task := models.Task{Description: "done already", Completed: true}
	task.Normalize()

	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.True(t, task.Completed)
}

func TestNormalizeStatusWinsOverFlag(t *testing.T) {
	task := models.Task{Description: "conflicting", Completed: true, Status: models.StatusInProgress}
	task.Normalize()

	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.False(t, task.Completed, "completion flag must follow the status value")
}

func TestDraftValidation(t *testing.T) {
	err := models.ValidateStruct(models.TaskDraft{Description: "ok", Priority: models.PriorityHigh})
	require.NoError(t, err)

	err = models.ValidateStruct(models.TaskDraft{})
	assert.Error(t, err, "description is required")

	err = models.ValidateStruct(models.TaskDraft{Description: "ok", Priority: "urgent"})
	assert.Error(t, err, "priority outside the enum must be rejected")

	err = models.ValidateStruct(models.TaskDraft{Description: "ok", Status: "done"})
	assert.Error(t, err, "status outside the enum must be rejected")
}

func TestPatchApplyKeepsStatusAndFlagInAgreement(t *testing.T) {
	task := models.Task{Description: "original", Priority: models.PriorityLow, Status: models.StatusPending}

	status := models.StatusCompleted
	patch := models.TaskPatch{Status: &status}
	patch.Apply(&task)

	assert.True(t, task.Completed)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, models.PriorityLow, task.Priority, "untouched fields survive the patch")
}

func TestPatchApplyLeavesNilFieldsAlone(t *testing.T) {
	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	task := models.Task{Description: "original", Priority: models.PriorityHigh, Status: models.StatusInProgress, DueDate: &due}

	desc := "edited"
	patch := models.TaskPatch{Description: &desc}
	patch.Apply(&task)

	assert.Equal(t, "edited", task.Description)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, models.StatusInProgress, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)
}

func TestIsGroupTask(t *testing.T) {
	personal := models.Task{Description: "mine"}
	assert.False(t, personal.IsGroupTask())

	groupID := "g1"
	shared := models.Task{Description: "ours", GroupID: &groupID}
	assert.True(t, shared.IsGroupTask())
}
