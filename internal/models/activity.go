package models

import "time"

// ActivityAction tags a group-task event in the activity feed.
type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionCompleted ActivityAction = "completed"
	ActionDeleted   ActivityAction = "deleted"
	ActionCommented ActivityAction = "commented"
)

// StatusAction builds the action tag for a workflow status change.
func StatusAction(status TaskStatus) ActivityAction {
	return ActivityAction("status_" + string(status))
}

// ActivityRecord is one append-only row of the remote activity_logs
// collection. The feed reads the most recent records first, capped to
// ActivityWindow.
type ActivityRecord struct {
	ID        string         `json:"id"`
	GroupID   string         `json:"group_id"`
	TaskID    string         `json:"task_id"`
	ActorID   string         `json:"actor_id"`
	Action    ActivityAction `json:"action"`
	Details   string         `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ActivityWindow is the display cap of the activity feed.
const ActivityWindow = 50
