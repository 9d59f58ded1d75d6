// Package remote defines the contract of the hosted data service. The sync
// engine only ever talks to these interfaces; the postgrest subpackage is
// the real implementation and remotetest is the in-memory fake.
package remote

import (
	"context"

	"github.com/taskflow/task-sync/internal/models"
)

// Scope selects the task collection context: a user's personal tasks when
// GroupID is empty, otherwise the tasks of one group.
type Scope struct {
	OwnerID string
	GroupID string
}

// Personal scopes to the given user's tasks that belong to no group.
func Personal(ownerID string) Scope {
	return Scope{OwnerID: ownerID}
}

// InGroup scopes to the tasks of one group.
func InGroup(groupID string) Scope {
	return Scope{GroupID: groupID}
}

// IsGroup reports whether the scope selects a group.
func (s Scope) IsGroup() bool {
	return s.GroupID != ""
}

type TaskAPI interface {
	// ListTasks returns the tasks of a scope ordered by creation descending.
	ListTasks(ctx context.Context, scope Scope) ([]models.Task, error)

	// InsertTask stores a new task and returns the server row, with the
	// identifier and creation timestamp assigned remotely.
	InsertTask(ctx context.Context, task models.Task) (models.Task, error)

	// UpdateTask applies the patch to the task with the given id as one
	// atomic remote update.
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) error

	// DeleteTask removes the task with the given id.
	DeleteTask(ctx context.Context, id string) error
}

type ProfileAPI interface {
	// GetProfile returns the profile with the given user id.
	GetProfile(ctx context.Context, userID string) (models.Profile, error)

	// FindProfileByEmail looks a profile up by exact-match email,
	// case-insensitive. Returns ErrNotFound when absent.
	FindProfileByEmail(ctx context.Context, email string) (models.Profile, error)
}

type GroupAPI interface {
	// ListGroups returns the groups visible to the user, ordered by
	// creation descending.
	ListGroups(ctx context.Context, userID string) ([]models.Group, error)

	// InsertGroup stores a new group and returns the server row.
	InsertGroup(ctx context.Context, group models.Group) (models.Group, error)

	// ListMembers returns the membership rows of a group with profile
	// fields embedded.
	ListMembers(ctx context.Context, groupID string) ([]models.Membership, error)

	// InsertMembership stores a membership row. A duplicate (group, user)
	// pair fails with a uniqueness violation recognizable via IsConflict.
	InsertMembership(ctx context.Context, m models.Membership) error

	// DeleteMembership removes the membership row for (groupID, userID).
	DeleteMembership(ctx context.Context, groupID, userID string) error
}

type CommentAPI interface {
	// ListComments returns a task's comments ordered by creation ascending.
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)

	// InsertComment stores a comment and returns the server row.
	InsertComment(ctx context.Context, c models.Comment) (models.Comment, error)
}

type ActivityAPI interface {
	// ListActivity returns the most recent activity records of a group,
	// descending, capped to limit.
	ListActivity(ctx context.Context, groupID string, limit int) ([]models.ActivityRecord, error)

	// InsertActivity appends one activity record.
	InsertActivity(ctx context.Context, rec models.ActivityRecord) error
}

type NotificationAPI interface {
	// ListNotifications returns the user's most recent notifications,
	// descending, capped to limit.
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)

	// InsertNotifications stores a batch of notifications in one call.
	InsertNotifications(ctx context.Context, ns []models.Notification) error

	// MarkNotificationRead flips the read flag of one notification owned
	// by the user.
	MarkNotificationRead(ctx context.Context, id, userID string) error

	// MarkAllNotificationsRead flips the read flag of every unread
	// notification owned by the user.
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// API is the full remote collaborator surface.
type API interface {
	TaskAPI
	ProfileAPI
	GroupAPI
	CommentAPI
	ActivityAPI
	NotificationAPI
}
