// Package remotetest provides an in-memory implementation of the remote
// contract for testing.
package remotetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

// Fake is an in-memory backend. It assigns identifiers and creation
// timestamps the way the real service does and simulates the uniqueness
// constraint on (group_id, user_id) memberships.
type Fake struct {
	mu            sync.Mutex
	now           func() time.Time
	tasks         []models.Task
	profiles      []models.Profile
	groups        []models.Group
	members       []models.Membership
	comments      []models.Comment
	activity      []models.ActivityRecord
	notifications []models.Notification

	// Error injection for testing. A non-nil error is returned by the
	// matching method before any state is touched.
	ListTasksErr           error
	InsertTaskErr          error
	UpdateTaskErr          error
	DeleteTaskErr          error
	GetProfileErr          error
	FindProfileErr         error
	ListGroupsErr          error
	InsertGroupErr         error
	ListMembersErr         error
	InsertMembershipErr    error
	DeleteMembershipErr    error
	ListCommentsErr        error
	InsertCommentErr       error
	ListActivityErr        error
	InsertActivityErr      error
	ListNotificationsErr   error
	InsertNotificationsErr error
	MarkReadErr            error
	MarkAllReadErr         error
}

// New creates an empty fake backend.
func New() *Fake {
	return &Fake{now: time.Now}
}

// SetNow overrides the timestamp source.
func (f *Fake) SetNow(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// AddProfile seeds a profile and returns it.
func (f *Fake) AddProfile(email, name string) models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: f.now(),
	}
	f.profiles = append(f.profiles, p)
	return p
}

// Tasks returns a copy of the stored tasks.
func (f *Fake) Tasks() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Members returns a copy of the stored membership rows.
func (f *Fake) Members() []models.Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Membership, len(f.members))
	copy(out, f.members)
	return out
}

// Activity returns a copy of the stored activity records.
func (f *Fake) Activity() []models.ActivityRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ActivityRecord, len(f.activity))
	copy(out, f.activity)
	return out
}

// Notifications returns a copy of the stored notifications.
func (f *Fake) Notifications() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// SeedNotification stores a notification directly and returns it.
func (f *Fake) SeedNotification(userID string, read bool) models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: userID,
		Type:        models.NotifyGroupInvite,
		Title:       "seed",
		Message:     "seed",
		Read:        read,
		CreatedAt:   f.now(),
	}
	f.notifications = append(f.notifications, n)
	return n
}

func (f *Fake) ListTasks(ctx context.Context, scope remote.Scope) ([]models.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Task
	for _, t := range f.tasks {
		if scope.IsGroup() {
			if t.GroupID != nil && *t.GroupID == scope.GroupID {
				out = append(out, t)
			}
		} else if t.GroupID == nil && t.OwnerID == scope.OwnerID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *Fake) InsertTask(ctx context.Context, task models.Task) (models.Task, error) {
	if f.InsertTaskErr != nil {
		return models.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	task.ID = uuid.NewString()
	task.CreatedAt = f.now()
	task.Normalize()
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *Fake) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].ID == id {
			patch.Apply(&f.tasks[i])
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	if f.GetProfileErr != nil {
		return models.Profile{}, f.GetProfileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.profiles {
		if p.ID == userID {
			return p, nil
		}
	}
	return models.Profile{}, remote.ErrNotFound
}

func (f *Fake) FindProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	if f.FindProfileErr != nil {
		return models.Profile{}, f.FindProfileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return models.Profile{}, remote.ErrNotFound
}

func (f *Fake) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	if f.ListGroupsErr != nil {
		return nil, f.ListGroupsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	visible := make(map[string]bool)
	for _, m := range f.members {
		if m.UserID == userID {
			visible[m.GroupID] = true
		}
	}

	var out []models.Group
	for _, g := range f.groups {
		if visible[g.ID] {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *Fake) InsertGroup(ctx context.Context, group models.Group) (models.Group, error) {
	if f.InsertGroupErr != nil {
		return models.Group{}, f.InsertGroupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	group.ID = uuid.NewString()
	group.CreatedAt = f.now()
	f.groups = append(f.groups, group)
	return group, nil
}

func (f *Fake) ListMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Membership
	for _, m := range f.members {
		if m.GroupID == groupID {
			for _, p := range f.profiles {
				if p.ID == m.UserID {
					m.Email = p.Email
					m.Name = p.Name
					break
				}
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *Fake) InsertMembership(ctx context.Context, m models.Membership) error {
	if f.InsertMembershipErr != nil {
		return f.InsertMembershipErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.members {
		if existing.GroupID == m.GroupID && existing.UserID == m.UserID {
			return &remote.APIError{Status: 409, Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	m.CreatedAt = f.now()
	f.members = append(f.members, m)
	return nil
}

func (f *Fake) DeleteMembership(ctx context.Context, groupID, userID string) error {
	if f.DeleteMembershipErr != nil {
		return f.DeleteMembershipErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.members {
		if m.GroupID == groupID && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	if f.ListCommentsErr != nil {
		return nil, f.ListCommentsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Comment
	for _, c := range f.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *Fake) InsertComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	if f.InsertCommentErr != nil {
		return models.Comment{}, f.InsertCommentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = f.now()
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *Fake) ListActivity(ctx context.Context, groupID string, limit int) ([]models.ActivityRecord, error) {
	if f.ListActivityErr != nil {
		return nil, f.ListActivityErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.ActivityRecord
	for _, rec := range f.activity {
		if rec.GroupID == groupID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) InsertActivity(ctx context.Context, rec models.ActivityRecord) error {
	if f.InsertActivityErr != nil {
		return f.InsertActivityErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = f.now()
	f.activity = append(f.activity, rec)
	return nil
}

func (f *Fake) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if f.ListNotificationsErr != nil {
		return nil, f.ListNotificationsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) InsertNotifications(ctx context.Context, ns []models.Notification) error {
	if f.InsertNotificationsErr != nil {
		return f.InsertNotificationsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range ns {
		n.ID = uuid.NewString()
		n.CreatedAt = f.now()
		f.notifications = append(f.notifications, n)
	}
	return nil
}

func (f *Fake) MarkNotificationRead(ctx context.Context, id, userID string) error {
	if f.MarkReadErr != nil {
		return f.MarkReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].RecipientID == userID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if f.MarkAllReadErr != nil {
		return f.MarkAllReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.notifications {
		if f.notifications[i].RecipientID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

var _ remote.API = (*Fake)(nil)
