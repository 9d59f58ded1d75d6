package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

// ListGroups refreshes the cached list of groups visible to the current
// identity, ordered by creation descending.
func (e *Engine) ListGroups(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	userID := e.identity.UserID
	e.mu.Unlock()

	groups, err := e.api.ListGroups(ctx, userID)
	if err != nil {
		return e.fail("load groups", err)
	}

	e.mu.Lock()
	e.groups = groups
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}

// CreateGroup inserts a group, then enrolls the creator as admin. The two
// writes are strictly sequential with no compensating rollback: when the
// membership insert fails the group already exists remotely, the error
// wraps ErrGroupWithoutAdmin, and the group is not added to the local
// list. An empty name or a missing identity is a silent no-op.
func (e *Engine) CreateGroup(ctx context.Context, name, description string) error {
	e.mu.Lock()
	identity := e.identity
	e.mu.Unlock()

	if identity == nil || strings.TrimSpace(name) == "" {
		return nil
	}

	group, err := e.api.InsertGroup(ctx, models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   identity.UserID,
	})
	if err != nil {
		return e.fail("create group", err)
	}

	err = e.api.InsertMembership(ctx, models.Membership{
		GroupID: group.ID,
		UserID:  identity.UserID,
		Role:    models.RoleAdmin,
	})
	if err != nil {
		return e.fail("create group", fmt.Errorf("%w: %v", ErrGroupWithoutAdmin, err))
	}

	e.mu.Lock()
	e.groups = append([]models.Group{group}, e.groups...)
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}

// ShowGroupList switches the view to the group list.
func (e *Engine) ShowGroupList() {
	e.mu.Lock()
	e.mode = Mode{Kind: ModeGroupList}
	e.mu.Unlock()
}

// ShowPersonal resets the scope to personal tasks and reloads them.
func (e *Engine) ShowPersonal(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	e.mode = Mode{Kind: ModePersonal}
	e.members = nil
	e.activity = nil
	scope := e.scopeLocked()
	e.mu.Unlock()
	return e.loadScope(ctx, scope)
}

// SelectGroup loads a group's members, tasks and activity feed and, once
// all three loads succeed, makes the group the active scope. The loads run
// sequentially; the first failure is surfaced and leaves the previous
// scope fully in place.
func (e *Engine) SelectGroup(ctx context.Context, groupID string) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	e.mu.Unlock()

	e.setLoading(true)
	members, err := e.api.ListMembers(ctx, groupID)
	if err != nil {
		return e.fail("load members", err)
	}
	tasks, err := e.api.ListTasks(ctx, remote.InGroup(groupID))
	if err != nil {
		return e.fail("load tasks", err)
	}
	activity, err := e.api.ListActivity(ctx, groupID, models.ActivityWindow)
	if err != nil {
		return e.fail("load activity", err)
	}

	e.mu.Lock()
	e.mode = Mode{Kind: ModeGroupDetail, GroupID: groupID}
	e.members = members
	e.tasks = tasks
	e.activity = activity
	e.loading = false
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}

// LeaveGroup removes the current identity's membership in the selected
// group, drops the group locally, and falls back to the personal scope.
func (e *Engine) LeaveGroup(ctx context.Context) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	if !e.mode.IsGroup() {
		e.mu.Unlock()
		return ErrNoGroupSelected
	}
	groupID := e.mode.GroupID
	userID := e.identity.UserID
	e.mu.Unlock()

	if err := e.api.DeleteMembership(ctx, groupID, userID); err != nil {
		return e.fail("leave group", err)
	}

	e.mu.Lock()
	for i := range e.groups {
		if e.groups[i].ID == groupID {
			e.groups = append(e.groups[:i], e.groups[i+1:]...)
			break
		}
	}
	e.lastErr = ""
	e.mu.Unlock()

	return e.ShowPersonal(ctx)
}

// AddMember looks a user up by exact-match email (case-insensitive) and
// enrolls them in the selected group with the member role. A lookup miss
// returns ErrMemberNotFound without any remote mutation; a duplicate
// membership returns ErrAlreadyMember. On success the member list is
// reloaded and the invitee is notified.
func (e *Engine) AddMember(ctx context.Context, email string) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	if !e.mode.IsGroup() {
		e.mu.Unlock()
		return ErrNoGroupSelected
	}
	groupID := e.mode.GroupID
	e.mu.Unlock()

	profile, err := e.api.FindProfileByEmail(ctx, email)
	if err != nil {
		if remote.IsNotFound(err) {
			e.mu.Lock()
			e.lastErr = ErrMemberNotFound.Error()
			e.mu.Unlock()
			return ErrMemberNotFound
		}
		return e.fail("add member", err)
	}

	err = e.api.InsertMembership(ctx, models.Membership{
		GroupID: groupID,
		UserID:  profile.ID,
		Role:    models.RoleMember,
	})
	if err != nil {
		if remote.IsConflict(err) {
			e.mu.Lock()
			e.lastErr = ErrAlreadyMember.Error()
			e.mu.Unlock()
			return ErrAlreadyMember
		}
		return e.fail("add member", err)
	}

	members, err := e.api.ListMembers(ctx, groupID)
	if err != nil {
		return e.fail("reload members", err)
	}
	e.mu.Lock()
	e.members = members
	groupName := ""
	for _, g := range e.groups {
		if g.ID == groupID {
			groupName = g.Name
			break
		}
	}
	e.lastErr = ""
	e.mu.Unlock()

	invite := models.Notification{
		RecipientID: profile.ID,
		Type:        models.NotifyGroupInvite,
		Title:       "Added to group",
		Message:     fmt.Sprintf("You were added to %q", groupName),
		Data:        map[string]string{"group_id": groupID},
	}
	if err := e.api.InsertNotifications(ctx, []models.Notification{invite}); err != nil {
		e.log.Warnw("invite notification failed", "group", groupID, "error", err)
	}
	return nil
}

// RemoveMember deletes the membership row for the given user in the
// selected group and reloads the member list. Any member may remove any
// other, including admins; a permission model is a pending product
// decision.
func (e *Engine) RemoveMember(ctx context.Context, userID string) error {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	if !e.mode.IsGroup() {
		e.mu.Unlock()
		return ErrNoGroupSelected
	}
	groupID := e.mode.GroupID
	e.mu.Unlock()

	if err := e.api.DeleteMembership(ctx, groupID, userID); err != nil {
		return e.fail("remove member", err)
	}

	members, err := e.api.ListMembers(ctx, groupID)
	if err != nil {
		return e.fail("reload members", err)
	}
	e.mu.Lock()
	e.members = members
	e.lastErr = ""
	e.mu.Unlock()
	return nil
}
