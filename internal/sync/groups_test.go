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

func TestCreateGroupEnrollsCreatorAsAdmin(t *testing.T) {
	engine, backend, _ := newEngine(t)
	userID := signIn(t, engine, "ana@example.com")

	require.NoError(t, engine.CreateGroup(context.Background(), "Household", "chores"))

	groups := engine.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Household", groups[0].Name)
	assert.Equal(t, userID, groups[0].CreatedBy)

	members := backend.Members()
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].UserID)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
}

func TestCreateGroupEmptyNameIsNoOp(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	require.NoError(t, engine.CreateGroup(context.Background(), "  ", ""))
	assert.Empty(t, engine.Groups())
	assert.Empty(t, backend.Members())
}

func TestCreateGroupMembershipFailure(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	backend.InsertMembershipErr = errors.New("network down")
	err := engine.CreateGroup(context.Background(), "Household", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, sync.ErrGroupWithoutAdmin)
	assert.Empty(t, engine.Groups(), "a group without its admin row never reaches the local list")
}

func TestSelectGroupLoadsMembersTasksActivity(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	groupID := enterGroup(t, engine, "Household")

	assert.True(t, engine.Mode().IsGroup())
	assert.Equal(t, groupID, engine.Mode().GroupID)
	require.Len(t, engine.Members(), 1)
	assert.Empty(t, engine.Tasks())

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "shared chore"}))
	require.NoError(t, engine.SelectGroup(ctx, groupID))
	require.Len(t, engine.Tasks(), 1)
	require.Len(t, engine.ActivityFeed(), 1)
	assert.Equal(t, models.ActionCreated, engine.ActivityFeed()[0].Action)
}

func TestSelectGroupFailureKeepsPreviousScope(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()

	require.NoError(t, engine.Create(ctx, models.TaskDraft{Description: "personal errand"}))
	require.NoError(t, engine.CreateGroup(ctx, "Household", ""))
	groupID := engine.Groups()[0].ID

	backend.ListMembersErr = errors.New("network down")
	require.Error(t, engine.SelectGroup(ctx, groupID))

	assert.Equal(t, sync.ModePersonal, engine.Mode().Kind, "a failed selection never commits the group scope")
	require.Len(t, engine.Tasks(), 1)
	assert.Equal(t, "personal errand", engine.Tasks()[0].Description)
	assert.Empty(t, engine.Members())
	assert.False(t, engine.Loading())
}

func TestAddMemberUnknownEmail(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	enterGroup(t, engine, "Household")

	err := engine.AddMember(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sync.ErrMemberNotFound)
	assert.Len(t, backend.Members(), 1, "a failed lookup performs no remote mutation")
}

func TestAddMemberCaseInsensitiveEmail(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	enterGroup(t, engine, "Household")

	backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(context.Background(), "BOB@Example.COM"))
	assert.Len(t, engine.Members(), 2)
}

func TestAddMemberTwiceIsConflict(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()
	enterGroup(t, engine, "Household")

	backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(ctx, "bob@example.com"))

	err := engine.AddMember(ctx, "bob@example.com")
	assert.ErrorIs(t, err, sync.ErrAlreadyMember)
	assert.Len(t, backend.Members(), 2, "the duplicate insert leaves a single row per member")
}

func TestAddMemberOutsideGroup(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	err := engine.AddMember(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, sync.ErrNoGroupSelected)
}

func TestAddMemberSendsInvite(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	enterGroup(t, engine, "Household")

	bob := backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(context.Background(), bob.Email))

	notifications := backend.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotifyGroupInvite, notifications[0].Type)
	assert.Equal(t, bob.ID, notifications[0].RecipientID)
}

func TestRemoveMemberReloadsList(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()
	enterGroup(t, engine, "Household")

	bob := backend.AddProfile("bob@example.com", "Bob")
	require.NoError(t, engine.AddMember(ctx, bob.Email))
	require.Len(t, engine.Members(), 2)

	require.NoError(t, engine.RemoveMember(ctx, bob.ID))
	require.Len(t, engine.Members(), 1)
	assert.Len(t, backend.Members(), 1)
}

func TestLeaveGroupFallsBackToPersonal(t *testing.T) {
	engine, backend, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")
	ctx := context.Background()
	enterGroup(t, engine, "Household")

	require.NoError(t, engine.LeaveGroup(ctx))

	assert.Equal(t, sync.ModePersonal, engine.Mode().Kind)
	assert.Empty(t, engine.Groups())
	assert.Empty(t, backend.Members())
	assert.Empty(t, engine.Members())
}

func TestLeaveGroupOutsideGroup(t *testing.T) {
	engine, _, _ := newEngine(t)
	signIn(t, engine, "ana@example.com")

	err := engine.LeaveGroup(context.Background())
	assert.ErrorIs(t, err, sync.ErrNoGroupSelected)
}

func TestGroupOperationsRequireIdentity(t *testing.T) {
	engine, _, _ := newEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, engine.ListGroups(ctx), sync.ErrNotSignedIn)
	assert.ErrorIs(t, engine.SelectGroup(ctx, "g1"), sync.ErrNotSignedIn)
	assert.ErrorIs(t, engine.LeaveGroup(ctx), sync.ErrNotSignedIn)
}
