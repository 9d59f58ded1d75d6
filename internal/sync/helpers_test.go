package sync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/task-sync/internal/auth/authtest"
	"github.com/taskflow/task-sync/internal/remote/remotetest"
	"github.com/taskflow/task-sync/internal/sync"
)

func newEngine(t *testing.T) (*sync.Engine, *remotetest.Fake, *authtest.Fake) {
	t.Helper()
	backend := remotetest.New()
	authFake := authtest.New()
	return sync.New(backend, authFake, nil), backend, authFake
}

// signIn authenticates through the password flow and returns the user id
// the fake auth client derived from the email.
func signIn(t *testing.T, engine *sync.Engine, email string) string {
	t.Helper()
	require.NoError(t, engine.SignIn(context.Background(), email, "password"))
	identity := engine.Identity()
	require.NotNil(t, identity)
	return identity.UserID
}

// enterGroup creates a group and makes it the active scope.
func enterGroup(t *testing.T, engine *sync.Engine, name string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, engine.CreateGroup(ctx, name, ""))
	groups := engine.Groups()
	require.Len(t, groups, 1)
	require.NoError(t, engine.SelectGroup(ctx, groups[0].ID))
	return groups[0].ID
}
