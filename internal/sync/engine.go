// Package sync implements the client-side state machine of the
// collaborative task application: session tracking, the task cache and its
// remote mutations, group membership, the activity feed, notifications and
// the pure view projection. All caches mirror the remote service and are
// only mutated after a remote acknowledgment.
package sync

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/task-sync/internal/auth"
	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

var (
	// ErrNotSignedIn is returned by operations that need an identity.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrTaskNotFound is returned when a task id is not in the cache.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoGroupSelected is returned by group operations outside a group.
	ErrNoGroupSelected = errors.New("no group selected")

	// ErrMemberNotFound is returned when no profile matches the email.
	ErrMemberNotFound = errors.New("member not found")

	// ErrAlreadyMember is the friendly form of the uniqueness violation on
	// a duplicate membership.
	ErrAlreadyMember = errors.New("already a member")

	// ErrGroupWithoutAdmin is returned when the group row was created but
	// the creator's admin membership insert failed. The group exists
	// remotely in an inconsistent state; there is no compensating
	// rollback.
	ErrGroupWithoutAdmin = errors.New("group created without admin membership")
)

// Engine is the sync module. Its methods are synchronous: each one runs
// its remote round trips to completion before touching the local caches,
// and a failed call leaves every cache exactly as it was.
type Engine struct {
	api  remote.API
	auth auth.Client
	log  *zap.SugaredLogger
	now  func() time.Time

	mu            sync.Mutex
	identity      *auth.Identity
	profile       *models.Profile
	mode          Mode
	tasks         []models.Task
	groups        []models.Group
	members       []models.Membership
	activity      []models.ActivityRecord
	notifications []models.Notification
	unread        int
	loading       bool
	lastErr       string
}

// New builds an engine over the remote and auth collaborators. A nil
// logger disables logging.
func New(api remote.API, authClient auth.Client, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		api:  api,
		auth: authClient,
		log:  log,
		now:  time.Now,
		mode: Mode{Kind: ModePersonal},
	}
}

// SetNow overrides the engine clock.
func (e *Engine) SetNow(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// fail records a displayable error, clears the loading flag so the
// interface never hangs on a spinner, and passes the error through.
func (e *Engine) fail(op string, err error) error {
	e.mu.Lock()
	e.loading = false
	e.lastErr = err.Error()
	e.mu.Unlock()
	e.log.Warnw("remote operation failed", "op", op, "error", err)
	return err
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	if v {
		e.lastErr = ""
	}
	e.mu.Unlock()
}

// Identity returns the authenticated identity, or nil.
func (e *Engine) Identity() *auth.Identity {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.identity == nil {
		return nil
	}
	id := *e.identity
	return &id
}

// Authenticated reports whether an identity is present.
func (e *Engine) Authenticated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity != nil
}

// Profile returns the loaded profile of the current user, or nil.
func (e *Engine) Profile() *models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return nil
	}
	p := *e.profile
	return &p
}

// Mode returns the active view state.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Tasks returns a copy of the task cache for the active scope.
func (e *Engine) Tasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// Groups returns a copy of the cached group list.
func (e *Engine) Groups() []models.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Group, len(e.groups))
	copy(out, e.groups)
	return out
}

// Members returns a copy of the selected group's member list.
func (e *Engine) Members() []models.Membership {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Membership, len(e.members))
	copy(out, e.members)
	return out
}

// ActivityFeed returns a copy of the selected group's activity records,
// most recent first.
func (e *Engine) ActivityFeed() []models.ActivityRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ActivityRecord, len(e.activity))
	copy(out, e.activity)
	return out
}

// Notifications returns a copy of the cached notifications, most recent
// first.
func (e *Engine) Notifications() []models.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Notification, len(e.notifications))
	copy(out, e.notifications)
	return out
}

// UnreadCount returns the locally maintained unread notification count.
func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread
}

// Loading reports whether an operation is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastError returns the displayable message of the last failed operation,
// empty after a successful one.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// scopeLocked derives the remote scope from the active mode. Caller holds
// the lock and has checked identity.
func (e *Engine) scopeLocked() remote.Scope {
	if e.mode.IsGroup() {
		return remote.InGroup(e.mode.GroupID)
	}
	return remote.Personal(e.identity.UserID)
}

// resetScopeLocked drops every per-user cache and falls back to the
// personal mode, leaving the identity itself in place. Caller holds the
// lock.
func (e *Engine) resetScopeLocked() {
	e.profile = nil
	e.mode = Mode{Kind: ModePersonal}
	e.tasks = nil
	e.groups = nil
	e.members = nil
	e.activity = nil
	e.notifications = nil
	e.unread = 0
	e.loading = false
	e.lastErr = ""
}

// clearLocked drops the identity and every scoped cache. Caller holds the
// lock.
func (e *Engine) clearLocked() {
	e.identity = nil
	e.resetScopeLocked()
}
