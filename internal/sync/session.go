package sync

import (
	"context"
	"fmt"

	"github.com/taskflow/task-sync/internal/auth"
	"github.com/taskflow/task-sync/internal/remote"
)

// Run consumes session-change events from the auth collaborator until ctx
// is done. Sign-in triggers the initial load sequence, sign-out clears
// every scoped cache.
func (e *Engine) Run(ctx context.Context) {
	// Adopt a session that existed before the loop started.
	if session, err := e.auth.Session(ctx); err == nil && session != nil {
		e.handleEvent(ctx, auth.Event{Kind: auth.EventSignedIn, Session: session})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.auth.Events():
			if !ok {
				return
			}
			e.handleEvent(ctx, ev)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev auth.Event) {
	switch ev.Kind {
	case auth.EventSignedOut:
		e.mu.Lock()
		e.clearLocked()
		e.mu.Unlock()
		e.log.Infow("signed out, caches cleared")

	case auth.EventSignedIn:
		if ev.Session == nil {
			return
		}
		e.adoptSession(ctx, ev.Session)

	case auth.EventTokenRefreshed:
		if ev.Session == nil {
			return
		}
		e.mu.Lock()
		identity := ev.Session.Identity
		e.identity = &identity
		e.mu.Unlock()
	}
}

// initialLoad fetches profile, personal tasks, groups and notifications.
// The caches are independent, so one failed load does not stop the rest;
// each failure is surfaced on its own.
func (e *Engine) initialLoad(ctx context.Context) {
	e.mu.Lock()
	if e.identity == nil {
		e.mu.Unlock()
		return
	}
	userID := e.identity.UserID
	e.mu.Unlock()

	if profile, err := e.api.GetProfile(ctx, userID); err != nil {
		if !remote.IsNotFound(err) {
			e.fail("load profile", err)
		}
	} else {
		e.mu.Lock()
		e.profile = &profile
		e.mu.Unlock()
	}

	if err := e.loadScope(ctx, remote.Personal(userID)); err != nil {
		e.log.Warnw("initial task load failed", "error", err)
	}
	if err := e.ListGroups(ctx); err != nil {
		e.log.Warnw("initial group load failed", "error", err)
	}
	if err := e.RefreshNotifications(ctx); err != nil {
		e.log.Warnw("initial notification load failed", "error", err)
	}
}

// SignIn runs the password flow and, on success, performs the initial
// load immediately rather than waiting for the event loop.
func (e *Engine) SignIn(ctx context.Context, email, password string) error {
	session, err := e.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return e.fail("sign in", err)
	}
	e.adoptSession(ctx, session)
	return nil
}

// SignUp registers an account and signs it in.
func (e *Engine) SignUp(ctx context.Context, email, password string) error {
	session, err := e.auth.SignUp(ctx, email, password)
	if err != nil {
		return e.fail("sign up", err)
	}
	e.adoptSession(ctx, session)
	return nil
}

// OAuthURL returns the redirect URL starting a federated sign-in.
func (e *Engine) OAuthURL(provider auth.Provider, state string) (string, error) {
	url, err := e.auth.OAuthURL(provider, state)
	if err != nil {
		return "", e.fail("oauth url", err)
	}
	return url, nil
}

// CompleteOAuth finishes a federated sign-in from the provider's
// authorization code.
func (e *Engine) CompleteOAuth(ctx context.Context, provider auth.Provider, code string) error {
	session, err := e.auth.ExchangeCode(ctx, provider, code)
	if err != nil {
		return e.fail(fmt.Sprintf("sign in (%s)", provider), err)
	}
	e.adoptSession(ctx, session)
	return nil
}

// SignOut ends the session and clears every scoped cache.
func (e *Engine) SignOut(ctx context.Context) error {
	err := e.auth.SignOut(ctx)
	e.mu.Lock()
	e.clearLocked()
	e.mu.Unlock()
	if err != nil {
		return e.fail("sign out", err)
	}
	return nil
}

// adoptSession installs the session identity. A user other than the
// current one first drops the previous user's scoped state, so no cache or
// group scope ever leaks across identities; the same user signing in again
// only refreshes the identity.
func (e *Engine) adoptSession(ctx context.Context, session *auth.Session) {
	e.mu.Lock()
	same := e.identity != nil && e.identity.UserID == session.Identity.UserID
	if !same {
		e.resetScopeLocked()
	}
	identity := session.Identity
	e.identity = &identity
	e.mu.Unlock()
	if !same {
		e.initialLoad(ctx)
	}
}
