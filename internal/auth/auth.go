// Package auth wraps the hosted authentication service: password and
// federated sign-in, session retrieval, and session-change events.
package auth

import (
	"context"
	"time"
)

// Provider names a federated sign-in provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Identity is the authenticated user extracted from the access token.
type Identity struct {
	UserID string
	Email  string
}

// Session is an authenticated session against the remote service.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}

// EventKind tags a session-change event.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is one session change. Session is nil for EventSignedOut.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Client is the auth collaborator contract. Every flow is independently
// failable; a failed flow returns an error and emits no event.
type Client interface {
	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)

	// SignUp registers an email/password account and signs it in.
	SignUp(ctx context.Context, email, password string) (*Session, error)

	// SignInWithPassword signs in with email and password.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// OAuthURL returns the redirect URL starting a federated sign-in.
	OAuthURL(provider Provider, state string) (string, error)

	// ExchangeCode completes a federated sign-in from the provider's
	// authorization code.
	ExchangeCode(ctx context.Context, provider Provider, code string) (*Session, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// Events delivers session-change events: sign-in, sign-out, refresh.
	Events() <-chan Event
}
