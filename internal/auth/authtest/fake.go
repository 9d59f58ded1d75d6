// Package authtest provides an in-memory auth client for testing.
package authtest

import (
	"context"

	"github.com/taskflow/task-sync/internal/auth"
)

// Fake is an in-memory implementation of auth.Client. Tests drive it with
// SignIn/Emit and inject failures through the error fields.
type Fake struct {
	Current *auth.Session
	Ch      chan auth.Event

	SignUpErr   error
	SignInErr   error
	SignOutErr  error
	ExchangeErr error
}

func New() *Fake {
	return &Fake{Ch: make(chan auth.Event, 16)}
}

// SignIn installs a session for the given identity and emits the event.
func (f *Fake) SignIn(userID, email string) *auth.Session {
	s := &auth.Session{
		AccessToken: "fake-token-" + userID,
		Identity:    auth.Identity{UserID: userID, Email: email},
	}
	f.Current = s
	f.Ch <- auth.Event{Kind: auth.EventSignedIn, Session: s}
	return s
}

func (f *Fake) Session(ctx context.Context) (*auth.Session, error) {
	return f.Current, nil
}

func (f *Fake) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	return f.SignIn("user-"+email, email), nil
}

func (f *Fake) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	return f.SignIn("user-"+email, email), nil
}

func (f *Fake) OAuthURL(provider auth.Provider, state string) (string, error) {
	return "https://example.test/oauth/" + string(provider) + "?state=" + state, nil
}

func (f *Fake) ExchangeCode(ctx context.Context, provider auth.Provider, code string) (*auth.Session, error) {
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return f.SignIn("user-"+code, code+"@"+string(provider)+".test"), nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.Current = nil
	f.Ch <- auth.Event{Kind: auth.EventSignedOut}
	return nil
}

func (f *Fake) Events() <-chan auth.Event {
	return f.Ch
}

var _ auth.Client = (*Fake)(nil)
