package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GoTrueClient talks to a GoTrue-style auth endpoint.
type GoTrueClient struct {
	baseUrl    string
	apiKey     string
	httpClient *http.Client
	oauth      OAuthConfig

	mu      sync.Mutex
	session *Session
	events  chan Event
}

// NewGoTrueClient builds an auth client for the endpoint at baseURL.
// httpClient may be nil for a default client with a 10s timeout.
func NewGoTrueClient(baseURL, apiKey string, httpClient *http.Client) *GoTrueClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrueClient{
		baseUrl:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		events:     make(chan Event, 16),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type authError struct {
	Message     string `json:"msg"`
	Description string `json:"error_description"`
}

func (c *GoTrueClient) post(ctx context.Context, path string, body interface{}) (*tokenResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request (auth): %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, bytes.NewBuffer(b))
	if err != nil {
		return nil, fmt.Errorf("build request (auth): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	c.mu.Lock()
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (auth): %w", err)
	}

	if resp.StatusCode >= 300 {
		var authErr authError
		if err := json.Unmarshal(respBody, &authErr); err == nil {
			if authErr.Message != "" {
				return nil, fmt.Errorf("auth error: %s", authErr.Message)
			}
			if authErr.Description != "" {
				return nil, fmt.Errorf("auth error: %s", authErr.Description)
			}
		}
		return nil, fmt.Errorf("auth error: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if len(respBody) == 0 {
		return &tok, nil
	}
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return nil, fmt.Errorf("parse token response (auth): %w", err)
	}
	return &tok, nil
}

// identityFromToken extracts the user id and email claims. The token was
// just issued by our own backend over TLS, so the signature is not
// re-verified here.
func identityFromToken(accessToken string) (Identity, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return Identity{}, fmt.Errorf("parse access token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("unexpected claims in access token")
	}

	id := Identity{}
	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if id.UserID == "" {
		return Identity{}, fmt.Errorf("access token has no subject")
	}
	return id, nil
}

func (c *GoTrueClient) sessionFromToken(tok *tokenResponse) (*Session, error) {
	identity, err := identityFromToken(tok.AccessToken)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		Identity:     identity,
	}, nil
}

func (c *GoTrueClient) store(session *Session, kind EventKind) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.emit(Event{Kind: kind, Session: session})
}

// emit never blocks the auth flow. When the consumer lags and the buffer
// fills up, the oldest buffered event is evicted so the most recent state
// change, sign-out in particular, is always delivered.
func (c *GoTrueClient) emit(ev Event) {
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

func (c *GoTrueClient) Session(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, nil
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.post(ctx, "/signup", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	session, err := c.sessionFromToken(tok)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	c.store(session, EventSignedIn)
	return session, nil
}

func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.post(ctx, "/token?grant_type=password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	session, err := c.sessionFromToken(tok)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	c.store(session, EventSignedIn)
	return session, nil
}

// Refresh exchanges the refresh token for a new access token and emits a
// token-refresh event.
func (c *GoTrueClient) Refresh(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("refresh: no session")
	}

	tok, err := c.post(ctx, "/token?grant_type=refresh_token", map[string]string{"refresh_token": current.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	session, err := c.sessionFromToken(tok)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	c.store(session, EventTokenRefreshed)
	return session, nil
}

func (c *GoTrueClient) SignOut(ctx context.Context) error {
	_, err := c.post(ctx, "/logout", map[string]string{})
	c.store(nil, EventSignedOut)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *GoTrueClient) Events() <-chan Event {
	return c.events
}

var _ Client = (*GoTrueClient)(nil)
