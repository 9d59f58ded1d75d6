package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// OAuthConfig holds the federated provider credentials.
type OAuthConfig struct {
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	RedirectURL          string
}

// SetOAuth installs the federated provider credentials.
func (c *GoTrueClient) SetOAuth(cfg OAuthConfig) {
	c.oauth = cfg
}

func (c *GoTrueClient) providerConfig(provider Provider) (*oauth2.Config, error) {
	switch provider {
	case ProviderGoogle:
		if c.oauth.GoogleClientID == "" {
			return nil, fmt.Errorf("google sign-in is not configured")
		}
		return &oauth2.Config{
			ClientID:     c.oauth.GoogleClientID,
			ClientSecret: c.oauth.GoogleClientSecret,
			RedirectURL:  c.oauth.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}, nil
	case ProviderFacebook:
		if c.oauth.FacebookClientID == "" {
			return nil, fmt.Errorf("facebook sign-in is not configured")
		}
		return &oauth2.Config{
			ClientID:     c.oauth.FacebookClientID,
			ClientSecret: c.oauth.FacebookClientSecret,
			RedirectURL:  c.oauth.RedirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func (c *GoTrueClient) OAuthURL(provider Provider, state string) (string, error) {
	cfg, err := c.providerConfig(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

func (c *GoTrueClient) ExchangeCode(ctx context.Context, provider Provider, code string) (*Session, error) {
	cfg, err := c.providerConfig(provider)
	if err != nil {
		return nil, err
	}

	providerToken, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code (%s): %w", provider, err)
	}

	idToken, _ := providerToken.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("exchange code (%s): provider returned no id token", provider)
	}

	// The provider identity token is traded for a backend session.
	tok, err := c.post(ctx, "/token?grant_type=id_token", map[string]string{
		"provider": string(provider),
		"id_token": idToken,
	})
	if err != nil {
		return nil, fmt.Errorf("federated sign in (%s): %w", provider, err)
	}

	session, err := c.sessionFromToken(tok)
	if err != nil {
		return nil, fmt.Errorf("federated sign in (%s): %w", provider, err)
	}
	c.store(session, EventSignedIn)
	return session, nil
}
