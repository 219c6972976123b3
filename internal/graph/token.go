package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenExpiryMargin is how much remaining validity a cached token must have
// to be reused without a network call.
const tokenExpiryMargin = 60 * time.Second

// defaultScope requests all application permissions granted to the client.
const defaultScope = "https://graph.microsoft.com/.default"

// TokenProvider supplies a currently-valid bearer token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenManager acquires and caches an application bearer token via the
// OAuth2 client-credentials grant. One instance exists per process; it owns
// the only credential state that outlives a single invocation.
type TokenManager struct {
	conf *clientcredentials.Config
	http *http.Client
	log  zerolog.Logger
	now  func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithTokenURL overrides the token endpoint. Used by tests.
func WithTokenURL(u string) TokenOption {
	return func(m *TokenManager) { m.conf.TokenURL = u }
}

// WithTokenHTTPClient sets the HTTP client used for token issuance.
func WithTokenHTTPClient(c *http.Client) TokenOption {
	return func(m *TokenManager) { m.http = c }
}

// WithTokenLogger sets the logger for token lifecycle events.
func WithTokenLogger(l zerolog.Logger) TokenOption {
	return func(m *TokenManager) { m.log = l }
}

// NewTokenManager creates a token manager for the given tenant and client.
func NewTokenManager(tenantID, clientID, clientSecret string, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
			Scopes:       []string{defaultScope},
		},
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns a currently-valid bearer token, issuing a new one only when
// the cached credential has less than the safety margin of validity left.
//
// No mutual exclusion is enforced across refreshes: two invocations racing
// on an expired credential both issue requests, and the last writer wins.
// Both resulting tokens are valid, so the duplicate fetch is harmless.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	token, expiry := m.token, m.expiry
	m.mu.RUnlock()

	if token != "" && m.now().Add(tokenExpiryMargin).Before(expiry) {
		return token, nil
	}

	if m.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.http)
	}

	tok, err := m.conf.Token(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("token issuance failed")
		return "", authError(err)
	}

	m.mu.Lock()
	m.token = tok.AccessToken
	m.expiry = tok.Expiry
	m.mu.Unlock()

	m.log.Debug().Time("expiry", tok.Expiry).Msg("access token issued")
	return tok.AccessToken, nil
}

// Clear discards any cached credential, forcing the next Token call to
// re-issue. Used for recovery and testing.
func (m *TokenManager) Clear() {
	m.mu.Lock()
	m.token, m.expiry = "", time.Time{}
	m.mu.Unlock()
}

// authError converts a token issuance failure into an AuthError carrying
// the issuer's error description when one is available.
func authError(err error) *AuthError {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		desc := rerr.ErrorDescription
		if desc == "" {
			desc = strings.TrimSpace(string(rerr.Body))
		}
		if desc == "" {
			desc = "token endpoint returned " + rerr.Response.Status
		}
		return &AuthError{Description: desc}
	}
	return &AuthError{Description: err.Error()}
}
