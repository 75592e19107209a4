package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/Valiice/SpotifyHonorific/internal/config"
	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

// TokenRefreshWindow is how long a refreshed access token is trusted.
// Spotify tokens expire after 60 minutes; refreshing at 55 keeps a
// comfortable margin without refreshing on every poll.
const TokenRefreshWindow = 55 * time.Minute

// TokenManager owns the OAuth credential state. Refresh is purely
// demand-driven: it happens only inside Client calls, amortized across
// poll cycles.
//
// States, per the persisted credentials and the in-memory cache:
// unconfigured (a required field is blank: no I/O, ErrNotConfigured),
// fresh (cached client younger than [TokenRefreshWindow]: returned as is),
// stale (refresh through the token endpoint, then fresh). A failed refresh
// clears the persisted refresh token, forcing re-authentication.
type TokenManager struct {
	cfg    *config.Config
	logger *log.Logger

	endpoint   oauth2.Endpoint
	httpClient *http.Client
	clientOpts []ClientOpt
	now        func() time.Time

	mu          sync.Mutex
	client      *Client
	accessToken string
}

// TokenManagerOpt configures a [TokenManager].
type TokenManagerOpt func(*TokenManager)

// WithEndpoint overrides the OAuth token endpoint, used by tests.
func WithEndpoint(ep oauth2.Endpoint) TokenManagerOpt {
	return func(m *TokenManager) { m.endpoint = ep }
}

// WithTokenHTTPClient overrides the HTTP client used for token refresh.
func WithTokenHTTPClient(hc *http.Client) TokenManagerOpt {
	return func(m *TokenManager) { m.httpClient = hc }
}

// WithClientOpts sets options applied to every API client the manager builds.
func WithClientOpts(opts ...ClientOpt) TokenManagerOpt {
	return func(m *TokenManager) { m.clientOpts = opts }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) TokenManagerOpt {
	return func(m *TokenManager) { m.now = now }
}

func NewTokenManager(cfg *config.Config, logger *log.Logger, opts ...TokenManagerOpt) *TokenManager {
	m := &TokenManager{
		cfg:      cfg,
		logger:   logger,
		endpoint: Endpoint,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Client returns an API client backed by a usable access token, refreshing
// it first when the cached one is missing or older than the refresh window.
func (m *TokenManager) Client(ctx context.Context) (*Client, error) {
	var clientID, clientSecret, refreshToken string
	var lastAuth time.Time
	m.cfg.View(func(d *config.Data) {
		clientID = d.ClientID
		clientSecret = d.ClientSecret
		refreshToken = d.RefreshToken
		lastAuth = d.LastAuthTime
	})

	if strings.TrimSpace(refreshToken) == "" || strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, shared.ErrNotConfigured
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.accessToken != "" && lastAuth.Add(TokenRefreshWindow).After(m.now()) {
		return m.client, nil
	}

	m.logger.Debug("spotify token expired or missing, requesting a new one")

	token, err := m.refresh(ctx, clientID, clientSecret, refreshToken)
	if err != nil {
		m.logger.Error("failed to refresh spotify token", "err", err)
		if saveErr := m.cfg.Update(func(d *config.Data) {
			d.RefreshToken = ""
		}); saveErr != nil {
			m.logger.Error("failed to persist cleared refresh token", "err", saveErr)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := m.cfg.Update(func(d *config.Data) {
		if token.RefreshToken != "" {
			d.RefreshToken = token.RefreshToken
		}
		d.LastAuthTime = m.now()
	}); err != nil {
		m.logger.Error("failed to persist refreshed token", "err", err)
	}

	m.accessToken = token.AccessToken
	m.client = NewClient(m.accessToken, m.clientOpts...)
	return m.client, nil
}

func (m *TokenManager) refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*oauth2.Token, error) {
	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	oc := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     m.endpoint,
	}

	return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}

// Reset drops the in-memory client and access token, forcing re-resolution
// on the next Client call. The persisted refresh token is untouched.
func (m *TokenManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = nil
	m.accessToken = ""
}
