package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"

	"github.com/applifting/applifting-sdk-go/apierror"
)

const (
	// AuthPath is the endpoint exchanging a refresh token for an access token.
	AuthPath = "/api/v1/auth"

	// CredentialHeader carries the refresh token on auth requests and the
	// access token on API requests.
	CredentialHeader = "Bearer"

	DefaultLifetime = 300 * time.Second
	DefaultBuffer   = 5 * time.Second
	DefaultTimeout  = 10 * time.Second
)

// Doer sends an HTTP request. *retry.Client from go-httpretry satisfies it.
type Doer interface {
	DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPClient adapts a plain *http.Client to Doer.
func HTTPClient(c *http.Client) Doer {
	return httpClientDoer{c: c}
}

type httpClientDoer struct {
	c *http.Client
}

func (d httpClientDoer) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return d.c.Do(req.WithContext(ctx))
}

// Option configures a Manager.
type Option func(*Manager)

// WithDoer sets the transport used for the refresh exchange.
func WithDoer(d Doer) Option {
	return func(m *Manager) { m.doer = d }
}

// WithCache sets the durable token store.
func WithCache(c Cache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLifetime sets how long an issued access token is assumed to live.
func WithLifetime(d time.Duration) Option {
	return func(m *Manager) { m.lifetime = d }
}

// WithBuffer sets how long before expiry a token is already treated as stale.
func WithBuffer(d time.Duration) Option {
	return func(m *Manager) { m.buffer = d }
}

// WithTimeout bounds each refresh exchange.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMeterProvider sets where token metrics are recorded. The default is the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) { m.meterProvider = mp }
}

// Manager hands out valid access tokens. Within one Manager at most one
// refresh is in flight; callers arriving meanwhile wait for it and share its
// result.
type Manager struct {
	refreshToken string
	authURL      string

	doer     Doer
	cache    Cache
	now      func() time.Time
	lifetime time.Duration
	buffer   time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	meterProvider metric.MeterProvider
	metrics       instruments

	// sem is the exclusive section guarding everything below it.
	sem      *semaphore.Weighted
	token    Token
	rejected string
}

// NewManager returns a Manager exchanging refreshToken at baseURL. Without
// WithCache the token is cached at DefaultCachePath.
func NewManager(refreshToken, baseURL string, opts ...Option) *Manager {
	m := &Manager{
		refreshToken: refreshToken,
		authURL:      strings.TrimRight(baseURL, "/") + AuthPath,
		doer:         HTTPClient(http.DefaultClient),
		now:          time.Now,
		lifetime:     DefaultLifetime,
		buffer:       DefaultBuffer,
		timeout:      DefaultTimeout,
		logger:       zerolog.Nop(),
		sem:          semaphore.NewWeighted(1),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.meterProvider == nil {
		m.meterProvider = otel.GetMeterProvider()
	}
	m.metrics = newInstruments(m.meterProvider)

	if m.cache == nil {
		path, err := DefaultCachePath()
		if err != nil {
			m.logger.Warn().Err(err).Msg("token cache disabled")
			m.cache = nopCache{}
		} else {
			m.cache = NewFileCache(path)
		}
	}

	return m
}

// ValidToken returns an access token that is valid for at least the buffer
// period. It serves the in-memory token, then the disk cache, and only then
// refreshes. The whole sequence holds the Manager's lock. If ctx ends while
// waiting for the lock, the wait is abandoned.
func (m *Manager) ValidToken(ctx context.Context) (Token, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return Token{}, fmt.Errorf("waiting for token refresh: %w", apierror.FromTransport(err))
	}
	defer m.sem.Release(1)

	now := m.now()
	if m.token.Valid(now, m.buffer) {
		m.metrics.recordLookup(ctx, sourceMemory)
		return m.token, nil
	}

	if cached, ok := m.cache.Read(); ok && cached.AccessToken != m.rejected &&
		cached.Valid(now, m.buffer) {
		m.logger.Debug().Time("expires_at", cached.ExpiresAt).Msg("access token loaded from cache")
		m.token = cached
		m.metrics.recordLookup(ctx, sourceCache)
		return m.token, nil
	}

	start := time.Now()
	token, err := m.refresh(ctx)
	m.metrics.recordRefresh(ctx, time.Since(start), err)
	if err != nil {
		m.logger.Debug().Err(err).Msg("access token refresh failed")
		m.metrics.recordLookup(ctx, sourceError)
		return Token{}, err
	}
	m.metrics.recordLookup(ctx, sourceRefresh)

	m.token = token
	m.rejected = ""
	m.logger.Debug().
		Str("preview", token.Preview(8)).
		Time("expires_at", token.ExpiresAt).
		Msg("access token refreshed")

	if err := m.cache.Write(token); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist access token")
	}

	return token, nil
}

// Invalidate discards token after the API rejected it. The next ValidToken
// call refreshes unless another caller already has. A token that is not the
// current one is ignored.
func (m *Manager) Invalidate(token Token) {
	// the lock is only ever held for one refresh exchange, which is bounded
	// by the request timeout
	_ = m.sem.Acquire(context.Background(), 1)
	defer m.sem.Release(1)

	if token.AccessToken == "" || m.token.AccessToken != token.AccessToken {
		return
	}
	m.logger.Debug().Str("preview", token.Preview(8)).Msg("access token invalidated")
	m.token = Token{}
	m.rejected = token.AccessToken
}

// Buffer returns the safety margin applied before expiry.
func (m *Manager) Buffer() time.Duration {
	return m.buffer
}

// refresh exchanges the refresh token for a new access token. It does not
// touch the Manager's state.
func (m *Manager) refresh(ctx context.Context) (Token, error) {
	if m.refreshToken == "" {
		return Token{}, apierror.ErrNoRefreshToken
	}

	reqCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, m.authURL, nil)
	if err != nil {
		return Token{}, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set(CredentialHeader, m.refreshToken)
	req.Header.Set("Accept", "application/json")

	resp, err := apierror.Settle(m.doer.DoWithContext(reqCtx, req))
	if err != nil {
		return Token{}, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Token{}, fmt.Errorf("refresh request rejected: %w", apierror.FromResponse(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("failed to read response: %w", apierror.FromTransport(err))
	}

	var authResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &authResp); err != nil {
		return Token{}, fmt.Errorf("%w: %v", apierror.ErrInvalidAuthResponse, err)
	}
	if authResp.AccessToken == "" {
		return Token{}, apierror.ErrInvalidAuthResponse
	}

	return Token{
		AccessToken: authResp.AccessToken,
		ExpiresAt:   m.now().Add(m.lifetime),
	}, nil
}

// TokenSource exposes m as an oauth2.TokenSource. Every Token call goes
// through ValidToken with ctx.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return tokenSource{ctx: ctx, m: m}
}

type tokenSource struct {
	ctx context.Context
	m   *Manager
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	t, err := s.m.ValidToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return t.OAuth2(s.m.buffer), nil
}

type nopCache struct{}

func (nopCache) Read() (Token, bool) { return Token{}, false }
func (nopCache) Write(Token) error   { return nil }
