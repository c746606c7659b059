// Package applifting is a client for the Applifting offers API: register
// products and fetch the offers available for them.
//
// Every request carries an access token obtained from the client's
// auth.Manager, which refreshes and caches it as needed:
//
//	cfg, err := config.Load(ctx)
//	...
//	client, err := applifting.New(cfg)
//	...
//	product, err := client.Products.Register(ctx, applifting.RegisterProductRequest{
//		ID:   uuid.New(),
//		Name: "lamp",
//	})
//	offers, err := client.Offers.List(ctx, product.ID)
package applifting

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/applifting/applifting-sdk-go/auth"
	"github.com/applifting/applifting-sdk-go/config"
)

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    auth.Doer
	tokens  *auth.Manager
	logger  zerolog.Logger

	Products *ProductsService
	Offers   *OffersService
}

type options struct {
	httpClient *http.Client
	logger     zerolog.Logger
	cache      auth.Cache
	now        func() time.Time
	meters     metric.MeterProvider
	retryDelay time.Duration
}

// Option customizes a Client.
type Option func(*options)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout bounds every
// request, including token refreshes.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger for the client and its token manager.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache replaces the on-disk token cache.
func WithCache(c auth.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithClock replaces time.Now for token expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMeterProvider sets where HTTP and token metrics are recorded. The
// default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meters = mp }
}

// WithRetryDelay sets the wait before the first retry of a failed API call.
// Later waits grow exponentially.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

// New builds a Client from cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: zerolog.Nop(), meters: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	baseHTTPClient := o.httpClient
	if baseHTTPClient == nil {
		baseHTTPClient = newHTTPClient(cfg.RequestTimeout(), o.meters)
	}
	baseHTTPClient = withBodyReplay(baseHTTPClient)
	retryLog := retryLogger{o.logger.With().Str("component", "retry").Logger()}

	apiClient, err := retry.NewClient(
		retry.WithHTTPClient(baseHTTPClient),
		retry.WithMaxRetries(cfg.MaxRetries),
		retry.WithInitialRetryDelay(o.retryDelay),
		retry.WithLogger(retryLog),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	// token refreshes are never retried here; callers decide
	authClient, err := retry.NewClient(
		retry.WithHTTPClient(baseHTTPClient),
		retry.WithMaxRetries(0),
		retry.WithLogger(retryLog),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	managerOpts := []auth.Option{
		auth.WithDoer(authClient),
		auth.WithLifetime(cfg.TokenLifetime()),
		auth.WithBuffer(cfg.TokenBuffer()),
		auth.WithTimeout(cfg.RequestTimeout()),
		auth.WithLogger(o.logger.With().Str("component", "auth").Logger()),
		auth.WithMeterProvider(o.meters),
	}
	switch {
	case o.cache != nil:
		managerOpts = append(managerOpts, auth.WithCache(o.cache))
	case cfg.TokenCacheFile != "":
		managerOpts = append(managerOpts, auth.WithCache(auth.NewFileCache(cfg.TokenCacheFile)))
	}
	if o.now != nil {
		managerOpts = append(managerOpts, auth.WithClock(o.now))
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    apiClient,
		tokens:  auth.NewManager(cfg.RefreshToken, cfg.BaseURL, managerOpts...),
		logger:  o.logger.With().Str("component", "client").Logger(),
	}
	c.Products = &ProductsService{client: c}
	c.Offers = &OffersService{client: c}

	return c, nil
}

// Tokens returns the manager supplying the client's access tokens.
func (c *Client) Tokens() *auth.Manager {
	return c.tokens
}
