package applifting

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

// newHTTPClient returns the default transport: TLS 1.2+, pooled connections,
// and OpenTelemetry spans for every outbound request.
func newHTTPClient(timeout time.Duration, mp metric.MeterProvider) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   false,
		}, otelhttp.WithMeterProvider(mp)),
	}
}

// withBodyReplay returns a copy of c whose transport sends a fresh body from
// GetBody on every attempt. The retry client clones requests per attempt and
// the clones share one already drained Body.
func withBodyReplay(c *http.Client) *http.Client {
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	replaying := *c
	replaying.Transport = bodyReplay{next: next}
	return &replaying
}

type bodyReplay struct {
	next http.RoundTripper
}

func (t bodyReplay) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.GetBody == nil || req.Body == nil || req.Body == http.NoBody {
		return t.next.RoundTrip(req)
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	fresh := req.Clone(req.Context())
	fresh.Body = body
	return t.next.RoundTrip(fresh)
}

// retryLogger routes go-httpretry's key/value logging into zerolog. The final
// outcome of a request is returned to the caller, so nothing is logged above
// info.
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Debug(msg string, args ...any) { l.logger.Debug().Fields(args).Msg(msg) }
func (l retryLogger) Info(msg string, args ...any)  { l.logger.Debug().Fields(args).Msg(msg) }
func (l retryLogger) Warn(msg string, args ...any)  { l.logger.Info().Fields(args).Msg(msg) }
func (l retryLogger) Error(msg string, args ...any) { l.logger.Info().Fields(args).Msg(msg) }
