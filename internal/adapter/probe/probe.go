package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var probeUnavailable = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cashflow_consolidation_unavailable_total",
	Help: "Times the consolidation service health check failed",
})

// DefaultTimeout bounds the health request.
const DefaultTimeout = 30 * time.Second

// HTTPProbe implements usecase.AvailabilityProbe against the
// consolidation service's health endpoint. Fail-closed: any transport
// error or non-2xx status reads as unavailable, never as an error,
// because the deferred path is always a safe answer.
type HTTPProbe struct {
	client *http.Client
	url    string
	logger zerolog.Logger
}

// NewHTTPProbe creates a probe for the given health URL.
func NewHTTPProbe(url string, timeout time.Duration, logger zerolog.Logger) *HTTPProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPProbe{
		client: &http.Client{Timeout: timeout},
		url:    url,
		logger: logger,
	}
}

// Available reports whether the consolidation service answered the
// health check with a success status.
func (p *HTTPProbe) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Error().Err(err).Str("url", p.url).Msg("invalid probe request")
		probeUnavailable.Inc()
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", p.url).Msg("consolidation service unreachable")
		probeUnavailable.Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Debug().Int("status", resp.StatusCode).Msg("consolidation service unhealthy")
		probeUnavailable.Inc()
		return false
	}

	return true
}
