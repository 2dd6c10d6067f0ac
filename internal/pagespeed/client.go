package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-deblas/dashboardcwv/internal/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// RetryPolicy configures the backoff loop of a Client. Immutable once the
// client is built.
type RetryPolicy struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		BackoffMultiplier: 2.0,
		Timeout:           60 * time.Second,
	}
}

// UpstreamError is returned when a fetch fails for good: either a
// non-retryable client error or exhausted retries. StatusCode is 0 for
// transport-level failures.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pagespeed request for %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("pagespeed request for %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client fetches raw PageSpeed payloads with bounded exponential-backoff
// retry. Retries are scoped to a single FetchMetrics call; no state is
// carried across calls.
type Client struct {
	auth       *AuthProvider
	policy     RetryPolicy
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(auth *AuthProvider, policy RetryPolicy, logger zerolog.Logger) *Client {
	return &Client{
		auth:       auth,
		policy:     policy,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// FetchMetrics performs one logical fetch for a URL. It issues up to
// MaxRetries+1 attempts, each with its own timeout. HTTP statuses in
// [400,500) other than 429 abort immediately; 5xx, 429, timeouts and
// transport errors are retried after a geometric backoff.
func (c *Client) FetchMetrics(ctx context.Context, target, strategy string, categories []string) (*Response, error) {
	key, err := c.auth.APIKey()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("url", target)
	params.Set("key", key)
	params.Set("strategy", strategy)
	for _, category := range categories {
		params.Add("category", category)
	}
	requestURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		c.logger.Debug().
			Str("url", target).
			Str("strategy", strategy).
			Int("attempt", attempt+1).
			Msg("fetching pagespeed data")

		metrics.RecordFetchAttempt(strategy)

		resp, retryable, err := c.attempt(ctx, requestURL)
		if err == nil {
			return resp, nil
		}
		if !retryable {
			c.logger.Error().Err(err).Str("url", target).Msg("client error, not retrying")
			return nil, err
		}

		lastErr = err
		c.logger.Warn().
			Err(err).
			Str("url", target).
			Int("attempt", attempt+1).
			Msg("retryable pagespeed error")

		if attempt < c.policy.MaxRetries {
			wait := time.Duration(float64(c.policy.InitialBackoff) * math.Pow(c.policy.BackoffMultiplier, float64(attempt)))
			metrics.RecordFetchRetry(strategy)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &UpstreamError{URL: target, Err: ctx.Err()}
			}
		}
	}

	c.logger.Error().
		Str("url", target).
		Int("attempts", c.policy.MaxRetries+1).
		Msg("pagespeed fetch failed after all attempts")

	return nil, lastErr
}

// attempt issues a single request. The second return value reports whether
// the failure may be retried.
func (c *Client) attempt(ctx context.Context, requestURL string) (*Response, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, &UpstreamError{URL: requestURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// timeout, DNS, connection reset: all transient from our side
		return nil, true, &UpstreamError{URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		upErr := &UpstreamError{
			URL:        requestURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", string(body)),
		}
		retryable := !isClientError(resp.StatusCode)
		return nil, retryable, upErr
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, true, &UpstreamError{URL: requestURL, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &parsed, false, nil
}

// isClientError reports whether a status is a non-transient caller mistake.
// 429 is excluded: rate limiting is worth waiting out.
func isClientError(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
