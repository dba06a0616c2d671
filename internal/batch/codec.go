package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultEndpoint is the Google Calendar batch endpoint.
const DefaultEndpoint = "https://www.googleapis.com/batch/calendar/v3"

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Config controls codec behavior. The zero value selects the Google
// Calendar batch endpoint, http.DefaultClient, and the default retry
// policy.
type Config struct {
	// Endpoint is the batch endpoint URL.
	Endpoint string

	// HTTPClient performs the physical exchange.
	HTTPClient *http.Client

	// MaxRetries bounds how often a failed exchange is re-attempted.
	// Retries apply only to transport failures, never to token
	// acquisition and never to per-part statuses.
	MaxRetries int

	// RetryDelay is the base backoff delay, doubled per attempt.
	RetryDelay time.Duration

	// Logger receives debug/warn records for exchanges and retries.
	Logger *slog.Logger
}

// Codec packs independent API calls into single multipart exchanges.
// A Codec holds no per-call state; concurrent use is safe.
type Codec struct {
	endpoint   string
	httpClient *http.Client
	tokens     TokenSource
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewCodec creates a codec that authorizes exchanges with tokens from
// the given source.
func NewCodec(tokens TokenSource, cfg Config) *Codec {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Codec{
		endpoint:   cfg.Endpoint,
		httpClient: cfg.HTTPClient,
		tokens:     tokens,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Do submits the sub-requests as one batch exchange and returns their
// responses in submission order. Non-2xx statuses inside individual
// parts are returned as data, not errors. Token acquisition failures
// return an *AuthError immediately; transport failures are retried with
// backoff and return a *TransportError once the retry budget is spent.
func (c *Codec) Do(ctx context.Context, reqs []SubRequest) ([]SubResponse, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	// Each exchange generates its own boundary token, so concurrent
	// callers never share framing state.
	boundary := "batch_" + uuid.NewString()
	payload, err := encodeBody(boundary, reqs)
	if err != nil {
		return nil, err
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			c.logger.Warn("retrying batch exchange",
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &TransportError{Attempts: attempts, Err: ctx.Err()}
			}
		}
		attempts++

		body, contentType, retryable, err := c.exchange(ctx, token, boundary, payload)
		if err != nil {
			if !retryable {
				// The exchange completed but the provider rejected the
				// batch as a whole; retrying would not help.
				return nil, err
			}
			lastErr = err
			continue
		}

		respBoundary, ok := boundaryFromContentType(contentType)
		if !ok {
			// Malformed framing degrades to raw text instead of failing.
			c.logger.Warn("batch response missing multipart boundary",
				slog.String("content_type", contentType))
			return []SubResponse{{RawText: string(body)}}, nil
		}

		parts := decodeBody(body, respBoundary)
		c.logger.Debug("batch exchange completed",
			slog.Int("requested", len(reqs)),
			slog.Int("received", len(parts)))
		return parts, nil
	}

	return nil, &TransportError{Attempts: attempts, Err: lastErr}
}

// exchange performs one physical POST of the encoded payload. The
// retryable result distinguishes transport failures, which the caller
// may retry, from a completed exchange the provider rejected outright.
func (c *Codec) exchange(ctx context.Context, token, boundary string, payload []byte) (body []byte, contentType string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%s", boundary))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", true, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", false, fmt.Errorf("batch endpoint returned status %d", resp.StatusCode)
	}

	return body, resp.Header.Get("Content-Type"), false, nil
}
