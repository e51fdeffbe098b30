package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"tengoku-tracker/internal/constants"
	"tengoku-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type WebhookClient struct {
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo mirrors the X-RateLimit-* headers of the last webhook response.
type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until the bucket refills
	ResetAfter float64 `json:"reset_after"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewWebhookClient(logger zerolog.Logger) *WebhookClient {
	return &WebhookClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.WebhookTimeout,
			WriteTimeout:        constants.WebhookTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *WebhookClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *WebhookClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-RateLimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset-After")); reset != "" {
		if val, err := strconv.ParseFloat(reset, 64); err == nil {
			c.rateLimit.ResetAfter = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// Post sends payload as JSON to url. A 429 is waited out and the same body resent, up to
// constants.WebhookMaxAttempts sends in total and never past ctx's deadline.
// Every failure wraps domain.ErrNotificationDeliveryFailed.
func (c *WebhookClient) Post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to encode payload: %w", domain.ErrNotificationDeliveryFailed, err)
	}

	for attempt := 1; attempt <= constants.WebhookMaxAttempts; attempt++ {
		status, respBody, wait, err := c.send(ctx, url, body)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrNotificationDeliveryFailed, err)
		}

		if status >= 200 && status < 300 {
			return nil
		}

		if status != fasthttp.StatusTooManyRequests {
			return fmt.Errorf("%w: webhook HTTP %d: %s", domain.ErrNotificationDeliveryFailed, status, truncate(respBody, 200))
		}

		if attempt == constants.WebhookMaxAttempts {
			break
		}

		c.logger.Warn().
			Int("attempt", attempt).
			Dur("retry_after", wait).
			Str("bucket", c.GetRateLimitInfo().Bucket).
			Msg("webhook rate limited, waiting")

		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("%w: gave up waiting for rate limit: %w", domain.ErrNotificationDeliveryFailed, err)
		}
	}

	return fmt.Errorf("%w: still rate limited after %d attempts", domain.ErrNotificationDeliveryFailed, constants.WebhookMaxAttempts)
}

func (c *WebhookClient) send(ctx context.Context, url string, body []byte) (status int, respBody []byte, retryAfter time.Duration, err error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(constants.WebhookTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, 0, err
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, 0, err
	}

	c.updateRateLimit(resp)

	status = resp.StatusCode()
	respBody = append([]byte(nil), resp.Body()...)
	if status == fasthttp.StatusTooManyRequests {
		retryAfter = parseRetryAfter(respBody, string(resp.Header.Peek("Retry-After")))
	}
	return status, respBody, retryAfter, nil
}

// parseRetryAfter prefers the JSON body's retry_after, then the Retry-After header,
// then constants.WebhookDefaultRetry. The result is capped at constants.WebhookMaxRetryAfter.
func parseRetryAfter(body []byte, header string) time.Duration {
	var seconds float64

	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		seconds = payload.RetryAfter
	} else if v, err := strconv.ParseFloat(header, 64); err == nil && v > 0 {
		seconds = v
	}

	wait := constants.WebhookDefaultRetry
	if seconds > 0 {
		wait = time.Duration(seconds * float64(time.Second))
	}
	return min(wait, constants.WebhookMaxRetryAfter)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
