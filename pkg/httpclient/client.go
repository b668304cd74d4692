package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const maxErrorBody = 512

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Service, e.StatusCode, e.Body)
}

// Retryable reports whether a later attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client posts JSON documents and decodes JSON answers. Transport errors,
// 429 and 5xx answers are retried with exponential backoff.
type Client struct {
	service  string
	http     *http.Client
	maxTries uint
	// InitialInterval is the first retry delay.
	InitialInterval time.Duration
}

func New(service string, timeout time.Duration, maxTries uint) *Client {
	if maxTries == 0 {
		maxTries = 1
	}
	return &Client{
		service:         service,
		http:            &http.Client{Timeout: timeout},
		maxTries:        maxTries,
		InitialInterval: 500 * time.Millisecond,
	}
}

// PostJSON sends in to url and decodes the answer into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", c.service, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialInterval
	bo.MaxInterval = 5 * time.Second

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, url, headers, payload)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", c.service, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, headers map[string]string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create %s request: %w", c.service, err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("%s request failed: %w", c.service, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.service, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		statusErr := &StatusError{Service: c.service, StatusCode: res.StatusCode, Body: truncate(body)}
		if statusErr.Retryable() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}
	return body, nil
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
