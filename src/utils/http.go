package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var RetryInitialInterval = 500 * time.Millisecond

type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: http code %v", e.URL, e.Status)
}

// Retryable reports whether the request may succeed if sent again.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewHTTPClient returns a client whose outbound requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Get: failed to create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Add(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Get: failed to fetch %s: %w", url, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{URL: url, StatusCode: res.StatusCode, Status: res.Status}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("Get: failed to read response body: %w", err)
	}

	return body, nil
}

// GetWithRetry retries rate limited and server side failures with exponential backoff.
func GetWithRetry(ctx context.Context, client *http.Client, url string, headers map[string]string, maxRetries uint64) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval

	op := func() ([]byte, error) {
		body, err := Get(ctx, client, url, headers)
		if err == nil {
			return body, nil
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, backoff.Permanent(err)
		}

		log.Debugf("GetWithRetry: retrying %s: %v", url, err)
		return nil, err
	}

	return backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}
