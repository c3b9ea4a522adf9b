package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "finrag/1.0 (+https://github.com/cloo-solutions/finrag)"
	maxErrorBody     = 200
)

// HTTPOptions configures a network-backed loader. Zero values fall back to defaults.
type HTTPOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

type httpSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPSource(opts HTTPOptions, defaultBaseURL string, defaultRPS float64) *httpSource {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &httpSource{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// getJSON issues a throttled GET and decodes a 200 response into out.
// Any other status is an error carrying the start of the body.
func (s *httpSource) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
