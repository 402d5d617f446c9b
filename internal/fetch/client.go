package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 5
	defaultBurst         = 2
	defaultMaxRetries    = 2
	baseRetryWait        = 250 * time.Millisecond
	userAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"
)

// ClientConfig holds the transport settings shared by both provider clients
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
}

func (c ClientConfig) withDefaults(baseURL string) ClientConfig {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = defaultRatePerSecond
	}
	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	return c
}

// StatusError is returned for non-success responses that are not retried
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// jsonClient performs rate limited GETs with retries on throttling and server errors
type jsonClient struct {
	http    *http.Client
	limiter *rate.Limiter
	retries int
}

func newJSONClient(cfg ClientConfig) *jsonClient {
	return &jsonClient{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		retries: cfg.MaxRetries,
	}
}

func (c *jsonClient) get(ctx context.Context, url string, headers http.Header, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		for k, v := range headers {
			req.Header[k] = v
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt >= c.retries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt >= c.retries {
				return &StatusError{StatusCode: resp.StatusCode}
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// sleep backs off exponentially, returning early if ctx is done
func (c *jsonClient) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
