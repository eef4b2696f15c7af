package degenter

// Package degenter contains the client for the Degenter token API.
// This file is the transport layer only. Business meaning of the payloads
// lives with the callers, which probe the raw bytes for known shapes.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"highbuy-monitor/internal/infra/log"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL - public Degenter API
const DefaultBaseURL = "https://dev-api.degenter.io"

// Client holds everything needed to talk to the Degenter API: base URL,
// HTTP client, rate limiter and circuit breaker.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
}

// NewClient creates a ready-to-use Degenter client.
// timeoutSeconds <= 0 falls back to 10 seconds.
func NewClient(baseURL string, timeoutSeconds int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}

	// 10 requests per second, burst up to 20
	rateLimiter := rate.NewLimiter(rate.Limit(10), 20)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "DegenterAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         baseURL,
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: 10 * 1024 * 1024, // 10MB
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// MakeRequest performs a single HTTP request through the rate limiter and
// circuit breaker. There is no retry here: price lookups are time sensitive
// and a stale answer is worse than no answer.
func (c *Client) MakeRequest(ctx context.Context, method, endpoint string) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	var respBody []byte
	var err error

	if c.circuitBreaker != nil {
		_, err = c.circuitBreaker.Execute(func() (interface{}, error) {
			body, err := c.doRequest(ctx, requestID, method, endpoint, startTime)
			if err != nil {
				return nil, err
			}
			respBody = body
			return body, nil
		})
		if err != nil {
			log.LogDebug("Degenter request rejected",
				zap.String("request_id", requestID),
				zap.String("endpoint", endpoint),
				zap.Error(err))
			return nil, err
		}
	} else {
		respBody, err = c.doRequest(ctx, requestID, method, endpoint, startTime)
		if err != nil {
			return nil, err
		}
	}

	return respBody, nil
}

func (c *Client) doRequest(ctx context.Context, requestID, method, endpoint string, startTime time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "highbuy-monitor/1.0")

	log.LogRequest(requestID, method, endpoint, zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, c.maxResponseSize)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("degenter API error (%d): %s", resp.StatusCode, string(respBody))
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))

	return respBody, nil
}

// TokenPools fetches the pool listing for a denom and returns the raw JSON
// payload. The endpoint's response shape has changed between API revisions,
// so callers probe the bytes instead of binding to a fixed struct here.
func (c *Client) TokenPools(ctx context.Context, denom string) ([]byte, error) {
	endpoint := fmt.Sprintf("/tokens/%s/pools", url.PathEscape(denom))

	respBody, err := c.MakeRequest(ctx, "GET", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get token pools: %w", err)
	}
	return respBody, nil
}
