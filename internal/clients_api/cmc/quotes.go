package cmc

// Client for the CoinMarketCap Pro API. Only the latest-quotes endpoint is
// used, to price the chain's native coin when no on-chain pool quote exists.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// DefaultBaseURL - CoinMarketCap Pro API
const DefaultBaseURL = "https://pro-api.coinmarketcap.com"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a CoinMarketCap client. An empty apiKey is allowed; the
// API will reject requests and the caller treats that as a failed lookup.
func NewClient(baseURL, apiKey string, timeoutSeconds int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// QuotesLatest fetches USD quotes for an asset, by numeric CMC id when set,
// otherwise by ticker symbol. Returns the raw JSON payload.
func (c *Client) QuotesLatest(ctx context.Context, assetID, assetSymbol string) ([]byte, error) {
	params := url.Values{}
	if assetID != "" {
		params.Set("id", assetID)
	} else if assetSymbol != "" {
		params.Set("symbol", assetSymbol)
	} else {
		return nil, fmt.Errorf("either asset id or symbol is required")
	}

	endpoint := "/v1/cryptocurrency/quotes/latest?" + params.Encode()

	requestID := log.GenerateRequestID()
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	log.LogRequest(requestID, "GET", "/v1/cryptocurrency/quotes/latest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	duration := time.Since(startTime).Milliseconds()
	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", "/v1/cryptocurrency/quotes/latest"))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coinmarketcap API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
