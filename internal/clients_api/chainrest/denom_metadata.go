package chainrest

// Client for the Cosmos SDK REST (LCD) endpoint of a ZigChain node. Used to
// look up bank denom metadata for decimal resolution.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"highbuy-monitor/internal/infra/log"

	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeoutSeconds int) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// DenomUnit is one display unit of a bank denom.
type DenomUnit struct {
	Denom    string `json:"denom"`
	Exponent uint32 `json:"exponent"`
}

// DenomMetadata is the bank module's metadata record for a denom.
type DenomMetadata struct {
	Base       string      `json:"base"`
	Display    string      `json:"display"`
	Symbol     string      `json:"symbol"`
	DenomUnits []DenomUnit `json:"denom_units"`
}

type denomMetadataResponse struct {
	Metadata DenomMetadata `json:"metadata"`
}

// GetDenomMetadata fetches bank metadata for a single denom.
func (c *Client) GetDenomMetadata(ctx context.Context, denom string) (*DenomMetadata, error) {
	endpoint := "/cosmos/bank/v1beta1/denoms_metadata/" + url.PathEscape(denom)

	requestID := log.GenerateRequestID()
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.LogRequest(requestID, "GET", endpoint)

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
	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bank metadata error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed denomMetadataResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal denom metadata: %w", err)
	}

	return &parsed.Metadata, nil
}
