package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"perpstracker/pkg/retry"
)

const derivativesPath = "/api/v3/derivatives"

// ErrEmptyResponse marks a syntactically valid response that carried no
// tickers. It is retried like a transport failure.
var ErrEmptyResponse = errors.New("coingecko: empty derivatives response")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
}

func NewClient(baseURL, apiKey string, timeout time.Duration, policy retry.Policy) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
	}
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// DerivativeTickers fetches the full derivatives ticker list. Transport
// errors, non-200 responses, and empty result lists all share the client's
// retry budget with a fixed wait between attempts; the last error is returned
// once the budget is exhausted.
func (c *Client) DerivativeTickers(ctx context.Context) ([]DerivativeTicker, error) {
	var tickers []DerivativeTicker

	err := c.policy.Do(ctx, func(ctx context.Context) error {
		list, err := c.fetchDerivatives(ctx)
		if err != nil {
			return err
		}
		tickers = list
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch derivatives: %w", err)
	}

	return tickers, nil
}

func (c *Client) fetchDerivatives(ctx context.Context) ([]DerivativeTicker, error) {
	endpoint := c.baseURL + derivativesPath

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-cg-pro-api-key", c.apiKey)

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko error (%d): %s", resp.StatusCode, body)
	}

	var tickers []DerivativeTicker
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(tickers) == 0 {
		return nil, ErrEmptyResponse
	}

	return tickers, nil
}
