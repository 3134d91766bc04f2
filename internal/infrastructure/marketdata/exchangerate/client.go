package exchangerate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://open.er-api.com"
	latestPath     = "/v6/latest"

	baseCurrency  = "USD"
	quoteCurrency = "KRW"
)

// Client implements marketdata.RateProvider for USD→KRW using the
// open.er-api.com latest rates endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new exchange-rate client with default settings.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetRate returns how many KRW one USD buys.
func (c *Client) GetRate(ctx context.Context) (*marketdata.RateResult, error) {
	reqURL := fmt.Sprintf("%s%s/%s", c.baseURL, latestPath, baseCurrency)

	doc, err := marketdata.GetJSON(ctx, c.httpClient, reqURL)
	if err != nil {
		return nil, err
	}

	rate, ok := marketdata.LookupDecimal(doc, "$.rates."+quoteCurrency)
	if !ok {
		return nil, fmt.Errorf("rate response has no %s rate", quoteCurrency)
	}
	if rate.Cmp(domain.Zero) <= 0 {
		return nil, fmt.Errorf("rate response has non-positive %s rate: %s", quoteCurrency, rate)
	}

	return &marketdata.RateResult{
		Base:  baseCurrency,
		Quote: quoteCurrency,
		Rate:  rate,
	}, nil
}

// Compile-time check that Client implements RateProvider.
var _ marketdata.RateProvider = (*Client)(nil)
