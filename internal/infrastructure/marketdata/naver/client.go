package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://polling.finance.naver.com"
	realtimePath   = "/api/realtime/domestic/stock"
)

// Client implements marketdata.QuoteProvider for domestic (KRW) codes using the
// Naver Finance realtime polling API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Naver Finance client with default settings.
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

// GetQuote retrieves the realtime price of a 6-digit domestic code. The API
// reports the change against the previous close, so previous close is derived
// as price minus change. The payload is either wrapped in "datas" or flat.
func (c *Client) GetQuote(ctx context.Context, code string) (*marketdata.QuoteResult, error) {
	reqURL := fmt.Sprintf("%s%s/%s", c.baseURL, realtimePath, url.PathEscape(code))

	doc, err := marketdata.GetJSON(ctx, c.httpClient, reqURL)
	if err != nil {
		return nil, err
	}

	price, ok := marketdata.LookupDecimal(doc, "$.datas[0].closePriceRaw", "$.closePriceRaw")
	if !ok {
		return nil, fmt.Errorf("quote request returned no price data for code: %s", code)
	}

	prevClose := price
	if diff, ok := marketdata.LookupDecimal(doc, "$.datas[0].compareToPreviousClosePriceRaw", "$.compareToPreviousClosePriceRaw"); ok {
		prevClose, err = price.Sub(diff)
		if err != nil {
			return nil, fmt.Errorf("failed to derive previous close for code %s: %w", code, err)
		}
	}

	return &marketdata.QuoteResult{
		Symbol:        code,
		Price:         price,
		PreviousClose: prevClose,
	}, nil
}

// Compile-time check that Client implements QuoteProvider.
var _ marketdata.QuoteProvider = (*Client)(nil)
