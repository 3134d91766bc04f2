package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	chartPath      = "/v8/finance/chart"
)

// Client implements marketdata.QuoteProvider for foreign (USD) tickers using
// the Yahoo Finance chart endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo Finance client with default settings.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL (useful for proxies).
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

// GetQuote retrieves the latest price and previous close of a ticker from the
// two-day daily chart.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*marketdata.QuoteResult, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", "2d")

	reqURL := fmt.Sprintf("%s%s/%s?%s", c.baseURL, chartPath, url.PathEscape(ticker), params.Encode())

	doc, err := marketdata.GetJSON(ctx, c.httpClient, reqURL)
	if err != nil {
		return nil, err
	}

	meta, ok := marketdata.Lookup(doc, "$.chart.result[0].meta")
	if !ok {
		return nil, fmt.Errorf("no chart data returned for ticker: %s", ticker)
	}

	price, ok := marketdata.LookupDecimal(meta, "$.regularMarketPrice", "$.chartPreviousClose")
	if !ok {
		return nil, fmt.Errorf("quote request returned no price data for ticker: %s", ticker)
	}

	prevClose, ok := marketdata.LookupDecimal(meta, "$.previousClose", "$.chartPreviousClose")
	if !ok {
		prevClose = price
	}

	return &marketdata.QuoteResult{
		Symbol:        ticker,
		Price:         price,
		PreviousClose: prevClose,
	}, nil
}

// Compile-time check that Client implements QuoteProvider.
var _ marketdata.QuoteProvider = (*Client)(nil)
