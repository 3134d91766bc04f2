package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

// userAgent is sent on every request; the quote endpoints reject bare clients.
const userAgent = "Mozilla/5.0"

// QuoteResult is a quote in the instrument's native currency.
type QuoteResult struct {
	Symbol        string
	Price         domain.Decimal
	PreviousClose domain.Decimal
}

// RateResult is the amount of quote currency bought by one unit of base currency.
type RateResult struct {
	Base  string
	Quote string
	Rate  domain.Decimal
}

// QuoteProvider resolves a single instrument quote.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*QuoteResult, error)
}

// RateProvider resolves the current exchange rate of one fixed currency pair.
type RateProvider interface {
	GetRate(ctx context.Context) (*RateResult, error)
}

// GetJSON performs a GET request and decodes the JSON body into a generic value
// suitable for Lookup.
func GetJSON(ctx context.Context, client *http.Client, reqURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// Lookup evaluates a JSONPath expression against doc. Missing keys, out of
// range indexes and JSON nulls all report false.
func Lookup(doc any, path string) (any, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return nil, false
	}
	// jsonpath may wrap a single match in a list
	if list, ok := v.([]any); ok {
		if len(list) == 0 || list[0] == nil {
			return nil, false
		}
		v = list[0]
	}
	return v, true
}

// LookupDecimal returns the first path that holds a number, either as a JSON
// number or as a numeric string.
func LookupDecimal(doc any, paths ...string) (domain.Decimal, bool) {
	for _, path := range paths {
		v, ok := Lookup(doc, path)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			if d, err := domain.NewDecimalFromFloat(t); err == nil {
				return d, true
			}
		case string:
			if d, err := domain.NewDecimalFromString(t); err == nil {
				return d, true
			}
		}
	}
	return domain.Decimal{}, false
}
