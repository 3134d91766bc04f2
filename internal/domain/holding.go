package domain

import "strings"

// Currency is the native currency of a holding.
type Currency string

const (
	// CurrencyKRW is the reporting currency; every aggregate is expressed in it.
	CurrencyKRW Currency = "KRW"
	// CurrencyUSD is the single foreign currency and is converted with the USD→KRW rate.
	CurrencyUSD Currency = "USD"
)

// ParseCurrency normalizes a currency unit as typed by the user.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyKRW:
		return CurrencyKRW, true
	case CurrencyUSD:
		return CurrencyUSD, true
	default:
		return "", false
	}
}

func (c Currency) IsForeign() bool {
	return c == CurrencyUSD
}

// Account names recognized by the account summaries.
const (
	AccountISA      = "ISA"
	AccountPensionA = "연금저축A"
	AccountPensionB = "연금저축B"
	AccountCMA      = "CMA"
	AccountIRP      = "IRP"
)

// CanonicalAccounts is the display order of account summaries. Holdings in any
// other account are valued but left out of SummarizeAccounts.
var CanonicalAccounts = []string{
	AccountISA,
	AccountPensionA,
	AccountPensionB,
	AccountCMA,
	AccountIRP,
}

// RawHolding is one line item as entered by the user. AvgCost is denominated
// in Currency.
type RawHolding struct {
	Account  string   `json:"account"`
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Quantity float64  `json:"quantity"`
	AvgCost  float64  `json:"avg_cost"`
	Currency Currency `json:"currency"`
}

// PriceQuote is a live quote in the instrument's native currency.
type PriceQuote struct {
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
}

// PriceMap maps an instrument code to its quote. A missing key means the quote
// could not be resolved.
type PriceMap map[string]PriceQuote
