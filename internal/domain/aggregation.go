package domain

import (
	"cmp"
	"slices"
	"time"
)

// AccountSummary is the daily view of one canonical account.
type AccountSummary struct {
	Account         string  `json:"account"`
	EvalAmount      float64 `json:"eval_amount"`
	TodayGainAmount float64 `json:"today_gain_amount"`
	TodayGainRate   float64 `json:"today_gain_rate"`
}

// SectorAllocation is one slice of the allocation chart.
type SectorAllocation struct {
	Sector Sector  `json:"sector"`
	Amount float64 `json:"amount"`
	Ratio  float64 `json:"ratio"`
	Color  string  `json:"color"`
}

// PortfolioSummary describes the whole portfolio in KRW.
type PortfolioSummary struct {
	TotalEval       float64   `json:"total_eval"`
	TotalCost       float64   `json:"total_cost"`
	TotalGainAmount float64   `json:"total_gain_amount"`
	TotalGainRate   float64   `json:"total_gain_rate"`
	TodayGainAmount float64   `json:"today_gain_amount"`
	TodayGainRate   float64   `json:"today_gain_rate"`
	ExchangeRate    float64   `json:"exchange_rate"`
	UpdatedAt       string    `json:"updated_at"`
	AsOf            time.Time `json:"as_of"`
}

// SummarizeAccounts returns one summary per account in CanonicalAccounts order.
// Accounts outside the canonical list are dropped.
func SummarizeAccounts(holdings []EnrichedHolding) []AccountSummary {
	_, groups := groupBy(holdings, func(h EnrichedHolding) string { return h.Account })

	summaries := make([]AccountSummary, 0, len(CanonicalAccounts))
	for _, account := range CanonicalAccounts {
		group, ok := groups[account]
		if !ok {
			continue
		}

		var evalAmount, todayGain, prevEval float64
		for _, h := range group {
			evalAmount += h.EvalAmount
			todayGain += h.TodayGainAmount
			prevClose := h.PrevClose
			if h.Currency.IsForeign() {
				prevClose *= h.conversionRatio()
			}
			prevEval += prevClose * h.Quantity
		}

		summaries = append(summaries, AccountSummary{
			Account:         account,
			EvalAmount:      evalAmount,
			TodayGainAmount: todayGain,
			TodayGainRate:   rate(todayGain, prevEval),
		})
	}
	return summaries
}

// AllocateSectors sums evaluation per sector and returns the sectors ordered by
// descending amount. Equal amounts keep their first-seen order.
func AllocateSectors(holdings []EnrichedHolding) []SectorAllocation {
	order, groups := groupBy(holdings, func(h EnrichedHolding) string { return string(h.Sector) })

	allocations := make([]SectorAllocation, 0, len(order))
	total := 0.0
	for _, key := range order {
		amount := 0.0
		for _, h := range groups[key] {
			amount += h.EvalAmount
		}
		total += amount
		sector := Sector(key)
		allocations = append(allocations, SectorAllocation{
			Sector: sector,
			Amount: amount,
			Color:  sector.Color(),
		})
	}

	for i := range allocations {
		allocations[i].Ratio = rate(allocations[i].Amount, total)
	}

	slices.SortStableFunc(allocations, func(a, b SectorAllocation) int {
		return cmp.Compare(b.Amount, a.Amount)
	})
	return allocations
}

// SummarizePortfolio reduces all holdings into one summary. Cost basis and
// previous-close valuation of USD holdings use the live exchangeRate.
// now is rendered as HH:MM in its own location.
func SummarizePortfolio(holdings []EnrichedHolding, exchangeRate float64, now time.Time) PortfolioSummary {
	var totalEval, totalCost, todayGain, prevEval float64
	for _, h := range holdings {
		factor := 1.0
		if h.Currency.IsForeign() {
			factor = exchangeRate
		}
		totalEval += h.EvalAmount
		totalCost += h.AvgCost * factor * h.Quantity
		todayGain += h.TodayGainAmount
		prevEval += h.PrevClose * factor * h.Quantity
	}

	totalGain := totalEval - totalCost
	return PortfolioSummary{
		TotalEval:       totalEval,
		TotalCost:       totalCost,
		TotalGainAmount: totalGain,
		TotalGainRate:   rate(totalGain, totalCost),
		TodayGainAmount: todayGain,
		TodayGainRate:   rate(todayGain, prevEval),
		ExchangeRate:    exchangeRate,
		UpdatedAt:       now.Format("15:04"),
		AsOf:            now,
	}
}
