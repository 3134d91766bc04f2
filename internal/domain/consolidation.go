package domain

// AccountBreakdown is one account's share of a consolidated instrument.
type AccountBreakdown struct {
	Account    string  `json:"account"`
	Quantity   float64 `json:"quantity"`
	EvalAmount float64 `json:"eval_amount"`
	Ratio      float64 `json:"ratio"`
}

// ConsolidatedHolding merges every EnrichedHolding of one instrument code
// regardless of account. Descriptive fields and PriceUnavailable come from the
// first holding seen for the code.
type ConsolidatedHolding struct {
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	Currency         Currency           `json:"currency"`
	Sector           Sector             `json:"sector"`
	TotalQuantity    float64            `json:"total_quantity"`
	AvgCost          float64            `json:"avg_cost"`
	CurrentPrice     float64            `json:"current_price"`
	EvalAmount       float64            `json:"eval_amount"`
	GainAmount       float64            `json:"gain_amount"`
	GainRate         float64            `json:"gain_rate"`
	TodayGainAmount  float64            `json:"today_gain_amount"`
	TodayGainRate    float64            `json:"today_gain_rate"`
	PriceUnavailable bool               `json:"price_unavailable"`
	ByAccount        []AccountBreakdown `json:"by_account"`
}

// groupBy splits holdings by key, keeping groups in order of first occurrence
// and members in input order.
func groupBy(holdings []EnrichedHolding, key func(EnrichedHolding) string) ([]string, map[string][]EnrichedHolding) {
	var order []string
	groups := make(map[string][]EnrichedHolding)
	for _, h := range holdings {
		k := key(h)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], h)
	}
	return order, groups
}

// Consolidate produces one ConsolidatedHolding per instrument code, in order of
// first appearance. Amount totals are plain sums of the members, so the
// portfolio total is unchanged by consolidation.
func Consolidate(holdings []EnrichedHolding) []ConsolidatedHolding {
	order, groups := groupBy(holdings, func(h EnrichedHolding) string { return h.Code })

	result := make([]ConsolidatedHolding, 0, len(order))
	for _, code := range order {
		result = append(result, consolidateGroup(groups[code]))
	}
	return result
}

func consolidateGroup(group []EnrichedHolding) ConsolidatedHolding {
	first := group[0]
	// USD members are normalized with the representative's observed price
	// ratio, not the live rate.
	ratio := first.conversionRatio()

	var totalQty, totalEval, totalGain, totalTodayGain, totalCost, prevEval float64
	for _, h := range group {
		totalQty += h.Quantity
		totalEval += h.EvalAmount
		totalGain += h.GainAmount
		totalTodayGain += h.TodayGainAmount

		avgCostKRW, prevCloseKRW := h.AvgCost, h.PrevClose
		if h.Currency.IsForeign() {
			avgCostKRW *= ratio
			prevCloseKRW *= ratio
		}
		totalCost += avgCostKRW * h.Quantity
		prevEval += prevCloseKRW * h.Quantity
	}

	avgCost := 0.0
	if totalQty > 0 {
		avgCost = totalCost / totalQty
	}

	byAccount := make([]AccountBreakdown, 0, len(group))
	for _, h := range group {
		byAccount = append(byAccount, AccountBreakdown{
			Account:    h.Account,
			Quantity:   h.Quantity,
			EvalAmount: h.EvalAmount,
			Ratio:      rate(h.EvalAmount, totalEval),
		})
	}

	return ConsolidatedHolding{
		Code:             first.Code,
		Name:             first.Name,
		Currency:         first.Currency,
		Sector:           first.Sector,
		TotalQuantity:    totalQty,
		AvgCost:          avgCost,
		CurrentPrice:     first.CurrentPrice,
		EvalAmount:       totalEval,
		GainAmount:       totalGain,
		GainRate:         rate(totalGain, avgCost*totalQty),
		TodayGainAmount:  totalTodayGain,
		TodayGainRate:    rate(totalTodayGain, prevEval),
		PriceUnavailable: first.PriceUnavailable,
		ByAccount:        byAccount,
	}
}
