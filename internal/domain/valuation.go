package domain

// EnrichedHolding is a RawHolding valued against one quote and one exchange
// rate. Amount fields are in KRW; CurrentPrice and PrevClose stay in the
// holding's native currency.
type EnrichedHolding struct {
	RawHolding
	Sector           Sector  `json:"sector"`
	CurrentPrice     float64 `json:"current_price"`
	CurrentPriceKRW  float64 `json:"current_price_krw"`
	EvalAmount       float64 `json:"eval_amount"`
	GainAmount       float64 `json:"gain_amount"`
	GainRate         float64 `json:"gain_rate"`
	TodayGainAmount  float64 `json:"today_gain_amount"`
	TodayGainRate    float64 `json:"today_gain_rate"`
	PrevClose        float64 `json:"prev_close"`
	PriceUnavailable bool    `json:"price_unavailable"`

	// fxFactor is the multiplier applied to native prices: 1 for KRW holdings,
	// the exchange rate for USD holdings.
	fxFactor float64
}

// conversionRatio is KRW per native unit as observed on this holding's price.
// A zero native price falls back to the factor used during enrichment.
func (h EnrichedHolding) conversionRatio() float64 {
	if h.CurrentPrice > 0 {
		return h.CurrentPriceKRW / h.CurrentPrice
	}
	if h.fxFactor > 0 {
		return h.fxFactor
	}
	return 1
}

// Enrich values every holding against priceMap and exchangeRate. The result has
// the same length and order as holdings. A missing quote never fails the call:
// the holding is priced at its own average cost and flagged PriceUnavailable.
func Enrich(holdings []RawHolding, priceMap PriceMap, exchangeRate float64) []EnrichedHolding {
	enriched := make([]EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		enriched = append(enriched, enrichOne(h, priceMap, exchangeRate))
	}
	return enriched
}

func enrichOne(h RawHolding, priceMap PriceMap, exchangeRate float64) EnrichedHolding {
	quote, ok := priceMap[h.Code]

	currentPrice, prevClose := h.AvgCost, h.AvgCost
	if ok {
		currentPrice, prevClose = quote.CurrentPrice, quote.PreviousClose
	}

	factor := 1.0
	if h.Currency.IsForeign() {
		factor = exchangeRate
	}
	currentKRW := currentPrice * factor
	avgCostKRW := h.AvgCost * factor
	prevCloseKRW := prevClose * factor

	gain := (currentKRW - avgCostKRW) * h.Quantity
	todayGain := (currentKRW - prevCloseKRW) * h.Quantity

	return EnrichedHolding{
		RawHolding:       h,
		Sector:           ClassifySector(h),
		CurrentPrice:     currentPrice,
		CurrentPriceKRW:  currentKRW,
		EvalAmount:       currentKRW * h.Quantity,
		GainAmount:       gain,
		GainRate:         rate(gain, avgCostKRW*h.Quantity),
		TodayGainAmount:  todayGain,
		TodayGainRate:    rate(todayGain, prevCloseKRW*h.Quantity),
		PrevClose:        prevClose,
		PriceUnavailable: !ok,
		fxFactor:         factor,
	}
}

// rate returns amount as a percentage of base, or 0 when base is not positive.
func rate(amount, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return amount / base * 100
}
