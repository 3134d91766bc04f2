package domain

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the column a consolidated holding list is ordered by.
type SortKey string

const (
	SortByName            SortKey = "name"
	SortBySector          SortKey = "sector"
	SortByTodayGainRate   SortKey = "today_gain_rate"
	SortByTodayGainAmount SortKey = "today_gain_amount"
	SortByEvalAmount      SortKey = "eval_amount"
	SortByGainRate        SortKey = "gain_rate"
)

// DefaultSortKey matches the stock list's initial ordering.
const DefaultSortKey = SortByTodayGainRate

// ParseSortKey validates a sort key; an empty string selects DefaultSortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return DefaultSortKey, nil
	case SortByName, SortBySector, SortByTodayGainRate, SortByTodayGainAmount, SortByEvalAmount, SortByGainRate:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// SortConsolidated returns a sorted copy of holdings. Text columns use Korean
// collation. The sort is stable.
func SortConsolidated(holdings []ConsolidatedHolding, key SortKey, descending bool) []ConsolidatedHolding {
	sorted := slices.Clone(holdings)
	col := collate.New(language.Korean)

	compare := func(a, b ConsolidatedHolding) int {
		switch key {
		case SortByName:
			return col.CompareString(a.Name, b.Name)
		case SortBySector:
			return col.CompareString(string(a.Sector), string(b.Sector))
		case SortByTodayGainAmount:
			return cmp.Compare(a.TodayGainAmount, b.TodayGainAmount)
		case SortByEvalAmount:
			return cmp.Compare(a.EvalAmount, b.EvalAmount)
		case SortByGainRate:
			return cmp.Compare(a.GainRate, b.GainRate)
		default:
			return cmp.Compare(a.TodayGainRate, b.TodayGainRate)
		}
	}

	slices.SortStableFunc(sorted, func(a, b ConsolidatedHolding) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}
