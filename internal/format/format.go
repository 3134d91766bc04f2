// Package format renders KRW amounts and percentages the way the dashboard
// displays them.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

const (
	eok = 1_0000_0000 // 억
	man = 1_0000      // 만
)

// grouped prints whole numbers with thousands separators and no currency sign.
var grouped = money.NewFormatter(0, ".", ",", "", "1")

// KRW abbreviates large amounts: one decimal of 억 from 1억 up, whole 만 from
// 1만 up, and below that the grouped number with up to three fraction digits.
func KRW(amount float64) string {
	abs := math.Abs(amount)
	switch {
	case abs >= eok:
		return fmt.Sprintf("%.1f억", amount/eok)
	case abs >= man:
		return grouped.Format(int64(math.Round(amount/man))) + "만"
	default:
		return plain(amount)
	}
}

// plain groups the integer part and keeps at most three fraction digits,
// trailing zeros dropped.
func plain(amount float64) string {
	rounded := math.Round(amount*1000) / 1000
	whole, frac := math.Modf(math.Abs(rounded))

	s := grouped.Format(int64(whole))
	if frac > 0 {
		digits := strings.TrimRight(strconv.FormatFloat(frac, 'f', 3, 64)[1:], "0")
		if digits != "." {
			s += digits
		}
	}
	if rounded < 0 {
		return "-" + s
	}
	return s
}

// Rate prints a percentage with two decimals and an explicit sign.
func Rate(rate float64) string {
	if rate >= 0 {
		return fmt.Sprintf("+%.2f%%", rate)
	}
	return fmt.Sprintf("%.2f%%", rate)
}

// Amount prints a signed won amount, e.g. +₩1,200 or -₩350.
func Amount(amount float64) string {
	won := money.New(int64(math.Round(math.Abs(amount))), money.KRW).Display()
	if amount < 0 {
		return "-" + won
	}
	return "+" + won
}
