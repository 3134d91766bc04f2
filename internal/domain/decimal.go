package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Decimal wraps apd.Decimal so that numbers coming from CSV cells and quote feeds
// are parsed exactly before they enter the float valuation core.
type Decimal struct {
	apd.Decimal
}

// DefaultContext is used for arithmetic operations.
var DefaultContext = apd.BaseContext.WithPrecision(20)

// Zero constant for convenience
var Zero = NewDecimalFromInt(0)

// NewDecimalFromInt creates a Decimal from an int64
func NewDecimalFromInt(v int64) Decimal {
	d := Decimal{}
	d.SetInt64(v)
	return d
}

// NewDecimalFromString parses a plain or exponent notation number.
// Thousands separators are tolerated; NaN and infinities are rejected.
func NewDecimalFromString(v string) (Decimal, error) {
	d := Decimal{}
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if _, _, err := d.SetString(s); err != nil {
		return d, fmt.Errorf("invalid decimal string %q: %w", v, err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("invalid decimal string %q: not a finite number", v)
	}
	return d, nil
}

// NewDecimalFromFloat creates a Decimal holding the shortest representation of f.
func NewDecimalFromFloat(f float64) (Decimal, error) {
	d := Decimal{}
	if _, err := d.SetFloat64(f); err != nil {
		return d, fmt.Errorf("invalid float %v: %w", f, err)
	}
	return d, nil
}

// String renders the value in plain notation, never with an exponent.
func (d Decimal) String() string {
	return d.Decimal.Text('f')
}

// Float64 converts to the nearest float64. Values that cannot be represented
// come back as 0.
func (d Decimal) Float64() float64 {
	f, err := d.Decimal.Float64()
	if err != nil {
		return 0
	}
	return f
}

func (d Decimal) Sub(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Sub(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("sub operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) IsNegative() bool {
	return d.Decimal.Sign() < 0
}

// Cmp compares numerically, so 6E+2 and 600 are equal.
func (d Decimal) Cmp(other Decimal) int {
	return d.Decimal.Cmp(&other.Decimal)
}
