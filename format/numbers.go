// Package format renders query results as stable, human-readable text.
// Every function is total: missing values render as NA instead of failing.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"findata-mcp/models"
)

// NA is rendered for any missing value
const NA = "n/a"

var printer = message.NewPrinter(language.English)

type scale struct {
	suffix string
	factor decimal.Decimal
}

var scales = []scale{
	{"T", decimal.New(1, 12)},
	{"B", decimal.New(1, 9)},
	{"M", decimal.New(1, 6)},
}

// Currency renders USD with two decimals, scaled to T/B/M from one million
// up and grouped with thousands separators below that.
func Currency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	for _, s := range scales {
		if d.GreaterThanOrEqual(s.factor) {
			return sign + "$" + d.Div(s.factor).StringFixed(2) + s.suffix
		}
	}
	return sign + "$" + groupFixed(d)
}

// CurrencyNull renders a nullable amount
func CurrencyNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	return Currency(d.Decimal)
}

// CurrencyInt renders an optional whole-dollar amount such as market cap
func CurrencyInt(v *int64) string {
	if v == nil {
		return NA
	}
	return Currency(decimal.NewFromInt(*v))
}

// Percentage renders a value already expressed in percentage points
func Percentage(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// PercentageNull renders a nullable percentage
func PercentageNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	return Percentage(d.Decimal)
}

// PerShare renders a per-share dollar amount without scaling
func PerShare(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	if d.Decimal.IsNegative() {
		return "-$" + d.Decimal.Neg().StringFixed(2)
	}
	return "$" + d.Decimal.StringFixed(2)
}

// Ratio renders a plain ratio with two decimals
func Ratio(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	return d.Decimal.StringFixed(2)
}

// Number groups an integer with thousands separators
func Number(v int64) string {
	return printer.Sprintf("%d", v)
}

// NumberPtr renders an optional integer
func NumberPtr(v *int64) string {
	if v == nil {
		return NA
	}
	return Number(*v)
}

// Metric renders a report value according to the metric's kind
func Metric(m models.Metric, d decimal.NullDecimal) string {
	switch m.Kind() {
	case models.KindPercentage:
		return PercentageNull(d)
	case models.KindPerShare:
		return PerShare(d)
	case models.KindRatio:
		return Ratio(d)
	default:
		return CurrencyNull(d)
	}
}

// ParseCurrency inverts Currency. The result equals the original value
// within the rendering precision: 0.005 of the scale unit.
func ParseCurrency(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if !strings.HasPrefix(s, "$") {
		return decimal.Zero, fmt.Errorf("currency %q must start with $", s)
	}
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")

	factor := decimal.NewFromInt(1)
	for _, sc := range scales {
		if strings.HasSuffix(s, sc.suffix) {
			factor = sc.factor
			s = strings.TrimSuffix(s, sc.suffix)
			break
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency amount: %w", err)
	}
	d = d.Mul(factor)
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParsePercentage inverts Percentage
func ParsePercentage(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return decimal.Zero, fmt.Errorf("percentage %q must end with %%", s)
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage: %w", err)
	}
	return d, nil
}

// groupFixed renders a non-negative value below one million with two
// decimals and grouped whole part.
func groupFixed(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	w, err := decimal.NewFromString(whole)
	if err != nil {
		return fixed
	}
	return Number(w.IntPart()) + "." + frac
}
