package format

import (
	"testing"

	"github.com/shopspring/decimal"

	"findata-mcp/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(s))
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"12.5", "$12.50"},
		{"1234.567", "$1,234.57"},
		{"999999.99", "$999,999.99"},
		{"1000000", "$1.00M"},
		{"2500000", "$2.50M"},
		{"69630000000", "$69.63B"},
		{"3450000000000", "$3.45T"},
		{"-5000000000", "-$5.00B"},
		{"-42.1", "-$42.10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Currency(d(tt.in)); got != tt.want {
				t.Errorf("Currency(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCurrency_RoundTrip(t *testing.T) {
	values := []string{
		"0", "0.01", "17.35", "123456.78", "1000000", "7654321.99",
		"94930000000", "124300000000", "2999999999999", "3450000000000", "-21870000000",
	}
	half := d("0.005")

	for _, v := range values {
		orig := d(v)
		rendered := Currency(orig)
		parsed, err := ParseCurrency(rendered)
		if err != nil {
			t.Fatalf("ParseCurrency(%q) error: %v", rendered, err)
		}

		unit := decimal.NewFromInt(1)
		for _, s := range scales {
			if orig.Abs().GreaterThanOrEqual(s.factor) {
				unit = s.factor
				break
			}
		}
		if diff := parsed.Sub(orig).Abs(); diff.GreaterThan(half.Mul(unit)) {
			t.Errorf("%s rendered as %q parsed back to %s (off by %s)", v, rendered, parsed, diff)
		}
	}
}

func TestParseCurrency_Invalid(t *testing.T) {
	for _, in := range []string{"", "12.00", "$", "$abcB", "n/a"} {
		if _, err := ParseCurrency(in); err == nil {
			t.Errorf("ParseCurrency(%q) expected error", in)
		}
	}
}

func TestPercentage_RoundTrip(t *testing.T) {
	for _, v := range []string{"0", "46.52", "-3.1", "100", "12.345"} {
		orig := d(v)
		parsed, err := ParsePercentage(Percentage(orig))
		if err != nil {
			t.Fatalf("ParsePercentage error: %v", err)
		}
		if diff := parsed.Sub(orig).Abs(); diff.GreaterThan(d("0.005")) {
			t.Errorf("%s round-tripped to %s", v, parsed)
		}
	}

	if _, err := ParsePercentage("46.5"); err == nil {
		t.Error("expected error without % suffix")
	}
}

func TestNullValuesRenderNA(t *testing.T) {
	var null decimal.NullDecimal

	checks := map[string]string{
		"CurrencyNull":   CurrencyNull(null),
		"CurrencyInt":    CurrencyInt(nil),
		"PercentageNull": PercentageNull(null),
		"PerShare":       PerShare(null),
		"Ratio":          Ratio(null),
		"NumberPtr":      NumberPtr(nil),
	}
	for name, got := range checks {
		if got != NA {
			t.Errorf("%s(nil) = %q, want %q", name, got, NA)
		}
	}
}

func TestMetric_DispatchesOnKind(t *testing.T) {
	tests := []struct {
		metric models.Metric
		value  decimal.NullDecimal
		want   string
	}{
		{models.MetricRevenue, nd("69630000000"), "$69.63B"},
		{models.MetricFreeCashFlow, nd("-1200000"), "-$1.20M"},
		{models.MetricGrossMargin, nd("46.5"), "46.50%"},
		{models.MetricEPS, nd("2.4"), "$2.40"},
		{models.MetricEPS, nd("-0.35"), "-$0.35"},
		{models.MetricDebtToEquity, nd("1.873"), "1.87"},
		{models.MetricNetIncome, decimal.NullDecimal{}, NA},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			if got := Metric(tt.metric, tt.value); got != tt.want {
				t.Errorf("Metric(%s) = %q, want %q", tt.metric, got, tt.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	if got := Number(164000); got != "164,000" {
		t.Errorf("Number(164000) = %q", got)
	}
	if got := Number(-1234567); got != "-1,234,567" {
		t.Errorf("Number(-1234567) = %q", got)
	}
	n := int64(42)
	if got := NumberPtr(&n); got != "42" {
		t.Errorf("NumberPtr(42) = %q", got)
	}
}
