package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		in     string
		want   FiscalQuarter
		wantOK bool
	}{
		{"Q1", Q1, true},
		{"q4", Q4, true},
		{" q2 ", Q2, true},
		{"Q5", "", false},
		{"4", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseQuarter(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseQuarter(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if ok && got != tt.want {
			t.Errorf("ParseQuarter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCompareFiscalPeriod(t *testing.T) {
	a := &FinancialReport{FiscalYear: 2023, FiscalQuarter: Q4}
	b := &FinancialReport{FiscalYear: 2024, FiscalQuarter: Q1}
	c := &FinancialReport{FiscalYear: 2024, FiscalQuarter: Q3}

	if CompareFiscalPeriod(a, b) >= 0 {
		t.Error("2023 Q4 should precede 2024 Q1")
	}
	if CompareFiscalPeriod(c, b) <= 0 {
		t.Error("2024 Q3 should follow 2024 Q1")
	}
	if CompareFiscalPeriod(b, b) != 0 {
		t.Error("a period should compare equal to itself")
	}
}

func TestLatestReport(t *testing.T) {
	reports := []FinancialReport{
		{FiscalYear: 2024, FiscalQuarter: Q2},
		{FiscalYear: 2024, FiscalQuarter: Q4},
		{FiscalYear: 2023, FiscalQuarter: Q4},
		{FiscalYear: 2024, FiscalQuarter: Q3},
	}

	latest := LatestReport(reports)
	if latest == nil {
		t.Fatal("expected a latest report")
	}
	if latest.FiscalYear != 2024 || latest.FiscalQuarter != Q4 {
		t.Errorf("latest = %d %s, want 2024 Q4", latest.FiscalYear, latest.FiscalQuarter)
	}

	if LatestReport(nil) != nil {
		t.Error("LatestReport(nil) should be nil")
	}
}

func TestFinancialReport_Value(t *testing.T) {
	r := &FinancialReport{
		Revenue:      decimal.NewNullDecimal(decimal.NewFromInt(100)),
		DebtToEquity: decimal.NewNullDecimal(decimal.RequireFromString("1.5")),
	}

	if v := r.Value(MetricRevenue); !v.Valid || !v.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Value(revenue) = %v", v)
	}
	if v := r.Value(MetricDebtToEquity); !v.Valid {
		t.Error("Value(debt_to_equity) should be valid")
	}
	if v := r.Value(MetricEPS); v.Valid {
		t.Error("Value(eps) should be null when unset")
	}
	if v := r.Value(Metric("pe_ratio")); v.Valid {
		t.Error("unknown metric should be null")
	}
}

func TestMetric(t *testing.T) {
	if len(AllMetrics) != 7 {
		t.Fatalf("expected 7 metrics, got %d", len(AllMetrics))
	}
	for _, m := range AllMetrics {
		if !m.IsValid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if Metric("market_cap").IsValid() {
		t.Error("market_cap is not a report metric")
	}
	if MetricGrossMargin.Kind() != KindPercentage {
		t.Error("gross_margin should render as a percentage")
	}
	if MetricRevenue.Kind() != KindCurrency {
		t.Error("revenue should render as currency")
	}
}
