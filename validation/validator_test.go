package validation

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"findata-mcp/internal/apperr"
	"findata-mcp/models"
)

func expectInvalid(t *testing.T, err error, field string) {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError on %q, got %v", field, err)
	}
	if ve.Field != field {
		t.Errorf("Field = %q, want %q (reason: %s)", ve.Field, field, ve.Reason)
	}
	if ve.Reason == "" {
		t.Error("Reason should not be empty")
	}
}

func TestValidate_UnknownTool(t *testing.T) {
	_, err := Validate("delete_everything", map[string]any{})
	expectInvalid(t, err, "name")
}

func TestValidate_UnknownArgument(t *testing.T) {
	_, err := Validate(models.ToolSectorOverview, map[string]any{"sector": "Energy", "sectr": "x"})
	expectInvalid(t, err, "sectr")
}

func TestValidate_NullIsAbsent(t *testing.T) {
	args, err := Validate(models.ToolSearchCompanies, map[string]any{"sector": nil, "country": "US"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := args.(SearchArgs)
	if s.Sector != nil {
		t.Error("null sector should be absent")
	}
	if s.Country == nil || *s.Country != "US" {
		t.Errorf("Country = %v, want US", s.Country)
	}
}

func TestValidate_Profile(t *testing.T) {
	tests := []struct {
		name       string
		identifier any
		want       string
		byTicker   bool
		wantErr    bool
	}{
		{"ticker", "aapl", "aapl", true, false},
		{"name", "  Apple Inc ", "Apple Inc", false, false},
		{"numeric is a name search", "123", "123", false, false},
		{"empty", "   ", "", false, true},
		{"too long", string(make([]byte, 256)), "", false, true},
		{"wrong type", 42.0, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Validate(models.ToolCompanyProfile, map[string]any{"identifier": tt.identifier})
			if tt.wantErr {
				expectInvalid(t, err, "identifier")
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p := args.(ProfileArgs)
			if p.Identifier != tt.want {
				t.Errorf("Identifier = %q, want %q", p.Identifier, tt.want)
			}
			if p.ByTicker != tt.byTicker {
				t.Errorf("ByTicker = %v, want %v", p.ByTicker, tt.byTicker)
			}
		})
	}

	_, err := Validate(models.ToolCompanyProfile, map[string]any{})
	expectInvalid(t, err, "identifier")
}

func TestValidate_Search(t *testing.T) {
	args, err := Validate(models.ToolSearchCompanies, map[string]any{
		"sector":         " Technology ",
		"min_market_cap": 1e9,
		"max_market_cap": json.Number("3000000000000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := args.(SearchArgs)
	if *s.Sector != "Technology" {
		t.Errorf("Sector = %q", *s.Sector)
	}
	if *s.MinMarketCap != 1_000_000_000 || *s.MaxMarketCap != 3_000_000_000_000 {
		t.Errorf("market cap range = %d..%d", *s.MinMarketCap, *s.MaxMarketCap)
	}

	_, err = Validate(models.ToolSearchCompanies, map[string]any{"min_market_cap": 10.0, "max_market_cap": 5.0})
	expectInvalid(t, err, "min_market_cap")

	_, err = Validate(models.ToolSearchCompanies, map[string]any{"min_market_cap": -1.0})
	expectInvalid(t, err, "min_market_cap")

	_, err = Validate(models.ToolSearchCompanies, map[string]any{"max_market_cap": 1.5})
	expectInvalid(t, err, "max_market_cap")

	_, err = Validate(models.ToolSearchCompanies, map[string]any{"min_market_cap": "1000"})
	expectInvalid(t, err, "min_market_cap")

	_, err = Validate(models.ToolSearchCompanies, map[string]any{"industry": ""})
	expectInvalid(t, err, "industry")
}

func TestValidate_Report(t *testing.T) {
	upper, err := Validate(models.ToolFinancialReport, map[string]any{"ticker": "msft", "fiscal_year": 2024.0, "fiscal_quarter": "Q4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lower, err := Validate(models.ToolFinancialReport, map[string]any{"ticker": "MSFT", "fiscal_year": 2024, "fiscal_quarter": "q4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := upper.(ReportArgs), lower.(ReportArgs)
	if a.Ticker != "MSFT" || b.Ticker != "MSFT" {
		t.Errorf("tickers = %q, %q", a.Ticker, b.Ticker)
	}
	if *a.FiscalQuarter != models.Q4 || *b.FiscalQuarter != models.Q4 {
		t.Errorf("quarters = %s, %s", *a.FiscalQuarter, *b.FiscalQuarter)
	}
	if *a.FiscalYear != 2024 || *b.FiscalYear != 2024 {
		t.Error("fiscal year should be 2024")
	}

	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"missing ticker", map[string]any{}, "ticker"},
		{"bad ticker", map[string]any{"ticker": "BRK.B"}, "ticker"},
		{"numeric ticker", map[string]any{"ticker": "123"}, "ticker"},
		{"long ticker", map[string]any{"ticker": "ABCDEFGHIJK"}, "ticker"},
		{"bad quarter", map[string]any{"ticker": "MSFT", "fiscal_quarter": "Q5"}, "fiscal_quarter"},
		{"year too early", map[string]any{"ticker": "MSFT", "fiscal_year": 1899.0}, "fiscal_year"},
		{"year too late", map[string]any{"ticker": "MSFT", "fiscal_year": 2101.0}, "fiscal_year"},
		{"fractional year", map[string]any{"ticker": "MSFT", "fiscal_year": 2024.5}, "fiscal_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(models.ToolFinancialReport, tt.args)
			expectInvalid(t, err, tt.field)
		})
	}
}

func TestValidate_Compare(t *testing.T) {
	args, err := Validate(models.ToolCompareCompanies, map[string]any{"tickers": []any{"aapl", "MSFT", "zzzz"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := args.(CompareArgs)
	if len(c.Tickers) != 3 || c.Tickers[0] != "AAPL" || c.Tickers[2] != "ZZZZ" {
		t.Errorf("Tickers = %v", c.Tickers)
	}
	if len(c.Metrics) != len(models.AllMetrics) {
		t.Errorf("Metrics should default to all, got %v", c.Metrics)
	}

	args, err = Validate(models.ToolCompareCompanies, map[string]any{
		"tickers": []string{"AAPL", "MSFT"},
		"metrics": []any{" EPS ", "revenue"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c = args.(CompareArgs)
	if len(c.Metrics) != 2 || c.Metrics[0] != models.MetricEPS || c.Metrics[1] != models.MetricRevenue {
		t.Errorf("Metrics = %v", c.Metrics)
	}

	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"missing", map[string]any{}, "tickers"},
		{"one ticker", map[string]any{"tickers": []any{"AAPL"}}, "tickers"},
		{"six tickers", map[string]any{"tickers": []any{"A", "B", "C", "D", "E", "F"}}, "tickers"},
		{"duplicate after normalization", map[string]any{"tickers": []any{"aapl", "AAPL"}}, "tickers"},
		{"invalid ticker", map[string]any{"tickers": []any{"AAPL", "12"}}, "tickers"},
		{"not an array", map[string]any{"tickers": "AAPL,MSFT"}, "tickers"},
		{"non-string item", map[string]any{"tickers": []any{"AAPL", 5.0}}, "tickers"},
		{"unknown metric", map[string]any{"tickers": []any{"AAPL", "MSFT"}, "metrics": []any{"pe_ratio"}}, "metrics"},
		{"duplicate metric", map[string]any{"tickers": []any{"AAPL", "MSFT"}, "metrics": []any{"eps", "EPS"}}, "metrics"},
		{"empty metrics", map[string]any{"tickers": []any{"AAPL", "MSFT"}, "metrics": []any{}}, "metrics"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(models.ToolCompareCompanies, tt.args)
			expectInvalid(t, err, tt.field)
		})
	}
}

func TestValidate_PriceHistory(t *testing.T) {
	args, err := Validate(models.ToolPriceHistory, map[string]any{"ticker": "aapl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := args.(PriceHistoryArgs)
	if p.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", p.Limit, DefaultLimit)
	}
	if p.StartDate != nil || p.EndDate != nil {
		t.Error("dates should be absent")
	}

	args, err = Validate(models.ToolPriceHistory, map[string]any{"ticker": "AAPL", "limit": 10000.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := args.(PriceHistoryArgs).Limit; got != MaxLimit {
		t.Errorf("Limit = %d, want cap %d", got, MaxLimit)
	}

	args, err = Validate(models.ToolPriceHistory, map[string]any{
		"ticker":     "AAPL",
		"start_date": "2024-01-01",
		"end_date":   "2024-01-01",
	})
	if err != nil {
		t.Fatalf("same-day range should be valid: %v", err)
	}
	p = args.(PriceHistoryArgs)
	if !p.StartDate.Equal(*p.EndDate) {
		t.Error("start and end should be equal")
	}

	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"start after end", map[string]any{"ticker": "AAPL", "start_date": "2024-02-01", "end_date": "2024-01-01"}, "start_date"},
		{"bad date", map[string]any{"ticker": "AAPL", "start_date": "01/02/2024"}, "start_date"},
		{"impossible date", map[string]any{"ticker": "AAPL", "end_date": "2024-02-30"}, "end_date"},
		{"zero limit", map[string]any{"ticker": "AAPL", "limit": 0.0}, "limit"},
		{"negative limit", map[string]any{"ticker": "AAPL", "limit": -5.0}, "limit"},
		{"fractional limit", map[string]any{"ticker": "AAPL", "limit": 2.5}, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(models.ToolPriceHistory, tt.args)
			expectInvalid(t, err, tt.field)
		})
	}
}

func TestValidate_Screen(t *testing.T) {
	args, err := Validate(models.ToolScreenStocks, map[string]any{"min_eps": -1.5, "max_debt_to_equity": 2.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := args.(ScreenArgs)
	if *s.MinEPS != -1.5 || *s.MaxDebtToEquity != 2.0 {
		t.Errorf("thresholds = %v, %v", *s.MinEPS, *s.MaxDebtToEquity)
	}
	if s.MinRevenue != nil || s.MinGrossMargin != nil || s.Sector != nil {
		t.Error("absent filters should stay nil")
	}

	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"nan", map[string]any{"min_eps": math.NaN()}, "min_eps"},
		{"inf", map[string]any{"min_revenue": math.Inf(1)}, "min_revenue"},
		{"negative revenue", map[string]any{"min_revenue": -1.0}, "min_revenue"},
		{"margin over 100", map[string]any{"min_gross_margin": 101.0}, "min_gross_margin"},
		{"negative leverage", map[string]any{"max_debt_to_equity": -0.1}, "max_debt_to_equity"},
		{"string number", map[string]any{"min_eps": "2"}, "min_eps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(models.ToolScreenStocks, tt.args)
			expectInvalid(t, err, tt.field)
		})
	}
}

func TestValidate_RatingsAndSector(t *testing.T) {
	args, err := Validate(models.ToolAnalystRatings, map[string]any{"ticker": "nvda", "firm": " Goldman "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := args.(RatingsArgs)
	if r.Ticker != "NVDA" || *r.Firm != "Goldman" {
		t.Errorf("got %+v", r)
	}

	_, err = Validate(models.ToolSectorOverview, map[string]any{})
	expectInvalid(t, err, "sector")

	_, err = Validate(models.ToolSectorOverview, map[string]any{"sector": "  "})
	expectInvalid(t, err, "sector")

	args, err = Validate(models.ToolSectorOverview, map[string]any{"sector": "NoSuchSector"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Tool() != models.ToolSectorOverview {
		t.Errorf("Tool() = %s", args.Tool())
	}
}

func TestValidate_TickerNormalizationIdempotent(t *testing.T) {
	first, err := Validate(models.ToolAnalystRatings, map[string]any{"ticker": " goog "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ticker := first.(RatingsArgs).Ticker

	second, err := Validate(models.ToolAnalystRatings, map[string]any{"ticker": ticker})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.(RatingsArgs).Ticker != ticker {
		t.Errorf("normalizing %q again gave %q", ticker, second.(RatingsArgs).Ticker)
	}
}
