package repository

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestFilter_Empty(t *testing.T) {
	f := NewFilter()
	if f.Clause() != "" {
		t.Errorf("expected empty clause, got %q", f.Clause())
	}
	if len(f.Args()) != 0 {
		t.Errorf("expected no args, got %v", f.Args())
	}
}

func TestFilter_PlaceholdersFollowExistingArgs(t *testing.T) {
	f := NewFilter("company-id")
	f.Where("a = %s", 1).Where("b BETWEEN %s AND %s", 2, 3)

	want := "WHERE a = $2 AND b BETWEEN $3 AND $4"
	if f.Clause() != want {
		t.Errorf("Clause() = %q, want %q", f.Clause(), want)
	}
	if len(f.Args()) != 4 || f.Args()[0] != "company-id" {
		t.Errorf("unexpected args %v", f.Args())
	}
	if p := f.Bind(10); p != "$5" {
		t.Errorf("Bind() = %q, want $5", p)
	}
}

func TestFilter_NilCriteriaAddNothing(t *testing.T) {
	f := CompanyFilter{}.Apply(NewFilter())
	if f.Len() != 0 {
		t.Errorf("expected no predicates, got %d: %s", f.Len(), f.Clause())
	}

	f = ScreenFilter{}.Apply(NewFilter())
	if f.Len() != 0 {
		t.Errorf("expected no predicates, got %d: %s", f.Len(), f.Clause())
	}
}

func TestCompanyFilter_Apply(t *testing.T) {
	cf := CompanyFilter{
		Sector:       strPtr("Technology"),
		Country:      strPtr("US"),
		MinMarketCap: int64Ptr(1_000_000_000),
		MaxMarketCap: int64Ptr(5_000_000_000_000),
	}
	f := cf.Apply(NewFilter())

	want := "WHERE lower(c.sector) = lower($1) AND lower(c.country) = lower($2) AND c.market_cap >= $3 AND c.market_cap <= $4"
	if f.Clause() != want {
		t.Errorf("Clause() =\n%q\nwant\n%q", f.Clause(), want)
	}
	if f.Args()[0] != "Technology" {
		t.Errorf("expected sector arg, got %v", f.Args()[0])
	}
}

// Adding a criterion only ever appends a conjunct, so the predicate set of
// a narrower filter is a superset of the wider one.
func TestFilter_Monotonic(t *testing.T) {
	base := CompanyFilter{Sector: strPtr("Technology")}
	narrower := base
	narrower.MinMarketCap = int64Ptr(2_000_000_000_000)

	wide := base.Apply(NewFilter()).Clause()
	narrow := narrower.Apply(NewFilter()).Clause()

	if !strings.HasPrefix(narrow, wide+" AND ") {
		t.Errorf("narrower clause %q should extend %q", narrow, wide)
	}
}

func TestScreenFilter_Apply(t *testing.T) {
	sf := ScreenFilter{
		Sector:          strPtr("Energy"),
		MinRevenue:      floatPtr(1e9),
		MaxDebtToEquity: floatPtr(0.5),
	}
	f := sf.Apply(NewFilter())

	want := "WHERE lower(c.sector) = lower($1) AND fr.revenue >= $2::numeric AND fr.debt_to_equity <= $3::numeric"
	if f.Clause() != want {
		t.Errorf("Clause() =\n%q\nwant\n%q", f.Clause(), want)
	}
	d, ok := f.Args()[2].(decimal.Decimal)
	if !ok || !d.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected decimal threshold 0.5, got %v", f.Args()[2])
	}
}

func TestFilter_ContainsEscapesWildcards(t *testing.T) {
	f := NewFilter().Contains("c.name", strPtr("100%_a\\b"))

	if f.Clause() != `WHERE c.name ILIKE '%' || $1 || '%'` {
		t.Errorf("unexpected clause %q", f.Clause())
	}
	if got := f.Args()[0]; got != `100\%\_a\\b` {
		t.Errorf("expected escaped pattern, got %v", got)
	}
}

func TestQuarterOrdinal(t *testing.T) {
	got := quarterOrdinal("fr.fiscal_quarter")
	for _, q := range []string{"'Q1' THEN 1", "'Q2' THEN 2", "'Q3' THEN 3", "'Q4' THEN 4"} {
		if !strings.Contains(got, q) {
			t.Errorf("ordinal %q missing %s", got, q)
		}
	}
}

func TestReportColumns(t *testing.T) {
	cols := reportColumns("fr")
	if !strings.HasPrefix(cols, "fr.id, fr.company_id") {
		t.Errorf("unexpected columns %q", cols)
	}
	if n := strings.Count(cols, ","); n != 11 {
		t.Errorf("expected 12 columns, got %d", n+1)
	}
}
