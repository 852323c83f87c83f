package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FiscalQuarter is one of Q1..Q4
type FiscalQuarter string

const (
	Q1 FiscalQuarter = "Q1"
	Q2 FiscalQuarter = "Q2"
	Q3 FiscalQuarter = "Q3"
	Q4 FiscalQuarter = "Q4"
)

// Quarters lists the fiscal quarters in chronological order
var Quarters = []FiscalQuarter{Q1, Q2, Q3, Q4}

// ParseQuarter normalizes a case-insensitive quarter label
func ParseQuarter(s string) (FiscalQuarter, bool) {
	q := FiscalQuarter(strings.ToUpper(strings.TrimSpace(s)))
	return q, q.Ordinal() > 0
}

// Ordinal returns 1..4 for a valid quarter and 0 otherwise
func (q FiscalQuarter) Ordinal() int {
	switch q {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	default:
		return 0
	}
}

// FinancialReport holds one fiscal period's results for a company
type FinancialReport struct {
	ID              uuid.UUID           `json:"id"`
	CompanyID       uuid.UUID           `json:"company_id"`
	FiscalYear      int                 `json:"fiscal_year"`
	FiscalQuarter   FiscalQuarter       `json:"fiscal_quarter"`
	Revenue         decimal.NullDecimal `json:"revenue"`
	NetIncome       decimal.NullDecimal `json:"net_income"`
	EPS             decimal.NullDecimal `json:"eps"`
	GrossMargin     decimal.NullDecimal `json:"gross_margin"`
	OperatingMargin decimal.NullDecimal `json:"operating_margin"`
	DebtToEquity    decimal.NullDecimal `json:"debt_to_equity"`
	FreeCashFlow    decimal.NullDecimal `json:"free_cash_flow"`
	ReportDate      *time.Time          `json:"report_date"`
}

// Value returns the report's value for a comparison metric
func (r *FinancialReport) Value(m Metric) decimal.NullDecimal {
	switch m {
	case MetricRevenue:
		return r.Revenue
	case MetricNetIncome:
		return r.NetIncome
	case MetricEPS:
		return r.EPS
	case MetricGrossMargin:
		return r.GrossMargin
	case MetricOperatingMargin:
		return r.OperatingMargin
	case MetricDebtToEquity:
		return r.DebtToEquity
	case MetricFreeCashFlow:
		return r.FreeCashFlow
	default:
		return decimal.NullDecimal{}
	}
}

// CompareFiscalPeriod orders two reports by (fiscal_year, quarter ordinal).
// It returns a negative number when a precedes b, zero when they cover the
// same period and a positive number otherwise.
func CompareFiscalPeriod(a, b *FinancialReport) int {
	if a.FiscalYear != b.FiscalYear {
		if a.FiscalYear < b.FiscalYear {
			return -1
		}
		return 1
	}
	return a.FiscalQuarter.Ordinal() - b.FiscalQuarter.Ordinal()
}

// LatestReport returns the report covering the greatest fiscal period, or nil
func LatestReport(reports []FinancialReport) *FinancialReport {
	var latest *FinancialReport
	for i := range reports {
		if latest == nil || CompareFiscalPeriod(&reports[i], latest) > 0 {
			latest = &reports[i]
		}
	}
	return latest
}

// CompanyFinancials pairs a company with its latest report, if any
type CompanyFinancials struct {
	Company Company          `json:"company"`
	Latest  *FinancialReport `json:"latest_report"`
}
