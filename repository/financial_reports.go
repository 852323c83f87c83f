package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"findata-mcp/models"
	"findata-mcp/observability"
)

// MaxReports bounds a single company's report listing
const MaxReports = 12

// quarterOrdinal maps a quarter label column to 1..4 so ordering never
// depends on text collation.
func quarterOrdinal(column string) string {
	return "CASE " + column + " WHEN 'Q1' THEN 1 WHEN 'Q2' THEN 2 WHEN 'Q3' THEN 3 WHEN 'Q4' THEN 4 END"
}

func reportColumns(alias string) string {
	cols := []string{
		"id", "company_id", "fiscal_year", "fiscal_quarter", "revenue", "net_income", "eps",
		"gross_margin", "operating_margin", "debt_to_equity", "free_cash_flow", "report_date",
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func reportDest(fr *models.FinancialReport) []any {
	return []any{
		&fr.ID, &fr.CompanyID, &fr.FiscalYear, &fr.FiscalQuarter, &fr.Revenue, &fr.NetIncome, &fr.EPS,
		&fr.GrossMargin, &fr.OperatingMargin, &fr.DebtToEquity, &fr.FreeCashFlow, &fr.ReportDate,
	}
}

// ReportQuery selects one company's reports, optionally narrowed to a
// fiscal year and quarter.
type ReportQuery struct {
	CompanyID     uuid.UUID
	FiscalYear    *int
	FiscalQuarter *models.FiscalQuarter
	Limit         int
}

// GetFinancialReports returns reports newest period first
func (r *Repository) GetFinancialReports(ctx context.Context, q ReportQuery) ([]models.FinancialReport, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "financial_reports")

	limit := q.Limit
	if limit <= 0 || limit > MaxReports {
		limit = MaxReports
	}

	f := NewFilter().Where("fr.company_id = %s", q.CompanyID)
	if q.FiscalYear != nil {
		f.Where("fr.fiscal_year = %s", *q.FiscalYear)
	}
	if q.FiscalQuarter != nil {
		f.Where("fr.fiscal_quarter = %s", string(*q.FiscalQuarter))
	}
	limitParam := f.Bind(limit)

	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns("fr")+`
		FROM financial_reports fr
		`+f.Clause()+`
		ORDER BY fr.fiscal_year DESC, `+quarterOrdinal("fr.fiscal_quarter")+` DESC
		LIMIT `+limitParam, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "financial_reports")
		return nil, fmt.Errorf("failed to get financial reports: %w", err)
	}

	return collectReports(rows, metrics)
}

// GetReportsForCompanies returns every report of the given companies in one
// round trip. Callers pick each company's latest with models.LatestReport.
func (r *Repository) GetReportsForCompanies(ctx context.Context, companyIDs []uuid.UUID) ([]models.FinancialReport, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	if len(companyIDs) == 0 {
		return nil, nil
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "financial_reports")

	ids := make([]string, len(companyIDs))
	for i, id := range companyIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns("fr")+`
		FROM financial_reports fr
		WHERE fr.company_id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		metrics.RecordDBError("select", "financial_reports")
		return nil, fmt.Errorf("failed to get reports for companies: %w", err)
	}

	return collectReports(rows, metrics)
}

func collectReports(rows pgx.Rows, metrics *observability.Metrics) ([]models.FinancialReport, error) {
	defer rows.Close()

	var reports []models.FinancialReport
	for rows.Next() {
		var fr models.FinancialReport
		if err := rows.Scan(reportDest(&fr)...); err != nil {
			metrics.RecordDBError("scan", "financial_reports")
			return nil, fmt.Errorf("failed to scan financial report: %w", err)
		}
		reports = append(reports, fr)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError("select", "financial_reports")
		return nil, fmt.Errorf("failed to iterate financial reports: %w", err)
	}

	return reports, nil
}
