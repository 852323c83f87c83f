package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"findata-mcp/models"
	"findata-mcp/observability"
)

// companyColumns selects a company row aliased as c. Nullable text columns
// are coalesced so they scan into plain strings.
const companyColumns = `c.id, c.ticker, c.name, COALESCE(c.sector, ''), COALESCE(c.industry, ''),
	c.market_cap, COALESCE(c.country, ''), c.founded_year, COALESCE(c.ceo, ''),
	c.employee_count, COALESCE(c.description, '')`

func companyDest(c *models.Company) []any {
	return []any{
		&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.Industry,
		&c.MarketCap, &c.Country, &c.FoundedYear, &c.CEO,
		&c.EmployeeCount, &c.Description,
	}
}

// CompanyFilter holds the optional search criteria. Nil fields add no predicate.
type CompanyFilter struct {
	Sector       *string
	Industry     *string
	Country      *string
	MinMarketCap *int64
	MaxMarketCap *int64
}

// Apply adds the provided criteria to f
func (cf CompanyFilter) Apply(f *Filter) *Filter {
	return f.
		EqualFold("c.sector", cf.Sector).
		EqualFold("c.industry", cf.Industry).
		EqualFold("c.country", cf.Country).
		AtLeast("c.market_cap", cf.MinMarketCap).
		AtMost("c.market_cap", cf.MaxMarketCap)
}

// ScreenFilter holds thresholds applied to each company's latest report
type ScreenFilter struct {
	Sector          *string
	MinRevenue      *float64
	MinEPS          *float64
	MinGrossMargin  *float64
	MaxDebtToEquity *float64
}

// Apply adds the provided criteria to f. A NULL metric never satisfies
// its threshold.
func (sf ScreenFilter) Apply(f *Filter) *Filter {
	f.EqualFold("c.sector", sf.Sector)
	if sf.MinRevenue != nil {
		f.Where("fr.revenue >= %s::numeric", decimal.NewFromFloat(*sf.MinRevenue))
	}
	if sf.MinEPS != nil {
		f.Where("fr.eps >= %s::numeric", decimal.NewFromFloat(*sf.MinEPS))
	}
	if sf.MinGrossMargin != nil {
		f.Where("fr.gross_margin >= %s::numeric", decimal.NewFromFloat(*sf.MinGrossMargin))
	}
	if sf.MaxDebtToEquity != nil {
		f.Where("fr.debt_to_equity <= %s::numeric", decimal.NewFromFloat(*sf.MaxDebtToEquity))
	}
	return f
}

// GetCompanyByTicker returns the company with the given ticker, or nil
func (r *Repository) GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "companies")

	var c models.Company
	err := r.db.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies c
		WHERE upper(c.ticker) = $1
	`, models.NormalizeTicker(ticker)).Scan(companyDest(&c)...)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		metrics.RecordDBError("select", "companies")
		return nil, fmt.Errorf("failed to get company %s: %w", ticker, err)
	}

	return &c, nil
}

// GetCompaniesByTickers returns the companies matching any of the tickers.
// Order is unspecified; callers index the result by ticker.
func (r *Repository) GetCompaniesByTickers(ctx context.Context, tickers []string) ([]models.Company, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "companies")

	normalized := make([]string, len(tickers))
	for i, t := range tickers {
		normalized[i] = models.NormalizeTicker(t)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies c
		WHERE upper(c.ticker) = ANY($1)
	`, normalized)
	if err != nil {
		metrics.RecordDBError("select", "companies")
		return nil, fmt.Errorf("failed to get companies: %w", err)
	}

	return collectCompanies(rows, metrics)
}

// FindCompaniesByName returns companies whose name contains the fragment,
// case-insensitively, ordered by name then ticker.
func (r *Repository) FindCompaniesByName(ctx context.Context, fragment string, limit int) ([]models.Company, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "companies")

	fragment = strings.TrimSpace(fragment)
	f := NewFilter().Contains("c.name", &fragment)
	limitParam := f.Bind(limit)

	rows, err := r.db.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies c
		`+f.Clause()+`
		ORDER BY c.name, c.ticker
		LIMIT `+limitParam, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "companies")
		return nil, fmt.Errorf("failed to search companies by name: %w", err)
	}

	return collectCompanies(rows, metrics)
}

// SearchCompanies returns the companies matching every provided criterion
func (r *Repository) SearchCompanies(ctx context.Context, cf CompanyFilter) ([]models.Company, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "companies")

	f := cf.Apply(NewFilter())

	rows, err := r.db.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies c
		`+f.Clause()+`
		ORDER BY c.name, c.ticker
	`, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "companies")
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}

	return collectCompanies(rows, metrics)
}

// ScreenCompanies returns companies whose latest report satisfies every
// threshold. Companies without any report are excluded.
func (r *Repository) ScreenCompanies(ctx context.Context, sf ScreenFilter) ([]models.CompanyFinancials, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "financial_reports")

	f := sf.Apply(NewFilter())

	rows, err := r.db.Query(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (company_id) *
			FROM financial_reports
			ORDER BY company_id, fiscal_year DESC, `+quarterOrdinal("fiscal_quarter")+` DESC
		)
		SELECT `+companyColumns+`, `+reportColumns("fr")+`
		FROM companies c
		JOIN latest fr ON fr.company_id = c.id
		`+f.Clause()+`
		ORDER BY c.name, c.ticker
	`, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "financial_reports")
		return nil, fmt.Errorf("failed to screen companies: %w", err)
	}
	defer rows.Close()

	var results []models.CompanyFinancials
	for rows.Next() {
		var (
			c  models.Company
			fr models.FinancialReport
		)
		if err := rows.Scan(append(companyDest(&c), reportDest(&fr)...)...); err != nil {
			metrics.RecordDBError("scan", "financial_reports")
			return nil, fmt.Errorf("failed to scan screen row: %w", err)
		}
		results = append(results, models.CompanyFinancials{Company: c, Latest: &fr})
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError("select", "financial_reports")
		return nil, fmt.Errorf("failed to iterate screen rows: %w", err)
	}

	return results, nil
}

func collectCompanies(rows pgx.Rows, metrics *observability.Metrics) ([]models.Company, error) {
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(companyDest(&c)...); err != nil {
			metrics.RecordDBError("scan", "companies")
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError("select", "companies")
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return companies, nil
}
