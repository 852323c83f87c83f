package repository

import (
	"context"

	"github.com/google/uuid"

	"findata-mcp/models"
)

// Store defines the read operations the query layer needs
type Store interface {
	// Companies
	GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error)
	GetCompaniesByTickers(ctx context.Context, tickers []string) ([]models.Company, error)
	FindCompaniesByName(ctx context.Context, fragment string, limit int) ([]models.Company, error)
	SearchCompanies(ctx context.Context, f CompanyFilter) ([]models.Company, error)
	ScreenCompanies(ctx context.Context, f ScreenFilter) ([]models.CompanyFinancials, error)

	// Financial reports
	GetFinancialReports(ctx context.Context, q ReportQuery) ([]models.FinancialReport, error)
	GetReportsForCompanies(ctx context.Context, companyIDs []uuid.UUID) ([]models.FinancialReport, error)

	// Market data
	GetStockPrices(ctx context.Context, q PriceQuery) ([]models.StockPrice, error)
	GetAnalystRatings(ctx context.Context, q RatingQuery) ([]models.AnalystRating, error)

	// Aggregates
	GetSectorStats(ctx context.Context, sector string) (models.SectorStats, error)
}

// HealthChecker reports store connectivity
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Compile-time interface verification
var (
	_ Store         = (*Repository)(nil)
	_ HealthChecker = (*Repository)(nil)
)
