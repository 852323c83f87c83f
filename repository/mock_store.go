package repository

import (
	"context"

	"github.com/google/uuid"

	"findata-mcp/models"
)

// MockStore is a Store whose methods delegate to the corresponding Func
// field. Unset fields return empty results. Used by tests of the layers
// above the repository.
type MockStore struct {
	GetCompanyByTickerFunc     func(ctx context.Context, ticker string) (*models.Company, error)
	GetCompaniesByTickersFunc  func(ctx context.Context, tickers []string) ([]models.Company, error)
	FindCompaniesByNameFunc    func(ctx context.Context, fragment string, limit int) ([]models.Company, error)
	SearchCompaniesFunc        func(ctx context.Context, f CompanyFilter) ([]models.Company, error)
	ScreenCompaniesFunc        func(ctx context.Context, f ScreenFilter) ([]models.CompanyFinancials, error)
	GetFinancialReportsFunc    func(ctx context.Context, q ReportQuery) ([]models.FinancialReport, error)
	GetReportsForCompaniesFunc func(ctx context.Context, ids []uuid.UUID) ([]models.FinancialReport, error)
	GetStockPricesFunc         func(ctx context.Context, q PriceQuery) ([]models.StockPrice, error)
	GetAnalystRatingsFunc      func(ctx context.Context, q RatingQuery) ([]models.AnalystRating, error)
	GetSectorStatsFunc         func(ctx context.Context, sector string) (models.SectorStats, error)
	HealthFunc                 func(ctx context.Context) error
}

func (m *MockStore) GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	if m.GetCompanyByTickerFunc != nil {
		return m.GetCompanyByTickerFunc(ctx, ticker)
	}
	return nil, nil
}

func (m *MockStore) GetCompaniesByTickers(ctx context.Context, tickers []string) ([]models.Company, error) {
	if m.GetCompaniesByTickersFunc != nil {
		return m.GetCompaniesByTickersFunc(ctx, tickers)
	}
	return nil, nil
}

func (m *MockStore) FindCompaniesByName(ctx context.Context, fragment string, limit int) ([]models.Company, error) {
	if m.FindCompaniesByNameFunc != nil {
		return m.FindCompaniesByNameFunc(ctx, fragment, limit)
	}
	return nil, nil
}

func (m *MockStore) SearchCompanies(ctx context.Context, f CompanyFilter) ([]models.Company, error) {
	if m.SearchCompaniesFunc != nil {
		return m.SearchCompaniesFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockStore) ScreenCompanies(ctx context.Context, f ScreenFilter) ([]models.CompanyFinancials, error) {
	if m.ScreenCompaniesFunc != nil {
		return m.ScreenCompaniesFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockStore) GetFinancialReports(ctx context.Context, q ReportQuery) ([]models.FinancialReport, error) {
	if m.GetFinancialReportsFunc != nil {
		return m.GetFinancialReportsFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockStore) GetReportsForCompanies(ctx context.Context, ids []uuid.UUID) ([]models.FinancialReport, error) {
	if m.GetReportsForCompaniesFunc != nil {
		return m.GetReportsForCompaniesFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockStore) GetStockPrices(ctx context.Context, q PriceQuery) ([]models.StockPrice, error) {
	if m.GetStockPricesFunc != nil {
		return m.GetStockPricesFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockStore) GetAnalystRatings(ctx context.Context, q RatingQuery) ([]models.AnalystRating, error) {
	if m.GetAnalystRatingsFunc != nil {
		return m.GetAnalystRatingsFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockStore) GetSectorStats(ctx context.Context, sector string) (models.SectorStats, error) {
	if m.GetSectorStatsFunc != nil {
		return m.GetSectorStatsFunc(ctx, sector)
	}
	return models.EmptySectorStats(sector), nil
}

func (m *MockStore) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

var (
	_ Store         = (*MockStore)(nil)
	_ HealthChecker = (*MockStore)(nil)
)
