// Package query turns validated argument bundles into store reads.
package query

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"findata-mcp/internal/apperr"
	"findata-mcp/models"
	"findata-mcp/repository"
	"findata-mcp/services"
	"findata-mcp/validation"
)

// MaxMatches bounds the disambiguation list of a name search
const MaxMatches = 25

// Service answers one tool call per method
type Service struct {
	store    repository.Store
	breakers *services.CircuitBreakerRegistry
}

// NewService creates a query service. A nil registry runs store calls
// unguarded.
func NewService(store repository.Store, breakers *services.CircuitBreakerRegistry) *Service {
	return &Service{store: store, breakers: breakers}
}

// guarded runs a store call through the store circuit breaker
func guarded[T any](ctx context.Context, s *Service, fn func() (T, error)) (T, error) {
	if s.breakers == nil {
		return fn()
	}
	return services.WithCircuitBreaker(ctx, s.breakers, services.BreakerStore, fn)
}

// Resolution is the outcome of resolving an identifier. Exactly one of
// Company and Matches is set.
type Resolution struct {
	Company *models.Company  `json:"company,omitempty"`
	Matches []models.Company `json:"matches,omitempty"`
}

// Ambiguous reports whether the identifier matched several companies
func (r Resolution) Ambiguous() bool {
	return r.Company == nil && len(r.Matches) > 0
}

// resolve looks up an exact ticker first when byTicker is set, then falls
// back to a case-insensitive name substring. Zero matches is NotFound.
func (s *Service) resolve(ctx context.Context, identifier string, byTicker bool) (Resolution, error) {
	if byTicker {
		c, err := guarded(ctx, s, func() (*models.Company, error) {
			return s.store.GetCompanyByTicker(ctx, identifier)
		})
		if err != nil {
			return Resolution{}, err
		}
		if c != nil {
			return Resolution{Company: c}, nil
		}
	}

	matches, err := guarded(ctx, s, func() ([]models.Company, error) {
		return s.store.FindCompaniesByName(ctx, identifier, MaxMatches)
	})
	if err != nil {
		return Resolution{}, err
	}

	switch len(matches) {
	case 0:
		return Resolution{}, &apperr.NotFoundError{Identifier: identifier}
	case 1:
		return Resolution{Company: &matches[0]}, nil
	default:
		return Resolution{Matches: matches}, nil
	}
}

// CompanyProfile returns one company or the candidates for an ambiguous name
func (s *Service) CompanyProfile(ctx context.Context, a validation.ProfileArgs) (Resolution, error) {
	return s.resolve(ctx, a.Identifier, a.ByTicker)
}

// SearchCompanies returns every company matching the provided criteria
func (s *Service) SearchCompanies(ctx context.Context, a validation.SearchArgs) ([]models.Company, error) {
	return guarded(ctx, s, func() ([]models.Company, error) {
		return s.store.SearchCompanies(ctx, repository.CompanyFilter{
			Sector:       a.Sector,
			Industry:     a.Industry,
			Country:      a.Country,
			MinMarketCap: a.MinMarketCap,
			MaxMarketCap: a.MaxMarketCap,
		})
	})
}

// ReportResult holds a company's reports, newest period first
type ReportResult struct {
	Resolution
	Reports []models.FinancialReport `json:"reports"`
}

// FinancialReports returns the reports for a ticker, optionally narrowed
// to a fiscal year and quarter.
func (s *Service) FinancialReports(ctx context.Context, a validation.ReportArgs) (ReportResult, error) {
	res, err := s.resolve(ctx, a.Ticker, true)
	if err != nil || res.Ambiguous() {
		return ReportResult{Resolution: res}, err
	}

	reports, err := guarded(ctx, s, func() ([]models.FinancialReport, error) {
		return s.store.GetFinancialReports(ctx, repository.ReportQuery{
			CompanyID:     res.Company.ID,
			FiscalYear:    a.FiscalYear,
			FiscalQuarter: a.FiscalQuarter,
			Limit:         repository.MaxReports,
		})
	})
	if err != nil {
		return ReportResult{}, err
	}

	return ReportResult{Resolution: res, Reports: reports}, nil
}

// Comparison holds the latest report of each resolved company in request
// order, restricted to the requested metrics.
type Comparison struct {
	Metrics    []models.Metric            `json:"metrics"`
	Companies  []models.CompanyFinancials `json:"companies"`
	Unresolved []string                   `json:"unresolved,omitempty"`
}

// CompareCompanies resolves each ticker exactly. Unknown tickers are
// reported alongside the rest; if none resolve the call is NotFound.
func (s *Service) CompareCompanies(ctx context.Context, a validation.CompareArgs) (Comparison, error) {
	companies, err := guarded(ctx, s, func() ([]models.Company, error) {
		return s.store.GetCompaniesByTickers(ctx, a.Tickers)
	})
	if err != nil {
		return Comparison{}, err
	}

	byTicker := make(map[string]models.Company, len(companies))
	for _, c := range companies {
		byTicker[models.NormalizeTicker(c.Ticker)] = c
	}

	cmp := Comparison{Metrics: a.Metrics}
	var ids []uuid.UUID
	for _, t := range a.Tickers {
		c, ok := byTicker[models.NormalizeTicker(t)]
		if !ok {
			cmp.Unresolved = append(cmp.Unresolved, t)
			continue
		}
		cmp.Companies = append(cmp.Companies, models.CompanyFinancials{Company: c})
		ids = append(ids, c.ID)
	}

	if len(cmp.Companies) == 0 {
		return Comparison{}, &apperr.NotFoundError{Identifier: strings.Join(a.Tickers, ", ")}
	}

	reports, err := guarded(ctx, s, func() ([]models.FinancialReport, error) {
		return s.store.GetReportsForCompanies(ctx, ids)
	})
	if err != nil {
		return Comparison{}, err
	}

	perCompany := make(map[uuid.UUID][]models.FinancialReport)
	for _, r := range reports {
		perCompany[r.CompanyID] = append(perCompany[r.CompanyID], r)
	}
	for i := range cmp.Companies {
		cmp.Companies[i].Latest = models.LatestReport(perCompany[cmp.Companies[i].Company.ID])
	}

	return cmp, nil
}

// PriceHistoryResult holds daily bars in ascending date order
type PriceHistoryResult struct {
	Resolution
	Prices []models.StockPrice `json:"prices"`
}

// PriceHistory returns the most recent Limit bars within the range
func (s *Service) PriceHistory(ctx context.Context, a validation.PriceHistoryArgs) (PriceHistoryResult, error) {
	res, err := s.resolve(ctx, a.Ticker, true)
	if err != nil || res.Ambiguous() {
		return PriceHistoryResult{Resolution: res}, err
	}

	prices, err := guarded(ctx, s, func() ([]models.StockPrice, error) {
		return s.store.GetStockPrices(ctx, repository.PriceQuery{
			CompanyID: res.Company.ID,
			Start:     a.StartDate,
			End:       a.EndDate,
			Limit:     a.Limit,
		})
	})
	if err != nil {
		return PriceHistoryResult{}, err
	}

	return PriceHistoryResult{Resolution: res, Prices: prices}, nil
}

// ScreenStocks returns companies whose latest report meets every threshold
func (s *Service) ScreenStocks(ctx context.Context, a validation.ScreenArgs) ([]models.CompanyFinancials, error) {
	return guarded(ctx, s, func() ([]models.CompanyFinancials, error) {
		return s.store.ScreenCompanies(ctx, repository.ScreenFilter{
			Sector:          a.Sector,
			MinRevenue:      a.MinRevenue,
			MinEPS:          a.MinEPS,
			MinGrossMargin:  a.MinGrossMargin,
			MaxDebtToEquity: a.MaxDebtToEquity,
		})
	})
}

// RatingsResult holds ratings newest first plus their consensus
type RatingsResult struct {
	Resolution
	Ratings   []models.AnalystRating `json:"ratings"`
	Consensus *float64               `json:"consensus,omitempty"`
}

// AnalystRatings returns a company's ratings, optionally by firm
func (s *Service) AnalystRatings(ctx context.Context, a validation.RatingsArgs) (RatingsResult, error) {
	res, err := s.resolve(ctx, a.Ticker, true)
	if err != nil || res.Ambiguous() {
		return RatingsResult{Resolution: res}, err
	}

	ratings, err := guarded(ctx, s, func() ([]models.AnalystRating, error) {
		return s.store.GetAnalystRatings(ctx, repository.RatingQuery{
			CompanyID: res.Company.ID,
			Firm:      a.Firm,
			Limit:     repository.MaxRatings,
		})
	})
	if err != nil {
		return RatingsResult{}, err
	}

	out := RatingsResult{Resolution: res, Ratings: ratings}
	if score, ok := models.ConsensusScore(ratings); ok {
		f := score.InexactFloat64()
		out.Consensus = &f
	}
	return out, nil
}

// SectorOverview returns aggregate stats; an unknown sector is not an error
func (s *Service) SectorOverview(ctx context.Context, a validation.SectorArgs) (models.SectorStats, error) {
	return guarded(ctx, s, func() (models.SectorStats, error) {
		return s.store.GetSectorStats(ctx, a.Sector)
	})
}
