package validation

import (
	"time"

	"findata-mcp/models"
)

// DefaultLimit and MaxLimit bound price history responses
const (
	DefaultLimit = 30
	MaxLimit     = 365
)

// Args is a validated, normalized argument bundle for exactly one tool.
// The set of implementations is closed; callers switch on the concrete type.
type Args interface {
	Tool() models.ToolName
	isArgs()
}

// ProfileArgs is the bundle for get_company_profile
type ProfileArgs struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	// ByTicker is set when the identifier should first be tried as a ticker
	ByTicker bool `json:"-"`
}

// SearchArgs is the bundle for search_companies
type SearchArgs struct {
	Sector       *string `json:"sector" validate:"omitempty,min=1,max=255"`
	Industry     *string `json:"industry" validate:"omitempty,min=1,max=255"`
	MinMarketCap *int64  `json:"min_market_cap" validate:"omitempty,min=0"`
	MaxMarketCap *int64  `json:"max_market_cap" validate:"omitempty,min=0"`
	Country      *string `json:"country" validate:"omitempty,min=1,max=255"`
}

// ReportArgs is the bundle for get_financial_report
type ReportArgs struct {
	Ticker        string                `json:"ticker" validate:"required,ticker"`
	FiscalYear    *int                  `json:"fiscal_year" validate:"omitempty,min=1900,max=2100"`
	FiscalQuarter *models.FiscalQuarter `json:"fiscal_quarter" validate:"omitempty,quarter"`
}

// CompareArgs is the bundle for compare_companies
type CompareArgs struct {
	Tickers []string        `json:"tickers" validate:"required,min=2,max=5,unique,dive,ticker"`
	Metrics []models.Metric `json:"metrics" validate:"omitempty,min=1,unique,dive,metric"`
}

// PriceHistoryArgs is the bundle for get_stock_price_history
type PriceHistoryArgs struct {
	Ticker    string     `json:"ticker" validate:"required,ticker"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit" validate:"min=1"`
}

// ScreenArgs is the bundle for screen_stocks. Margins are percentage points.
type ScreenArgs struct {
	MinRevenue      *float64 `json:"min_revenue" validate:"omitempty,min=0"`
	MinEPS          *float64 `json:"min_eps"`
	MinGrossMargin  *float64 `json:"min_gross_margin" validate:"omitempty,min=0,max=100"`
	MaxDebtToEquity *float64 `json:"max_debt_to_equity" validate:"omitempty,min=0"`
	Sector          *string  `json:"sector" validate:"omitempty,min=1,max=255"`
}

// RatingsArgs is the bundle for get_analyst_ratings
type RatingsArgs struct {
	Ticker string  `json:"ticker" validate:"required,ticker"`
	Firm   *string `json:"firm" validate:"omitempty,min=1,max=255"`
}

// SectorArgs is the bundle for get_sector_overview
type SectorArgs struct {
	Sector string `json:"sector" validate:"required,max=255"`
}

func (ProfileArgs) Tool() models.ToolName      { return models.ToolCompanyProfile }
func (SearchArgs) Tool() models.ToolName       { return models.ToolSearchCompanies }
func (ReportArgs) Tool() models.ToolName       { return models.ToolFinancialReport }
func (CompareArgs) Tool() models.ToolName      { return models.ToolCompareCompanies }
func (PriceHistoryArgs) Tool() models.ToolName { return models.ToolPriceHistory }
func (ScreenArgs) Tool() models.ToolName       { return models.ToolScreenStocks }
func (RatingsArgs) Tool() models.ToolName      { return models.ToolAnalystRatings }
func (SectorArgs) Tool() models.ToolName       { return models.ToolSectorOverview }

func (ProfileArgs) isArgs()      {}
func (SearchArgs) isArgs()       {}
func (ReportArgs) isArgs()       {}
func (CompareArgs) isArgs()      {}
func (PriceHistoryArgs) isArgs() {}
func (ScreenArgs) isArgs()       {}
func (RatingsArgs) isArgs()      {}
func (SectorArgs) isArgs()       {}
