package models

// ToolName identifies one of the fixed lookup operations
type ToolName string

const (
	ToolCompanyProfile   ToolName = "get_company_profile"
	ToolSearchCompanies  ToolName = "search_companies"
	ToolFinancialReport  ToolName = "get_financial_report"
	ToolCompareCompanies ToolName = "compare_companies"
	ToolPriceHistory     ToolName = "get_stock_price_history"
	ToolScreenStocks     ToolName = "screen_stocks"
	ToolAnalystRatings   ToolName = "get_analyst_ratings"
	ToolSectorOverview   ToolName = "get_sector_overview"
)

// ToolNames lists every tool in catalog order
var ToolNames = []ToolName{
	ToolCompanyProfile,
	ToolSearchCompanies,
	ToolFinancialReport,
	ToolCompareCompanies,
	ToolPriceHistory,
	ToolScreenStocks,
	ToolAnalystRatings,
	ToolSectorOverview,
}

// IsValid reports whether t names a known tool
func (t ToolName) IsValid() bool {
	for _, n := range ToolNames {
		if n == t {
			return true
		}
	}
	return false
}
