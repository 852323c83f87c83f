// Package tools holds the tool catalog and the dispatcher that runs a call
// through validation, rate limiting, the query layer and formatting.
package tools

import (
	"fmt"

	"findata-mcp/models"
	"findata-mcp/validation"
)

// ParamType is a JSON schema primitive
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeArray   ParamType = "array"
)

// Param describes one tool argument
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required,omitempty"`
	Minimum     *float64  `json:"minimum,omitempty"`
	Maximum     *float64  `json:"maximum,omitempty"`
	MinItems    int       `json:"min_items,omitempty"`
	MaxItems    int       `json:"max_items,omitempty"`
	// ItemEnum restricts array elements
	ItemEnum []string `json:"item_enum,omitempty"`
}

// Definition is a tool as advertised to callers
type Definition struct {
	Name        models.ToolName `json:"name"`
	Description string          `json:"description"`
	Params      []Param         `json:"params"`
}

func bound(v float64) *float64 { return &v }

func metricNames() []string {
	out := make([]string, len(models.AllMetrics))
	for i, m := range models.AllMetrics {
		out[i] = string(m)
	}
	return out
}

var tickerParam = Param{
	Name:        "ticker",
	Type:        TypeString,
	Description: "Stock ticker symbol (e.g. AAPL), case-insensitive",
	Required:    true,
}

// Catalog lists every tool in a fixed order
var Catalog = []Definition{
	{
		Name:        models.ToolCompanyProfile,
		Description: "Fetch a full company profile by ticker symbol or partial company name. An ambiguous name returns every matching company.",
		Params: []Param{
			{Name: "identifier", Type: TypeString, Required: true, Description: "Ticker symbol (e.g. AAPL) or partial company name (e.g. Apple)"},
		},
	},
	{
		Name:        models.ToolSearchCompanies,
		Description: "Search companies by sector, industry, market cap range, or country. Every criterion is optional and they combine with AND.",
		Params: []Param{
			{Name: "sector", Type: TypeString, Description: "Sector, case-insensitive (e.g. Technology, Healthcare, Energy)"},
			{Name: "industry", Type: TypeString, Description: "Industry, case-insensitive"},
			{Name: "min_market_cap", Type: TypeInteger, Minimum: bound(0), Description: "Minimum market cap in USD"},
			{Name: "max_market_cap", Type: TypeInteger, Minimum: bound(0), Description: "Maximum market cap in USD"},
			{Name: "country", Type: TypeString, Description: "Country of incorporation, case-insensitive"},
		},
	},
	{
		Name:        models.ToolFinancialReport,
		Description: "Get quarterly financial reports for a company, newest first.",
		Params: []Param{
			tickerParam,
			{Name: "fiscal_year", Type: TypeInteger, Minimum: bound(1900), Maximum: bound(2100), Description: "Fiscal year (e.g. 2024)"},
			{Name: "fiscal_quarter", Type: TypeString, Description: "Fiscal quarter: Q1, Q2, Q3 or Q4 (case-insensitive)"},
		},
	},
	{
		Name:        models.ToolCompareCompanies,
		Description: "Compare 2-5 companies side by side on their latest reported quarter. Unknown tickers are listed separately.",
		Params: []Param{
			{Name: "tickers", Type: TypeArray, Required: true, MinItems: 2, MaxItems: 5, Description: `Ticker symbols to compare (e.g. ["AAPL", "MSFT"])`},
			{Name: "metrics", Type: TypeArray, ItemEnum: metricNames(), MinItems: 1, Description: "Metrics to compare. Defaults to all metrics."},
		},
	},
	{
		Name:        models.ToolPriceHistory,
		Description: "Get daily OHLC prices and volume for a stock, oldest first. Returns the most recent rows within the date range.",
		Params: []Param{
			tickerParam,
			{Name: "start_date", Type: TypeString, Description: "Inclusive start date (YYYY-MM-DD)"},
			{Name: "end_date", Type: TypeString, Description: "Inclusive end date (YYYY-MM-DD)"},
			{Name: "limit", Type: TypeInteger, Minimum: bound(1), Description: fmt.Sprintf("Maximum number of rows (default %d, larger values are capped at %d)", validation.DefaultLimit, validation.MaxLimit)},
		},
	},
	{
		Name:        models.ToolScreenStocks,
		Description: "Screen companies on their latest financial report. Companies without reports never match.",
		Params: []Param{
			{Name: "min_revenue", Type: TypeNumber, Minimum: bound(0), Description: "Minimum quarterly revenue in USD"},
			{Name: "min_eps", Type: TypeNumber, Description: "Minimum earnings per share"},
			{Name: "min_gross_margin", Type: TypeNumber, Minimum: bound(0), Maximum: bound(100), Description: "Minimum gross margin in percent"},
			{Name: "max_debt_to_equity", Type: TypeNumber, Minimum: bound(0), Description: "Maximum debt-to-equity ratio"},
			{Name: "sector", Type: TypeString, Description: "Restrict to a sector, case-insensitive"},
		},
	},
	{
		Name:        models.ToolAnalystRatings,
		Description: "Get the latest analyst ratings and the consensus score for a company.",
		Params: []Param{
			tickerParam,
			{Name: "firm", Type: TypeString, Description: "Filter by analyst firm name (partial match)"},
		},
	},
	{
		Name:        models.ToolSectorOverview,
		Description: "Get aggregate statistics for a sector: company count, average market cap, total revenue, average operating margin and average analyst score.",
		Params: []Param{
			{Name: "sector", Type: TypeString, Required: true, Description: "Sector name (e.g. Technology, Healthcare, Energy)"},
		},
	},
}

// Lookup returns the definition of a tool
func Lookup(name models.ToolName) (Definition, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// InputSchema renders the parameters as a JSON schema object
func (d Definition) InputSchema() map[string]any {
	props := make(map[string]any, len(d.Params))
	required := []string{}
	for _, p := range d.Params {
		props[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (p Param) schema() map[string]any {
	s := map[string]any{
		"type":        string(p.Type),
		"description": p.Description,
	}
	if p.Minimum != nil {
		s["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		s["maximum"] = *p.Maximum
	}
	if p.Type == TypeArray {
		items := map[string]any{"type": "string"}
		if len(p.ItemEnum) > 0 {
			items["enum"] = p.ItemEnum
		}
		s["items"] = items
		if p.MinItems > 0 {
			s["minItems"] = p.MinItems
		}
		if p.MaxItems > 0 {
			s["maxItems"] = p.MaxItems
		}
	}
	return s
}
