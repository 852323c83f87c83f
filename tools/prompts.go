package tools

import (
	"fmt"
	"strings"
)

// PromptArg is a named prompt parameter
type PromptArg struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Prompt is a reusable analysis template that walks a model through the tools
type Prompt struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Args        []PromptArg `json:"arguments"`
	render      func(args map[string]string) string
}

// Render fills the template. Required arguments must be non-blank.
func (p Prompt) Render(args map[string]string) (string, error) {
	clean := make(map[string]string, len(p.Args))
	for _, a := range p.Args {
		v := strings.TrimSpace(args[a.Name])
		if v == "" && a.Required {
			return "", fmt.Errorf("prompt %s: argument %q is required", p.Name, a.Name)
		}
		clean[a.Name] = v
	}
	return p.render(clean), nil
}

// Prompts lists the available templates
var Prompts = []Prompt{
	{
		Name:        "financial_analysis",
		Description: "Comprehensive financial analysis of a single company",
		Args:        []PromptArg{{Name: "ticker", Description: "Stock ticker symbol (e.g. AAPL)", Required: true}},
		render: func(args map[string]string) string {
			t := strings.ToUpper(args["ticker"])
			return fmt.Sprintf(`Please perform a comprehensive financial analysis of %[1]s. Follow these steps:

1. Use get_company_profile to get basic company information for %[1]s
2. Use get_financial_report to retrieve recent quarterly reports
3. Use get_stock_price_history to check recent price trends
4. Use get_analyst_ratings to see Wall Street consensus

Then provide:
- Company overview and market position
- Revenue and profitability trend analysis
- Stock price momentum assessment
- Analyst sentiment summary
- Overall investment thesis (bull and bear case)`, t)
		},
	},
	{
		Name:        "sector_comparison",
		Description: "Sector health review and comparison of its leading companies",
		Args:        []PromptArg{{Name: "sector", Description: "Sector name (e.g. Technology)", Required: true}},
		render: func(args map[string]string) string {
			return fmt.Sprintf(`Please analyze the %[1]s sector. Follow these steps:

1. Use get_sector_overview to get aggregate sector statistics for '%[1]s'
2. Use search_companies with sector='%[1]s' to list all companies
3. Use screen_stocks with sector='%[1]s' to find top performers
4. Pick the top 3 companies by market cap and use compare_companies

Then provide:
- Sector health overview
- Top companies and their competitive positioning
- Key financial metrics comparison
- Investment recommendations within the sector`, args["sector"])
		},
	},
}

// LookupPrompt returns the template with the given name
func LookupPrompt(name string) (Prompt, bool) {
	for _, p := range Prompts {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}
