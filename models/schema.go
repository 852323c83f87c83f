package models

import (
	"fmt"
	"strings"
)

// Column describes one column of a stored table
type Column struct {
	Name        string
	Type        string
	Nullable    bool
	Description string
}

// Table describes one stored entity
type Table struct {
	Name        string
	Description string
	Columns     []Column
	Constraints []string
}

// Schema lists the four read-only tables served by the tools, root first
var Schema = []Table{
	{
		Name:        "companies",
		Description: "Listed companies. Root entity referenced by every other table.",
		Columns: []Column{
			{"id", "uuid", false, "Primary key"},
			{"ticker", "varchar(10)", false, "Ticker symbol, unique regardless of case"},
			{"name", "text", false, "Company name"},
			{"sector", "text", true, "Sector, e.g. Technology"},
			{"industry", "text", true, "Industry, e.g. Software"},
			{"market_cap", "bigint", true, "Market capitalization in USD"},
			{"country", "text", true, "Country of incorporation"},
			{"founded_year", "integer", true, "Year founded"},
			{"ceo", "text", true, "Chief executive officer"},
			{"employee_count", "bigint", true, "Number of employees"},
			{"description", "text", true, "Business description"},
		},
		Constraints: []string{"UNIQUE (upper(ticker))"},
	},
	{
		Name:        "financial_reports",
		Description: "Quarterly results, one row per company per fiscal period.",
		Columns: []Column{
			{"id", "uuid", false, "Primary key"},
			{"company_id", "uuid", false, "References companies(id) ON DELETE CASCADE"},
			{"fiscal_year", "integer", false, "Fiscal year"},
			{"fiscal_quarter", "varchar(2)", false, "Q1, Q2, Q3 or Q4"},
			{"revenue", "numeric(20,2)", true, "Revenue in USD"},
			{"net_income", "numeric(20,2)", true, "Net income in USD"},
			{"eps", "numeric(12,4)", true, "Earnings per share in USD"},
			{"gross_margin", "numeric(8,4)", true, "Gross margin in percentage points"},
			{"operating_margin", "numeric(8,4)", true, "Operating margin in percentage points"},
			{"debt_to_equity", "numeric(12,4)", true, "Debt-to-equity ratio"},
			{"free_cash_flow", "numeric(20,2)", true, "Free cash flow in USD"},
			{"report_date", "date", true, "Filing date"},
		},
		Constraints: []string{
			"UNIQUE (company_id, fiscal_year, fiscal_quarter)",
			"CHECK (fiscal_quarter IN ('Q1','Q2','Q3','Q4'))",
		},
	},
	{
		Name:        "stock_prices",
		Description: "Daily OHLC bars, one row per company per calendar date.",
		Columns: []Column{
			{"id", "uuid", false, "Primary key"},
			{"company_id", "uuid", false, "References companies(id) ON DELETE CASCADE"},
			{"date", "date", false, "Trading date"},
			{"open", "numeric(14,4)", false, "Opening price"},
			{"high", "numeric(14,4)", false, "High price"},
			{"low", "numeric(14,4)", false, "Low price"},
			{"close", "numeric(14,4)", false, "Closing price"},
			{"volume", "bigint", false, "Shares traded"},
		},
		Constraints: []string{"UNIQUE (company_id, date)"},
	},
	{
		Name:        "analyst_ratings",
		Description: "Analyst ratings. A firm may rate the same company many times.",
		Columns: []Column{
			{"id", "uuid", false, "Primary key"},
			{"company_id", "uuid", false, "References companies(id) ON DELETE CASCADE"},
			{"analyst_firm", "text", false, "Research firm"},
			{"rating", "text", false, "Buy, Hold, Sell, Overweight or Underweight"},
			{"target_price", "numeric(14,4)", true, "Price target in USD"},
			{"previous_rating", "text", true, "Rating before this change"},
			{"rating_date", "date", false, "Date issued"},
		},
		Constraints: []string{"CHECK (rating IN ('Buy','Hold','Sell','Overweight','Underweight'))"},
	},
}

// LookupTable returns the schema entry with the given name
func LookupTable(name string) (Table, bool) {
	for _, t := range Schema {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Describe renders the table as plain text
func (t Table) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n%s\n\nColumns:\n", t.Name, t.Description)
	for _, c := range t.Columns {
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		fmt.Fprintf(&b, "  - %s %s %s: %s\n", c.Name, c.Type, null, c.Description)
	}
	if len(t.Constraints) > 0 {
		b.WriteString("\nConstraints:\n")
		for _, c := range t.Constraints {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	return b.String()
}
