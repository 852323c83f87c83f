package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"findata-mcp/models"
)

const banner = "=================================================="

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NA
	}
	return s
}

func datePtr(t *time.Time) string {
	if t == nil {
		return NA
	}
	return t.Format(time.DateOnly)
}

// CompanyProfile renders a single company
func CompanyProfile(c models.Company) string {
	founded := NA
	if c.FoundedYear != nil {
		founded = strconv.Itoa(*c.FoundedYear)
	}
	description := c.Description
	if strings.TrimSpace(description) == "" {
		description = "No description available."
	}

	lines := []string{
		banner,
		fmt.Sprintf("  %s (%s)", c.Name, c.Ticker),
		banner,
		"  Sector:        " + orNA(c.Sector),
		"  Industry:      " + orNA(c.Industry),
		"  Market Cap:    " + CurrencyInt(c.MarketCap),
		"  Country:       " + orNA(c.Country),
		"  CEO:           " + orNA(c.CEO),
		"  Founded:       " + founded,
		"  Employees:     " + NumberPtr(c.EmployeeCount),
		"",
		"  Description:",
		"  " + description,
		banner,
	}
	return strings.Join(lines, "\n")
}

// Disambiguation lists the companies an identifier matched
func Disambiguation(identifier string, matches []models.Company) string {
	return fmt.Sprintf("%d companies match %q. Refine the query with one of these tickers:\n\n%s",
		len(matches), identifier, companyTable(matches))
}

// CompanyList renders search results
func CompanyList(companies []models.Company) string {
	if len(companies) == 0 {
		return "No companies found matching your criteria."
	}
	return fmt.Sprintf("Found %d %s:\n\n%s", len(companies), plural(len(companies), "company", "companies"), companyTable(companies))
}

func companyTable(companies []models.Company) string {
	t := NewTable(
		Column{Header: "Ticker"},
		Column{Header: "Name"},
		Column{Header: "Sector"},
		Column{Header: "Industry"},
		Column{Header: "Country"},
		Column{Header: "Market Cap", Align: Right},
	)
	for _, c := range companies {
		t.AddRow(c.Ticker, c.Name, orNA(c.Sector), orNA(c.Industry), orNA(c.Country), CurrencyInt(c.MarketCap))
	}
	return t.String()
}

// FinancialReports renders one block per report, newest first
func FinancialReports(c models.Company, reports []models.FinancialReport) string {
	if len(reports) == 0 {
		return fmt.Sprintf("No financial reports found for %s (%s).", c.Name, c.Ticker)
	}

	blocks := make([]string, len(reports))
	for i := range reports {
		blocks[i] = financialReport(c, &reports[i])
	}
	return strings.Join(blocks, "\n\n")
}

func financialReport(c models.Company, r *models.FinancialReport) string {
	lines := []string{
		fmt.Sprintf("--- %s | FY%d %s ---", c.Name, r.FiscalYear, r.FiscalQuarter),
	}
	for _, m := range models.AllMetrics {
		lines = append(lines, fmt.Sprintf("  %-18s%s", m.Label()+":", Metric(m, r.Value(m))))
	}
	lines = append(lines, fmt.Sprintf("  %-18s%s", "Report Date:", datePtr(r.ReportDate)))
	return strings.Join(lines, "\n")
}

// Comparison renders one row per metric and one column per resolved
// company, followed by any tickers that did not resolve.
func Comparison(metrics []models.Metric, rows []models.CompanyFinancials, unresolved []string) string {
	cols := []Column{{Header: "Metric"}}
	for _, r := range rows {
		cols = append(cols, Column{Header: r.Company.Ticker, Align: Right})
	}
	t := NewTable(cols...)

	period := []string{"Period"}
	for _, r := range rows {
		if r.Latest == nil {
			period = append(period, NA)
			continue
		}
		period = append(period, fmt.Sprintf("FY%d %s", r.Latest.FiscalYear, r.Latest.FiscalQuarter))
	}
	t.AddRow(period...)

	for _, m := range metrics {
		cells := []string{m.Label()}
		for _, r := range rows {
			if r.Latest == nil {
				cells = append(cells, NA)
				continue
			}
			cells = append(cells, Metric(m, r.Latest.Value(m)))
		}
		t.AddRow(cells...)
	}

	out := fmt.Sprintf("Company Comparison (%d %s, latest reported quarter)\n\n%s",
		len(rows), plural(len(rows), "company", "companies"), t.String())
	if len(unresolved) > 0 {
		out += "\n\nNot found: " + strings.Join(unresolved, ", ")
	}
	return out
}

// PriceHistory renders daily bars oldest first
func PriceHistory(c models.Company, prices []models.StockPrice) string {
	if len(prices) == 0 {
		return fmt.Sprintf("No stock price data available for %s (%s).", c.Name, c.Ticker)
	}

	t := NewTable(
		Column{Header: "Date"},
		Column{Header: "Open", Align: Right},
		Column{Header: "High", Align: Right},
		Column{Header: "Low", Align: Right},
		Column{Header: "Close", Align: Right},
		Column{Header: "Volume", Align: Right},
	)
	for _, p := range prices {
		t.AddRow(
			p.Date.Format(time.DateOnly),
			Currency(p.Open),
			Currency(p.High),
			Currency(p.Low),
			Currency(p.Close),
			Number(p.Volume),
		)
	}
	return fmt.Sprintf("%s (%s) daily prices, %d %s:\n\n%s",
		c.Name, c.Ticker, len(prices), plural(len(prices), "day", "days"), t.String())
}

// Screen renders companies that passed the screen with their latest figures
func Screen(rows []models.CompanyFinancials) string {
	if len(rows) == 0 {
		return "No companies matched the screening criteria."
	}

	t := NewTable(
		Column{Header: "Ticker"},
		Column{Header: "Name"},
		Column{Header: "Sector"},
		Column{Header: "Period"},
		Column{Header: "Revenue", Align: Right},
		Column{Header: "EPS", Align: Right},
		Column{Header: "Gross Margin", Align: Right},
		Column{Header: "Debt/Equity", Align: Right},
	)
	for _, r := range rows {
		period, revenue, eps, margin, de := NA, NA, NA, NA, NA
		if l := r.Latest; l != nil {
			period = fmt.Sprintf("FY%d %s", l.FiscalYear, l.FiscalQuarter)
			revenue = CurrencyNull(l.Revenue)
			eps = PerShare(l.EPS)
			margin = PercentageNull(l.GrossMargin)
			de = Ratio(l.DebtToEquity)
		}
		t.AddRow(r.Company.Ticker, r.Company.Name, orNA(r.Company.Sector), period, revenue, eps, margin, de)
	}
	return fmt.Sprintf("%d %s passed the screen:\n\n%s",
		len(rows), plural(len(rows), "company", "companies"), t.String())
}

// AnalystRatings renders ratings newest first and the consensus score
func AnalystRatings(c models.Company, ratings []models.AnalystRating, consensus *float64) string {
	if len(ratings) == 0 {
		return fmt.Sprintf("No analyst ratings available for %s (%s).", c.Name, c.Ticker)
	}

	lines := []string{fmt.Sprintf("Analyst ratings for %s (%s):", c.Name, c.Ticker), ""}
	for _, r := range ratings {
		prev := ""
		if r.PreviousRating != nil {
			prev = fmt.Sprintf(" (prev: %s)", *r.PreviousRating)
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s%s | Target: %s | Date: %s",
			r.Rating, r.AnalystFirm, prev, CurrencyNull(r.TargetPrice), r.RatingDate.Format(time.DateOnly)))
	}
	if consensus != nil {
		lines = append(lines, "", fmt.Sprintf("  Consensus score: %.2f / 5.0 (%d %s)",
			*consensus, len(ratings), plural(len(ratings), "rating", "ratings")))
	}
	return strings.Join(lines, "\n")
}

// SectorOverview renders aggregate sector stats
func SectorOverview(s models.SectorStats) string {
	score := NA
	if s.AvgRatingScore.Valid {
		score = s.AvgRatingScore.Decimal.StringFixed(2)
	}
	lines := []string{
		"========================================",
		"  Sector: " + s.Sector,
		"========================================",
		fmt.Sprintf("  Companies:        %d", s.CompanyCount),
		"  Avg Market Cap:   " + CurrencyNull(s.AvgMarketCap),
		"  Total Revenue:    " + CurrencyNull(s.TotalRevenue),
		"  Avg Op. Margin:   " + PercentageNull(s.AvgOperatingMargin),
		"  Avg Rating Score: " + score + " / 5.0",
	}
	if s.CompanyCount == 0 {
		lines = append(lines, "", "  No companies are listed in this sector.")
	}
	return strings.Join(lines, "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
