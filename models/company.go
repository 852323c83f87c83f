package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxTickerLength is the longest ticker symbol accepted
const MaxTickerLength = 10

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)

// Company is the root entity every other table references
type Company struct {
	ID            uuid.UUID `json:"id"`
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	Industry      string    `json:"industry"`
	MarketCap     *int64    `json:"market_cap"`
	Country       string    `json:"country"`
	FoundedYear   *int      `json:"founded_year"`
	CEO           string    `json:"ceo"`
	EmployeeCount *int64    `json:"employee_count"`
	Description   string    `json:"description"`
}

// NormalizeTicker trims and uppercases a ticker symbol.
// Applying it twice yields the same value as applying it once.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsTicker reports whether an already normalized value is a well-formed ticker
func IsTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// LooksLikeTicker reports whether a free-form identifier should first be
// resolved as a ticker symbol before falling back to a name search
func LooksLikeTicker(identifier string) bool {
	return IsTicker(NormalizeTicker(identifier))
}
