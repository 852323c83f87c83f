package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockPrice is one trading day's OHLC bar
type StockPrice struct {
	ID        uuid.UUID       `json:"id"`
	CompanyID uuid.UUID       `json:"company_id"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// Rating is an analyst recommendation label
type Rating string

const (
	RatingSell        Rating = "Sell"
	RatingUnderweight Rating = "Underweight"
	RatingHold        Rating = "Hold"
	RatingOverweight  Rating = "Overweight"
	RatingBuy         Rating = "Buy"
)

// ratingScores maps labels onto the ordinal scale used for sector averages
var ratingScores = map[Rating]int{
	RatingSell:        1,
	RatingUnderweight: 2,
	RatingHold:        3,
	RatingOverweight:  4,
	RatingBuy:         5,
}

// Score returns the ordinal value of the rating, or 0 for an unknown label
func (r Rating) Score() int {
	return ratingScores[r]
}

// AnalystRating is a single rating issued by a research firm
type AnalystRating struct {
	ID             uuid.UUID           `json:"id"`
	CompanyID      uuid.UUID           `json:"company_id"`
	AnalystFirm    string              `json:"analyst_firm"`
	Rating         Rating              `json:"rating"`
	TargetPrice    decimal.NullDecimal `json:"target_price"`
	PreviousRating *Rating             `json:"previous_rating"`
	RatingDate     time.Time           `json:"rating_date"`
}

// ConsensusScore averages the ordinal score of the given ratings.
// Unknown labels are skipped; ok is false when nothing was scored.
func ConsensusScore(ratings []AnalystRating) (score decimal.Decimal, ok bool) {
	total, n := 0, 0
	for _, r := range ratings {
		if s := r.Rating.Score(); s > 0 {
			total += s
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(n))).Round(2), true
}

// SectorStats is computed on demand for a single sector
type SectorStats struct {
	Sector             string              `json:"sector"`
	CompanyCount       int                 `json:"company_count"`
	AvgMarketCap       decimal.NullDecimal `json:"avg_market_cap"`
	TotalRevenue       decimal.NullDecimal `json:"total_revenue"`
	AvgOperatingMargin decimal.NullDecimal `json:"avg_operating_margin"`
	AvgRatingScore     decimal.NullDecimal `json:"avg_rating_score"`
}

// EmptySectorStats is the result for a sector that matches no company
func EmptySectorStats(sector string) SectorStats {
	return SectorStats{Sector: sector}
}
