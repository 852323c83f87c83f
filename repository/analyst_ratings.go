package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"findata-mcp/models"
	"findata-mcp/observability"
)

// MaxRatings bounds a single ratings listing
const MaxRatings = 20

// RatingQuery selects a company's ratings, optionally by firm substring
type RatingQuery struct {
	CompanyID uuid.UUID
	Firm      *string
	Limit     int
}

// GetAnalystRatings returns ratings newest first
func (r *Repository) GetAnalystRatings(ctx context.Context, q RatingQuery) ([]models.AnalystRating, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "analyst_ratings")

	limit := q.Limit
	if limit <= 0 || limit > MaxRatings {
		limit = MaxRatings
	}

	f := NewFilter().
		Where("ar.company_id = %s", q.CompanyID).
		Contains("ar.analyst_firm", q.Firm)
	limitParam := f.Bind(limit)

	rows, err := r.db.Query(ctx, `
		SELECT ar.id, ar.company_id, ar.analyst_firm, ar.rating, ar.target_price,
		       ar.previous_rating, ar.rating_date
		FROM analyst_ratings ar
		`+f.Clause()+`
		ORDER BY ar.rating_date DESC, ar.analyst_firm
		LIMIT `+limitParam, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "analyst_ratings")
		return nil, fmt.Errorf("failed to get analyst ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.AnalystRating
	for rows.Next() {
		var (
			ar       models.AnalystRating
			rating   string
			previous *string
		)
		if err := rows.Scan(&ar.ID, &ar.CompanyID, &ar.AnalystFirm, &rating, &ar.TargetPrice, &previous, &ar.RatingDate); err != nil {
			metrics.RecordDBError("scan", "analyst_ratings")
			return nil, fmt.Errorf("failed to scan analyst rating: %w", err)
		}
		ar.Rating = models.Rating(rating)
		if previous != nil {
			p := models.Rating(*previous)
			ar.PreviousRating = &p
		}
		ratings = append(ratings, ar)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError("select", "analyst_ratings")
		return nil, fmt.Errorf("failed to iterate analyst ratings: %w", err)
	}

	return ratings, nil
}
