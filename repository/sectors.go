package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findata-mcp/models"
	"findata-mcp/observability"
)

// GetSectorStats calls get_sector_stats. An unknown sector yields zeroed
// stats carrying the requested name.
func (r *Repository) GetSectorStats(ctx context.Context, sector string) (models.SectorStats, error) {
	if err := r.checkDB(); err != nil {
		return models.SectorStats{}, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("rpc", "get_sector_stats")

	stats := models.SectorStats{}
	err := r.db.QueryRow(ctx, `
		SELECT sector, company_count, avg_market_cap, total_revenue,
		       avg_operating_margin, avg_rating_score
		FROM get_sector_stats($1)
	`, sector).Scan(
		&stats.Sector, &stats.CompanyCount, &stats.AvgMarketCap, &stats.TotalRevenue,
		&stats.AvgOperatingMargin, &stats.AvgRatingScore,
	)

	if err == pgx.ErrNoRows {
		return models.EmptySectorStats(sector), nil
	}
	if err != nil {
		metrics.RecordDBError("rpc", "get_sector_stats")
		return models.SectorStats{}, fmt.Errorf("failed to get sector stats for %s: %w", sector, err)
	}

	return stats, nil
}
