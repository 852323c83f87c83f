package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"findata-mcp/models"
	"findata-mcp/observability"
)

// PriceQuery selects daily bars within an inclusive date range
type PriceQuery struct {
	CompanyID uuid.UUID
	Start     *time.Time
	End       *time.Time
	Limit     int
}

// GetStockPrices returns the most recent Limit bars in the range, oldest first
func (r *Repository) GetStockPrices(ctx context.Context, q PriceQuery) ([]models.StockPrice, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}
	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	defer timer.ObserveDB("select", "stock_prices")

	f := NewFilter().Where("sp.company_id = %s", q.CompanyID)
	if q.Start != nil {
		f.Where("sp.date >= %s", *q.Start)
	}
	if q.End != nil {
		f.Where("sp.date <= %s", *q.End)
	}
	limitParam := f.Bind(q.Limit)

	rows, err := r.db.Query(ctx, `
		SELECT * FROM (
			SELECT sp.id, sp.company_id, sp.date, sp.open, sp.high, sp.low, sp.close, sp.volume
			FROM stock_prices sp
			`+f.Clause()+`
			ORDER BY sp.date DESC
			LIMIT `+limitParam+`
		) recent
		ORDER BY recent.date ASC
	`, f.Args()...)
	if err != nil {
		metrics.RecordDBError("select", "stock_prices")
		return nil, fmt.Errorf("failed to get stock prices: %w", err)
	}
	defer rows.Close()

	var prices []models.StockPrice
	for rows.Next() {
		var p models.StockPrice
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			metrics.RecordDBError("scan", "stock_prices")
			return nil, fmt.Errorf("failed to scan stock price: %w", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordDBError("select", "stock_prices")
		return nil, fmt.Errorf("failed to iterate stock prices: %w", err)
	}

	return prices, nil
}
