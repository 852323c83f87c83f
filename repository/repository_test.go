package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"findata-mcp/migrations"
	"findata-mcp/models"
)

var (
	appleID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	msftID  = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	nvdaID  = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// setupTestRepo starts a PostgreSQL container, applies the migrations and
// loads testdata/seed.sql.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("findata"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	defer sqlDB.Close()

	m, err := migrations.NewWithDB(sqlDB)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seed, err := os.ReadFile("testdata/seed.sql")
	require.NoError(t, err)
	_, err = sqlDB.ExecContext(ctx, string(seed))
	require.NoError(t, err)

	repo, err := NewRepository(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	return repo
}

func TestRepository_Integration(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})

	t.Run("company by ticker is case insensitive", func(t *testing.T) {
		c, err := repo.GetCompanyByTicker(ctx, " aapl ")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Apple Inc.", c.Name)
		require.NotNil(t, c.MarketCap)
		assert.Equal(t, int64(3_400_000_000_000), *c.MarketCap)
	})

	t.Run("unknown ticker returns nil", func(t *testing.T) {
		c, err := repo.GetCompanyByTicker(ctx, "ZZZZ")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("nullable company columns", func(t *testing.T) {
		c, err := repo.GetCompanyByTicker(ctx, "SAP")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Empty(t, c.CEO)
		assert.Nil(t, c.EmployeeCount)
	})

	t.Run("companies by tickers", func(t *testing.T) {
		cs, err := repo.GetCompaniesByTickers(ctx, []string{"msft", "AAPL", "NOPE"})
		require.NoError(t, err)
		assert.Len(t, cs, 2)
	})

	t.Run("name search orders by name", func(t *testing.T) {
		cs, err := repo.FindCompaniesByName(ctx, "corporation", 10)
		require.NoError(t, err)
		require.Len(t, cs, 3)
		assert.Equal(t, "XOM", cs[0].Ticker)
		assert.Equal(t, "MSFT", cs[1].Ticker)
		assert.Equal(t, "NVDA", cs[2].Ticker)
	})

	t.Run("name search treats wildcards literally", func(t *testing.T) {
		cs, err := repo.FindCompaniesByName(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, cs)
	})

	t.Run("search filter is monotonic", func(t *testing.T) {
		sector := "technology"
		wide, err := repo.SearchCompanies(ctx, CompanyFilter{Sector: &sector})
		require.NoError(t, err)
		assert.Len(t, wide, 4)

		minCap := int64(3_000_000_000_000)
		narrow, err := repo.SearchCompanies(ctx, CompanyFilter{Sector: &sector, MinMarketCap: &minCap})
		require.NoError(t, err)
		assert.Len(t, narrow, 2)

		wideSet := map[string]bool{}
		for _, c := range wide {
			wideSet[c.Ticker] = true
		}
		for _, c := range narrow {
			assert.True(t, wideSet[c.Ticker], "%s should be in the wider result", c.Ticker)
		}
	})

	t.Run("search without criteria returns everything", func(t *testing.T) {
		all, err := repo.SearchCompanies(ctx, CompanyFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 6)
	})

	t.Run("financial report by period", func(t *testing.T) {
		year := 2024
		q := models.Q4
		reports, err := repo.GetFinancialReports(ctx, ReportQuery{CompanyID: msftID, FiscalYear: &year, FiscalQuarter: &q})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Revenue.Decimal.Equal(decimal.RequireFromString("69630000000")))
		assert.Equal(t, models.Q4, reports[0].FiscalQuarter)
	})

	t.Run("financial reports newest first", func(t *testing.T) {
		reports, err := repo.GetFinancialReports(ctx, ReportQuery{CompanyID: msftID})
		require.NoError(t, err)
		require.Len(t, reports, 3)
		assert.Equal(t, 2024, reports[0].FiscalYear)
		assert.Equal(t, models.Q4, reports[0].FiscalQuarter)
		assert.Equal(t, models.Q1, reports[1].FiscalQuarter)
		assert.Equal(t, 2023, reports[2].FiscalYear)
	})

	t.Run("reports for companies", func(t *testing.T) {
		reports, err := repo.GetReportsForCompanies(ctx, []uuid.UUID{appleID, nvdaID})
		require.NoError(t, err)
		assert.Len(t, reports, 3)
	})

	t.Run("screen uses latest report", func(t *testing.T) {
		minMargin := 46.5
		rows, err := repo.ScreenCompanies(ctx, ScreenFilter{MinGrossMargin: &minMargin})
		require.NoError(t, err)

		tickers := make([]string, len(rows))
		for i, r := range rows {
			tickers[i] = r.Company.Ticker
		}
		// Apple's Q3 margin is below the threshold but its Q4 margin passes
		assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, tickers)
	})

	t.Run("screen null metric fails threshold", func(t *testing.T) {
		maxDE := 10.0
		rows, err := repo.ScreenCompanies(ctx, ScreenFilter{MaxDebtToEquity: &maxDE})
		require.NoError(t, err)
		for _, r := range rows {
			assert.NotEqual(t, "NVDA", r.Company.Ticker)
		}
	})

	t.Run("screen excludes companies without reports", func(t *testing.T) {
		energy := "Energy"
		rows, err := repo.ScreenCompanies(ctx, ScreenFilter{Sector: &energy})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "XOM", rows[0].Company.Ticker)
	})

	t.Run("price history keeps most recent rows ascending", func(t *testing.T) {
		prices, err := repo.GetStockPrices(ctx, PriceQuery{CompanyID: appleID, Limit: 3})
		require.NoError(t, err)
		require.Len(t, prices, 3)
		assert.Equal(t, "2025-01-06", prices[0].Date.Format(time.DateOnly))
		assert.Equal(t, "2025-01-08", prices[2].Date.Format(time.DateOnly))
	})

	t.Run("price history date range is inclusive", func(t *testing.T) {
		start := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
		prices, err := repo.GetStockPrices(ctx, PriceQuery{CompanyID: appleID, Start: &start, End: &end, Limit: 30})
		require.NoError(t, err)
		assert.Len(t, prices, 2)
	})

	t.Run("ratings newest first with firm filter", func(t *testing.T) {
		ratings, err := repo.GetAnalystRatings(ctx, RatingQuery{CompanyID: appleID})
		require.NoError(t, err)
		require.Len(t, ratings, 3)
		assert.Equal(t, "Goldman Sachs", ratings[0].AnalystFirm)
		require.NotNil(t, ratings[1].PreviousRating)
		assert.Equal(t, models.RatingHold, *ratings[1].PreviousRating)

		firm := "morgan"
		filtered, err := repo.GetAnalystRatings(ctx, RatingQuery{CompanyID: appleID, Firm: &firm})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, models.RatingOverweight, filtered[0].Rating)
	})

	t.Run("sector stats", func(t *testing.T) {
		stats, err := repo.GetSectorStats(ctx, "TECHNOLOGY")
		require.NoError(t, err)
		assert.Equal(t, "Technology", stats.Sector)
		assert.Equal(t, 4, stats.CompanyCount)
		assert.True(t, stats.TotalRevenue.Decimal.Equal(decimal.RequireFromString("233260000000")))
		assert.True(t, stats.AvgRatingScore.Decimal.Equal(decimal.RequireFromString("4")))
	})

	t.Run("unknown sector yields zero stats", func(t *testing.T) {
		stats, err := repo.GetSectorStats(ctx, "NoSuchSector")
		require.NoError(t, err)
		assert.Equal(t, "NoSuchSector", stats.Sector)
		assert.Zero(t, stats.CompanyCount)
		assert.False(t, stats.AvgMarketCap.Valid)
	})
}

func TestRepository_WithoutDatabase(t *testing.T) {
	var repo *Repository
	_, err := repo.GetCompanyByTicker(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoDatabase)

	empty := NewWithDB(nil)
	_, err = empty.GetSectorStats(context.Background(), "Energy")
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.ErrorIs(t, empty.Health(context.Background()), ErrNoDatabase)
}
