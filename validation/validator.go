// Package validation turns untyped tool arguments into typed, normalized
// bundles. It never touches the store.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"findata-mcp/internal/apperr"
	"findata-mcp/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ticker", validateTicker)
	_ = v.RegisterValidation("quarter", validateQuarter)
	_ = v.RegisterValidation("metric", validateMetric)
	return v
}

func validateTicker(fl validator.FieldLevel) bool {
	return models.IsTicker(fl.Field().String())
}

func validateQuarter(fl validator.FieldLevel) bool {
	return models.FiscalQuarter(fl.Field().String()).Ordinal() > 0
}

func validateMetric(fl validator.FieldLevel) bool {
	return models.Metric(fl.Field().String()).IsValid()
}

// Validate checks raw arguments for the named tool and returns its bundle
// or an *apperr.ValidationError naming the offending field.
func Validate(tool models.ToolName, raw map[string]any) (Args, error) {
	switch tool {
	case models.ToolCompanyProfile:
		return profile(raw)
	case models.ToolSearchCompanies:
		return search(raw)
	case models.ToolFinancialReport:
		return report(raw)
	case models.ToolCompareCompanies:
		return compare(raw)
	case models.ToolPriceHistory:
		return priceHistory(raw)
	case models.ToolScreenStocks:
		return screen(raw)
	case models.ToolAnalystRatings:
		return ratings(raw)
	case models.ToolSectorOverview:
		return sector(raw)
	default:
		return nil, apperr.Invalid("name", "unknown tool %q", string(tool))
	}
}

func profile(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "identifier")
	a := ProfileArgs{Identifier: d.requiredStr("identifier")}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	a.ByTicker = models.LooksLikeTicker(a.Identifier)
	return a, nil
}

func search(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "sector", "industry", "min_market_cap", "max_market_cap", "country")
	a := SearchArgs{
		Sector:       d.str("sector"),
		Industry:     d.str("industry"),
		MinMarketCap: d.integer("min_market_cap"),
		MaxMarketCap: d.integer("max_market_cap"),
		Country:      d.str("country"),
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	if a.MinMarketCap != nil && a.MaxMarketCap != nil && *a.MinMarketCap > *a.MaxMarketCap {
		return nil, apperr.Invalid("min_market_cap", "must not exceed max_market_cap")
	}
	return a, nil
}

func report(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "ticker", "fiscal_year", "fiscal_quarter")
	a := ReportArgs{Ticker: models.NormalizeTicker(d.requiredStr("ticker"))}
	if y := d.integer("fiscal_year"); y != nil {
		year := int(*y)
		a.FiscalYear = &year
	}
	if q := d.str("fiscal_quarter"); q != nil {
		quarter, _ := models.ParseQuarter(*q)
		a.FiscalQuarter = &quarter
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func compare(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "tickers", "metrics")
	var a CompareArgs
	if tickers := d.strs("tickers"); tickers != nil {
		a.Tickers = make([]string, len(tickers))
		for i, t := range tickers {
			a.Tickers[i] = models.NormalizeTicker(t)
		}
	}
	if metrics := d.strs("metrics"); metrics != nil {
		a.Metrics = make([]models.Metric, len(metrics))
		for i, m := range metrics {
			a.Metrics[i] = models.Metric(strings.ToLower(m))
		}
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	if a.Metrics == nil {
		a.Metrics = append([]models.Metric(nil), models.AllMetrics...)
	}
	return a, nil
}

func priceHistory(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "ticker", "start_date", "end_date", "limit")
	a := PriceHistoryArgs{
		Ticker:    models.NormalizeTicker(d.requiredStr("ticker")),
		StartDate: d.date("start_date"),
		EndDate:   d.date("end_date"),
		Limit:     DefaultLimit,
	}
	if l := d.integer("limit"); l != nil {
		a.Limit = int(min(*l, MaxLimit))
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	if a.StartDate != nil && a.EndDate != nil && a.StartDate.After(*a.EndDate) {
		return nil, apperr.Invalid("start_date", "must not be after end_date")
	}
	return a, nil
}

func screen(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "min_revenue", "min_eps", "min_gross_margin", "max_debt_to_equity", "sector")
	a := ScreenArgs{
		MinRevenue:      d.number("min_revenue"),
		MinEPS:          d.number("min_eps"),
		MinGrossMargin:  d.number("min_gross_margin"),
		MaxDebtToEquity: d.number("max_debt_to_equity"),
		Sector:          d.str("sector"),
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func ratings(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "ticker", "firm")
	a := RatingsArgs{
		Ticker: models.NormalizeTicker(d.requiredStr("ticker")),
		Firm:   d.str("firm"),
	}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func sector(raw map[string]any) (Args, error) {
	d := newDecoder(raw, "sector")
	a := SectorArgs{Sector: d.requiredStr("sector")}
	if err := check(d, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// check reports a decode failure first, then the first struct tag failure
func check(d *decoder, bundle any) error {
	if d.err != nil {
		return d.err
	}
	err := validate.Struct(bundle)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("arguments", "%v", err)
	}
	return translate(verrs[0])
}

func translate(fe validator.FieldError) *apperr.ValidationError {
	field, _, _ := strings.Cut(fe.Field(), "[")
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(field, "is required")
	case "min":
		if isList {
			return apperr.Invalid(field, "must contain at least %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return apperr.Invalid(field, "must not be empty")
		}
		return apperr.Invalid(field, "must be at least %s", fe.Param())
	case "max":
		if isList {
			return apperr.Invalid(field, "must contain at most %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return apperr.Invalid(field, "must be at most %s characters", fe.Param())
		}
		return apperr.Invalid(field, "must be at most %s", fe.Param())
	case "unique":
		return apperr.Invalid(field, "must not contain duplicates")
	case "ticker":
		return apperr.Invalid(field, "%q is not a valid ticker (1-%d letters or digits, starting with a letter)",
			fe.Value(), models.MaxTickerLength)
	case "quarter":
		return apperr.Invalid(field, "%q must be one of Q1, Q2, Q3, Q4", fe.Value())
	case "metric":
		return apperr.Invalid(field, "%q is not a supported metric (supported: %s)", fe.Value(), metricList())
	default:
		return apperr.Invalid(field, "failed %s check", fe.Tag())
	}
}

func metricList() string {
	names := make([]string, len(models.AllMetrics))
	for i, m := range models.AllMetrics {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
