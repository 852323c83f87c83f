package models

// Metric names a financial report column that can be compared across companies
type Metric string

const (
	MetricRevenue         Metric = "revenue"
	MetricNetIncome       Metric = "net_income"
	MetricEPS             Metric = "eps"
	MetricGrossMargin     Metric = "gross_margin"
	MetricOperatingMargin Metric = "operating_margin"
	MetricDebtToEquity    Metric = "debt_to_equity"
	MetricFreeCashFlow    Metric = "free_cash_flow"
)

// MetricKind drives how a metric value is rendered
type MetricKind int

const (
	KindCurrency MetricKind = iota
	KindPercentage
	KindPerShare
	KindRatio
)

// AllMetrics is the canonical metric order used when none are requested
var AllMetrics = []Metric{
	MetricRevenue,
	MetricNetIncome,
	MetricEPS,
	MetricGrossMargin,
	MetricOperatingMargin,
	MetricDebtToEquity,
	MetricFreeCashFlow,
}

var metricLabels = map[Metric]string{
	MetricRevenue:         "Revenue",
	MetricNetIncome:       "Net Income",
	MetricEPS:             "EPS",
	MetricGrossMargin:     "Gross Margin",
	MetricOperatingMargin: "Operating Margin",
	MetricDebtToEquity:    "Debt/Equity",
	MetricFreeCashFlow:    "Free Cash Flow",
}

// IsValid reports whether m is one of the enumerated metrics
func (m Metric) IsValid() bool {
	_, ok := metricLabels[m]
	return ok
}

// Label returns the display name of the metric
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// Kind returns the rendering class of the metric
func (m Metric) Kind() MetricKind {
	switch m {
	case MetricGrossMargin, MetricOperatingMargin:
		return KindPercentage
	case MetricEPS:
		return KindPerShare
	case MetricDebtToEquity:
		return KindRatio
	default:
		return KindCurrency
	}
}
