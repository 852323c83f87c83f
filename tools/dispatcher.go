package tools

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"findata-mcp/format"
	"findata-mcp/internal/apperr"
	"findata-mcp/models"
	"findata-mcp/observability"
	"findata-mcp/query"
	"findata-mcp/ratelimit"
	"findata-mcp/services"
	"findata-mcp/validation"
)

// DefaultTimeout bounds the query stage of a call
const DefaultTimeout = 10 * time.Second

// Querier is the query layer as seen by the dispatcher
type Querier interface {
	CompanyProfile(ctx context.Context, a validation.ProfileArgs) (query.Resolution, error)
	SearchCompanies(ctx context.Context, a validation.SearchArgs) ([]models.Company, error)
	FinancialReports(ctx context.Context, a validation.ReportArgs) (query.ReportResult, error)
	CompareCompanies(ctx context.Context, a validation.CompareArgs) (query.Comparison, error)
	PriceHistory(ctx context.Context, a validation.PriceHistoryArgs) (query.PriceHistoryResult, error)
	ScreenStocks(ctx context.Context, a validation.ScreenArgs) ([]models.CompanyFinancials, error)
	AnalystRatings(ctx context.Context, a validation.RatingsArgs) (query.RatingsResult, error)
	SectorOverview(ctx context.Context, a validation.SectorArgs) (models.SectorStats, error)
}

var _ Querier = (*query.Service)(nil)

// Request is one framed tool call
type Request struct {
	Tool string         `json:"name"`
	Args map[string]any `json:"arguments"`
	// CallerKey distinguishes callers for per-client rate limiting
	CallerKey string `json:"-"`
}

// ErrorBody is the typed error sent back to the caller
type ErrorBody struct {
	Kind              apperr.Kind `json:"kind"`
	Message           string      `json:"message"`
	Field             string      `json:"field,omitempty"`
	Reason            string      `json:"reason,omitempty"`
	Identifier        string      `json:"identifier,omitempty"`
	RetryAfterSeconds int         `json:"retry_after_seconds,omitempty"`
}

// Response is either a success payload or a typed error
type Response struct {
	OK    bool       `json:"ok"`
	Tool  string     `json:"tool"`
	Text  string     `json:"text"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`

	// Err is the classified error behind Error
	Err error `json:"-"`
}

// Outcome is the metrics label for the response
func (r Response) Outcome() string {
	if r.OK {
		return "ok"
	}
	return string(r.Error.Kind)
}

// Dispatcher runs tool calls. It is safe for concurrent use.
type Dispatcher struct {
	queries Querier
	limiter ratelimit.Limiter
	scope   ratelimit.Scope
	timeout time.Duration
	audit   services.AuditSink
	now     func() time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithScope selects per-client or global rate limit windows
func WithScope(s ratelimit.Scope) Option {
	return func(d *Dispatcher) { d.scope = s }
}

// WithTimeout bounds the query stage
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithAudit publishes one event per call
func WithAudit(sink services.AuditSink) Option {
	return func(d *Dispatcher) {
		if sink != nil {
			d.audit = sink
		}
	}
}

// WithClock overrides the clock used for rate limiting
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a dispatcher. A nil limiter admits every call.
func NewDispatcher(queries Querier, limiter ratelimit.Limiter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queries: queries,
		limiter: limiter,
		scope:   ratelimit.ScopeGlobal,
		timeout: DefaultTimeout,
		audit:   services.NopAuditSink{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// result is the formatted output of a successful query
type result struct {
	text string
	data any
	rows int
}

// Call validates, admits, queries and formats a single call. It never
// panics and never returns an unclassified error.
func (d *Dispatcher) Call(ctx context.Context, req Request) (resp Response) {
	timer := observability.GetMetrics().NewTimer()
	rows := 0

	defer func() {
		if r := recover(); r != nil {
			observability.Error("tool call panicked", "tool", req.Tool, "panic", r, "stack", string(debug.Stack()))
			resp = failure(req.Tool, apperr.Upstream(fmt.Errorf("panic: %v", r)))
		}
		d.finish(ctx, req, resp, rows, timer)
	}()

	args, err := validation.Validate(models.ToolName(req.Tool), req.Args)
	if err != nil {
		return failure(req.Tool, err)
	}

	if d.limiter != nil {
		if err := d.limiter.Admit(ctx, d.scope.Key(req.CallerKey), d.now()); err != nil {
			return failure(req.Tool, err)
		}
	}

	qctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := d.execute(qctx, args)
	if err != nil {
		if ctx.Err() == nil && errors.Is(qctx.Err(), context.DeadlineExceeded) && apperr.KindOf(err) == apperr.KindUpstream {
			err = &apperr.UpstreamError{Cause: err, Timeout: true}
		}
		return failure(req.Tool, err)
	}

	rows = res.rows
	return Response{OK: true, Tool: req.Tool, Text: res.text, Data: res.data}
}

func (d *Dispatcher) finish(ctx context.Context, req Request, resp Response, rows int, timer *observability.Timer) {
	outcome := resp.Outcome()
	timer.ObserveTool(req.Tool, outcome)
	if resp.OK {
		observability.GetMetrics().RecordToolRows(req.Tool, rows)
	}

	log := observability.WithTool(req.Tool)
	switch {
	case resp.OK:
		log.Debug("tool call completed", "rows", rows, "duration", timer.Duration())
	case resp.Error.Kind == apperr.KindUpstream:
		log.Error("tool call failed", "outcome", outcome, "error", errors.Unwrap(resp.Err), "duration", timer.Duration())
	default:
		log.Info("tool call rejected", "outcome", outcome, "error", resp.Err)
	}

	d.audit.Record(context.WithoutCancel(ctx), services.NewAuditEvent(req.Tool, outcome, req.CallerKey, rows, timer.Duration()))
}

func (d *Dispatcher) execute(ctx context.Context, args validation.Args) (result, error) {
	switch a := args.(type) {
	case validation.ProfileArgs:
		res, err := d.queries.CompanyProfile(ctx, a)
		if err != nil {
			return result{}, err
		}
		if res.Ambiguous() {
			return ambiguous(a.Identifier, res), nil
		}
		return result{text: format.CompanyProfile(*res.Company), data: res, rows: 1}, nil

	case validation.SearchArgs:
		companies, err := d.queries.SearchCompanies(ctx, a)
		if err != nil {
			return result{}, err
		}
		return result{text: format.CompanyList(companies), data: nonNil(companies), rows: len(companies)}, nil

	case validation.ReportArgs:
		res, err := d.queries.FinancialReports(ctx, a)
		if err != nil {
			return result{}, err
		}
		if res.Ambiguous() {
			return ambiguous(a.Ticker, res.Resolution), nil
		}
		res.Reports = nonNil(res.Reports)
		return result{text: format.FinancialReports(*res.Company, res.Reports), data: res, rows: len(res.Reports)}, nil

	case validation.CompareArgs:
		cmp, err := d.queries.CompareCompanies(ctx, a)
		if err != nil {
			return result{}, err
		}
		return result{text: format.Comparison(cmp.Metrics, cmp.Companies, cmp.Unresolved), data: cmp, rows: len(cmp.Companies)}, nil

	case validation.PriceHistoryArgs:
		res, err := d.queries.PriceHistory(ctx, a)
		if err != nil {
			return result{}, err
		}
		if res.Ambiguous() {
			return ambiguous(a.Ticker, res.Resolution), nil
		}
		res.Prices = nonNil(res.Prices)
		return result{text: format.PriceHistory(*res.Company, res.Prices), data: res, rows: len(res.Prices)}, nil

	case validation.ScreenArgs:
		rows, err := d.queries.ScreenStocks(ctx, a)
		if err != nil {
			return result{}, err
		}
		return result{text: format.Screen(rows), data: nonNil(rows), rows: len(rows)}, nil

	case validation.RatingsArgs:
		res, err := d.queries.AnalystRatings(ctx, a)
		if err != nil {
			return result{}, err
		}
		if res.Ambiguous() {
			return ambiguous(a.Ticker, res.Resolution), nil
		}
		res.Ratings = nonNil(res.Ratings)
		return result{text: format.AnalystRatings(*res.Company, res.Ratings, res.Consensus), data: res, rows: len(res.Ratings)}, nil

	case validation.SectorArgs:
		stats, err := d.queries.SectorOverview(ctx, a)
		if err != nil {
			return result{}, err
		}
		return result{text: format.SectorOverview(stats), data: stats, rows: stats.CompanyCount}, nil

	default:
		return result{}, fmt.Errorf("no handler for %T", args)
	}
}

func ambiguous(identifier string, res query.Resolution) result {
	return result{text: format.Disambiguation(identifier, res.Matches), data: res, rows: len(res.Matches)}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// failure converts any error into a typed error response
func failure(tool string, err error) Response {
	err = apperr.Classify(err)
	body := &ErrorBody{Kind: apperr.KindOf(err), Message: err.Error()}

	switch e := err.(type) {
	case *apperr.ValidationError:
		body.Field = e.Field
		body.Reason = e.Reason
	case *apperr.RateLimitError:
		body.RetryAfterSeconds = e.RetryAfterSeconds()
	case *apperr.NotFoundError:
		body.Identifier = e.Identifier
	}

	return Response{OK: false, Tool: tool, Text: "Error: " + err.Error(), Error: body, Err: err}
}
