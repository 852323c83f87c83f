package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"findata-mcp/config"
	"findata-mcp/migrations"
	"findata-mcp/observability"
	"findata-mcp/query"
	"findata-mcp/ratelimit"
	"findata-mcp/repository"
	"findata-mcp/services"
	"findata-mcp/tools"
)

// Store is the repository as seen by the App
type Store interface {
	repository.Store
	repository.HealthChecker
}

// Deps are the collaborators an App is assembled from
type Deps struct {
	Store    Store
	Limiter  ratelimit.Limiter
	Breakers *services.CircuitBreakerRegistry
	Audit    services.AuditSink
}

// App struct holds the wired tool pipeline and the resources it owns
type App struct {
	cfg        *config.Config
	store      Store
	breakers   *services.CircuitBreakerRegistry
	limiter    ratelimit.Limiter
	audit      services.AuditSink
	dispatcher *tools.Dispatcher
	stop       context.CancelFunc
}

// New assembles an App from already constructed collaborators
func New(cfg *config.Config, deps Deps) (*App, error) {
	scope, err := ratelimit.ParseScope(cfg.RateLimit.Scope)
	if err != nil {
		return nil, err
	}
	if deps.Breakers == nil {
		deps.Breakers = services.NewCircuitBreakerRegistry(services.BreakerConfigFrom(cfg.Breaker))
	}
	if deps.Audit == nil {
		deps.Audit = services.NopAuditSink{}
	}

	svc := query.NewService(deps.Store, deps.Breakers)
	return &App{
		cfg:      cfg,
		store:    deps.Store,
		breakers: deps.Breakers,
		limiter:  deps.Limiter,
		audit:    deps.Audit,
		dispatcher: tools.NewDispatcher(svc, deps.Limiter,
			tools.WithScope(scope),
			tools.WithTimeout(cfg.QueryTimeout()),
			tools.WithAudit(deps.Audit),
		),
	}, nil
}

// Bootstrap connects to the configured backends and assembles an App.
// Resources opened before a failure are released.
func Bootstrap(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	var store *repository.Repository
	if cfg.HasDatabase() {
		err = services.WithRetry(ctx, "database connect", services.ConnectRetryConfig, func() error {
			var connErr error
			store, connErr = repository.NewRepository(ctx, cfg.Database.URL)
			if errors.Is(connErr, repository.ErrInvalidDatabaseURL) {
				return services.Permanent(connErr)
			}
			return connErr
		})
		if err != nil {
			return nil, err
		}
		closers = append(closers, store.Close)
		observability.Info("database connected")

		if cfg.Database.MigrateOnBoot {
			if err := migrations.Up(cfg.Database.URL); err != nil {
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
			observability.Info("migrations applied")
		}
	} else {
		observability.Warn("DATABASE_URL not set, every tool call will fail with upstream_error")
		store = repository.NewWithDB(nil)
	}

	runCtx, stop := context.WithCancel(context.Background())
	closers = append(closers, stop)

	limiter, err := newLimiter(ctx, runCtx, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := limiter.(interface{ Close() error }); ok {
		closers = append(closers, func() { _ = c.Close() })
	}

	var audit services.AuditSink = services.NopAuditSink{}
	if cfg.HasKafka() {
		audit = services.NewKafkaAuditSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		observability.Info("audit events enabled", "topic", cfg.Kafka.Topic, "brokers", len(cfg.Kafka.Brokers))
	}

	a, err := New(cfg, Deps{Store: store, Limiter: limiter, Audit: audit})
	if err != nil {
		_ = audit.Close()
		return nil, err
	}
	a.stop = stop
	return a, nil
}

func newLimiter(ctx, runCtx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	rc := ratelimit.Config{Budget: cfg.RateLimit.RequestsPerWindow, Window: cfg.RateWindow()}

	switch cfg.RateLimit.Backend {
	case "redis":
		r, err := ratelimit.NewRedisFromURL(ctx, cfg.RateLimit.RedisURL, rc)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limiter: %w", err)
		}
		observability.Info("rate limiter ready", "backend", "redis", "budget", rc.Budget, "window", rc.Window)
		return r, nil
	default:
		m, err := ratelimit.NewMemory(rc)
		if err != nil {
			return nil, err
		}
		go m.Run(runCtx, time.Duration(cfg.RateLimit.SweepIntervalSeconds)*time.Second)
		observability.Info("rate limiter ready", "backend", "memory", "budget", rc.Budget, "window", rc.Window)
		return m, nil
	}
}

// Dispatcher returns the tool dispatcher shared by every transport
func (a *App) Dispatcher() *tools.Dispatcher {
	return a.dispatcher
}

// Config returns the configuration the App was built with
func (a *App) Config() *config.Config {
	return a.cfg
}

// Call runs one tool call
func (a *App) Call(ctx context.Context, req tools.Request) tools.Response {
	return a.dispatcher.Call(ctx, req)
}

// HealthReport is the body served by the health endpoint
type HealthReport struct {
	Status          string                                   `json:"status"`
	Services        map[string]string                        `json:"services"`
	CircuitBreakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers"`
}

// Health reports database reachability and breaker states. The status is
// degraded when the database is unreachable or any breaker is open.
func (a *App) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:          "ok",
		Services:        map[string]string{"database": "connected"},
		CircuitBreakers: a.breakers.Status(),
	}

	switch err := a.store.Health(ctx); {
	case errors.Is(err, repository.ErrNoDatabase):
		report.Services["database"] = "not_configured"
		report.Status = "degraded"
	case err != nil:
		report.Services["database"] = "disconnected"
		report.Status = "degraded"
	}

	if a.breakers.AnyOpen() {
		report.Status = "degraded"
	}
	return report
}

// Shutdown releases the store, the limiter and the audit sink
func (a *App) Shutdown(ctx context.Context) {
	if a.stop != nil {
		a.stop()
	}
	if err := a.audit.Close(); err != nil {
		observability.Warn("failed to close audit sink", "error", err)
	}
	if c, ok := a.limiter.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			observability.Warn("failed to close rate limiter", "error", err)
		}
	}
	if c, ok := a.store.(interface{ Close() }); ok {
		c.Close()
	}
}
