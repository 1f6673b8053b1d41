package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/directory"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/config"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/logging"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/metrics"
	"github.com/nerrad567/assetflow-core/internal/lifecycle"
	"github.com/nerrad567/assetflow-core/internal/reporting"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// defaultMetricsPath is used when metrics are enabled without a path.
const defaultMetricsPath = "/metrics"

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	Security    config.SecurityConfig
	Logger      *logging.Logger
	Devices     *device.Registry
	Directory   *directory.Directory
	Requests    *request.Manager
	Allocations *allocation.Manager
	Coordinator *lifecycle.Coordinator

	// Audit is optional; without it /audit returns 404 and API changes are
	// not recorded.
	Audit *audit.Trail

	// Reporter is optional; without it /reports/summary returns 404.
	Reporter *reporting.Reporter

	// Metrics is optional; when set the request middleware records HTTP
	// metrics and the exposition handler is mounted at MetricsPath.
	Metrics     *metrics.Metrics
	MetricsPath string

	Version string
}

// Server is the HTTP API server for AssetFlow.
//
// It is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	devices     *device.Registry
	directory   *directory.Directory
	requests    *request.Manager
	allocations *allocation.Manager
	coordinator *lifecycle.Coordinator
	audit       *audit.Trail
	reporter    *reporting.Reporter
	metrics     *metrics.Metrics
	metricsPath string
	version     string
	server      *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("directory is required")
	}
	if deps.Requests == nil || deps.Allocations == nil {
		return nil, fmt.Errorf("request and allocation managers are required")
	}
	if deps.Coordinator == nil {
		return nil, fmt.Errorf("lifecycle coordinator is required")
	}

	metricsPath := deps.MetricsPath
	if metricsPath == "" {
		metricsPath = defaultMetricsPath
	}

	return &Server{
		cfg:         deps.Config,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		devices:     deps.Devices,
		directory:   deps.Directory,
		requests:    deps.Requests,
		allocations: deps.Allocations,
		coordinator: deps.Coordinator,
		audit:       deps.Audit,
		reporter:    deps.Reporter,
		metrics:     deps.Metrics,
		metricsPath: metricsPath,
		version:     deps.Version,
	}, nil
}

// Handler returns the fully wired router. Start uses it; tests can serve it
// through httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// recordAudit writes an API-originated change to the audit trail.
// Failures are logged; the change itself has already been committed.
func (s *Server) recordAudit(r *http.Request, action, entityType, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	actor, _ := actorFromContext(r.Context())
	if err := s.audit.Record(r.Context(), action, entityType, entityID, actor.ID, details); err != nil {
		s.logger.Error("audit record failed",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}
