package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/course-metadata/internal/api"
	"github.com/eugenenazirov/course-metadata/internal/config"
	"github.com/eugenenazirov/course-metadata/internal/course"
	"github.com/eugenenazirov/course-metadata/internal/metadata"
	"github.com/eugenenazirov/course-metadata/internal/metrics"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	course  *course.Metadata
	metrics *metrics.Collector
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New loads the course metadata named by cfg and wires it into the HTTP stack.
// A malformed metadata source is returned as an error; nothing is served.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	record, err := metadata.LoadOrDefault(cfg.MetadataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load course metadata: %w", err)
	}

	source := cfg.MetadataFile
	if source == "" {
		source = metadata.DefaultSource
	}
	logger.Info("course metadata loaded",
		zap.String("source", source),
		zap.String("course_id", record.ID()),
		zap.Strings("locales", record.Locales()),
	)

	var collector *metrics.Collector
	handlerOpts := []api.HandlerOption{}
	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	if cfg.EnableMetrics {
		collector = metrics.NewCollector()
		handlerOpts = append(handlerOpts, api.WithLookupMetrics(collector))
		routerOpts = append(routerOpts, api.WithRequestMetrics(collector))
	}

	handler := api.NewHandler(record, handlerOpts...)
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	var metricsHandler http.Handler
	if collector != nil {
		metricsHandler = collector.Handler()
	}

	return &App{
		course:  record,
		metrics: collector,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler)),
	}, nil
}

// BuildRootHandler routes API traffic and, when metricsHandler is non-nil,
// exposes it at /metrics. The bare root redirects to the course document.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/api/course", http.StatusFound)
	}))

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Course returns the loaded course record.
func (a *App) Course() *course.Metadata {
	return a.course
}
