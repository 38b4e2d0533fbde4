package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPConfig has the configuration for the HTTP server.
type HTTPConfig struct {
	Port           int
	MaxHeaderBytes int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	ReadHeader     time.Duration
}

// NewHTTPServer creates and configures a new HTTP server instance.
func NewHTTPServer(cfg HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// RouterOptions toggles the optional middleware of NewChiRouter.
// An empty TracingName disables span creation; a zero MaxBodyBytes leaves request bodies unbounded.
type RouterOptions struct {
	CORS         config.CORSConfig
	TracingName  string
	MaxBodyBytes int64
}

// NewChiRouter creates a new Chi router with a set of
// middleware for request ID injection, structured logging, CORS, and recovery.
func NewChiRouter(logger *slog.Logger, opts RouterOptions) *chi.Mux {
	mux := chi.NewRouter()
	if opts.TracingName != "" {
		mux.Use(otelhttp.NewMiddleware(opts.TracingName))
	}
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDHeader)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	mux.Use(newCORS(opts.CORS))
	if opts.MaxBodyBytes > 0 {
		mux.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}
	return mux
}

func newCORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         cfg.MaxAge,
	})
}
