// Package app contains the application setup for the product catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/product/blob"
	"github.com/abgdnv/productcatalog/internal/product/handler"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the gRPC health service name reported by the catalog.
const HealthServiceName = "product.v1.ProductService"

type Dependencies struct {
	ProductService service.ProductService
	Health         *health.Server
	Logger         *slog.Logger
}

// SetupDependencies wires the product workflow to the given stores.
func SetupDependencies(records store.ProductStore, blobs blob.BlobStore, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(records, blobs, logger),
		Health:         health.NewServer(),
		Logger:         logger,
	}
}

// Stores holds the adapters selected by configuration and releases their resources on Close.
type Stores struct {
	Records store.ProductStore
	Blobs   blob.BlobStore
	closers []func()
}

// Close releases every resource opened by SetupStores.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// SetupStores builds the record and blob stores selected by cfg.
func SetupStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	stores := &Stores{}

	var sess *session.Session
	if cfg.Records.Driver == config.DriverDynamoDB || cfg.Images.Driver == config.DriverS3 {
		var err error
		sess, err = bootstrap.NewAWSSession(cfg.AWS)
		if err != nil {
			return nil, err
		}
	}

	switch cfg.Records.Driver {
	case config.DriverDynamoDB:
		stores.Records = store.NewDynamoDBStore(dynamodb.New(sess), cfg.Records.Table)
		logger.Info("Using DynamoDB record store", "table", cfg.Records.Table)
	case config.DriverPostgres:
		dbCfg := cfg.Records.Database
		if dbCfg.Migrate {
			if err := store.Migrate(dbCfg.URL); err != nil {
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, dbCfg.URL, dbCfg.Timeout)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, dbPool.Close)
		stores.Records = store.NewPgStore(dbPool)
		logger.Info("Using PostgreSQL record store")
	case config.DriverMemory:
		stores.Records = store.NewInMemoryStore()
		logger.Warn("Using in-memory record store, data is lost on restart")
	default:
		return nil, fmt.Errorf("unsupported records driver %q", cfg.Records.Driver)
	}

	switch cfg.Images.Driver {
	case config.DriverS3:
		stores.Blobs = blob.NewS3Store(s3.New(sess), cfg.Images.Bucket)
		logger.Info("Using S3 image store", "bucket", cfg.Images.Bucket)
	case config.DriverMemory:
		stores.Blobs = blob.NewInMemoryStore(cfg.Images.Bucket)
		logger.Warn("Using in-memory image store, data is lost on restart")
	default:
		stores.Close()
		return nil, fmt.Errorf("unsupported images driver %q", cfg.Images.Driver)
	}
	if cfg.Images.CircuitBreaker.Enabled {
		stores.Blobs = blob.NewBreakerStore(stores.Blobs, cfg.Images.CircuitBreaker)
		logger.Info("Image store guarded by circuit breaker")
	}

	return stores, nil
}

// SetupHttpHandler initializes the HTTP routes for the product catalog.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, opts server.RouterOptions) http.Handler {
	mux := server.NewChiRouter(deps.Logger, opts)
	handler.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux)
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the product catalog.
func SetupHttpServer(deps *Dependencies, cfg *config.Config, tracingName string) *http.Server {
	mux := SetupHttpHandler(deps, server.RouterOptions{
		CORS:         cfg.CORS,
		TracingName:  tracingName,
		MaxBodyBytes: cfg.HTTPServer.MaxBodyBytes,
	})
	return server.NewHTTPServer(server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	deps.Health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.WithHealth(deps.Health))
}
