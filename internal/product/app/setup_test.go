package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/product/blob"
	pkgconfig "github.com/abgdnv/productcatalog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func Test_SetupStores(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         config.Config
		expectError bool
		check       func(t *testing.T, s *Stores)
	}{
		{
			name: "memory drivers",
			cfg: config.Config{
				Records: config.RecordsConfig{Driver: config.DriverMemory},
				Images:  config.ImagesConfig{Driver: config.DriverMemory, Bucket: "images"},
			},
			check: func(t *testing.T, s *Stores) {
				assert.IsType(t, &blob.InMemoryStore{}, s.Blobs)
			},
		},
		{
			name: "AWS drivers build clients without network access",
			cfg: config.Config{
				Records: config.RecordsConfig{Driver: config.DriverDynamoDB, Table: "Products"},
				Images:  config.ImagesConfig{Driver: config.DriverS3, Bucket: "images"},
			},
			check: func(t *testing.T, s *Stores) {
				assert.IsType(t, &blob.S3Store{}, s.Blobs)
			},
		},
		{
			name: "breaker wraps the blob store",
			cfg: config.Config{
				Records: config.RecordsConfig{Driver: config.DriverMemory},
				Images: config.ImagesConfig{Driver: config.DriverMemory, Bucket: "images", CircuitBreaker: configBreaker()},
			},
			check: func(t *testing.T, s *Stores) {
				assert.IsType(t, &blob.BreakerStore{}, s.Blobs)
			},
		},
		{
			name: "unknown records driver",
			cfg: config.Config{
				Records: config.RecordsConfig{Driver: "mongo"},
				Images:  config.ImagesConfig{Driver: config.DriverMemory, Bucket: "images"},
			},
			expectError: true,
		},
		{
			name: "unknown images driver",
			cfg: config.Config{
				Records: config.RecordsConfig{Driver: config.DriverMemory},
				Images:  config.ImagesConfig{Driver: "gcs", Bucket: "images"},
			},
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := tc.cfg
			cfg.AWS.Region = "us-east-1"
			// when
			stores, err := SetupStores(context.Background(), &cfg, testLogger())
			// then
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer stores.Close()
			assert.NotNil(t, stores.Records)
			tc.check(t, stores)
		})
	}
}

func configBreaker() pkgconfig.CircuitBreakerConfig {
	return pkgconfig.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 3,
		ErrorRatePercent:    50,
		OpenTimeout:         time.Second,
	}
}

func Test_SetupGrpcServer_ReportsServing(t *testing.T) {
	// given
	deps := SetupDependencies(nil, nil, testLogger())
	// when
	srv := SetupGrpcServer(deps, false)
	defer srv.Stop()
	resp, err := deps.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthServiceName})
	// then
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	assert.Contains(t, srv.GetServiceInfo(), "grpc.health.v1.Health")
}
