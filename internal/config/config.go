// Package config holds the configuration of the product catalog service.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Record and image storage drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

// Environment variables of the original deployment, honoured when the
// corresponding setting is left empty.
const (
	LegacyTableEnv  = "PRODUCTS_TABLE_NAME"
	LegacyBucketEnv = "PRODUCT_IMAGES_BUCKET_NAME"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	CORS       config.CORSConfig       `koanf:"cors"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	AWS        config.AWSConfig        `koanf:"aws"`
	Records    RecordsConfig           `koanf:"records"`
	Images     ImagesConfig            `koanf:"images"`
}

// RecordsConfig selects and configures the product record store.
type RecordsConfig struct {
	Driver   string                `koanf:"driver"`
	Table    string                `koanf:"table"`
	Database config.DatabaseConfig `koanf:"database"`
}

// ImagesConfig selects and configures the product image store.
type ImagesConfig struct {
	Driver         string                      `koanf:"driver"`
	Bucket         string                      `koanf:"bucket"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.Telemetry.String())
	if c.usesAWS() {
		b.WriteString(c.AWS.String())
	}

	b.WriteString("\n--- Records ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Records.Driver))
	switch c.Records.Driver {
	case DriverDynamoDB:
		b.WriteString(fmt.Sprintf("  table: %s\n", c.Records.Table))
	case DriverPostgres:
		b.WriteString(c.Records.Database.String())
	}

	b.WriteString("\n--- Images ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Images.Driver))
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Images.Bucket))
	b.WriteString(c.Images.CircuitBreaker.String())

	return b.String()
}

// Validate checks if the configuration values are valid
// and fills defaults and legacy fallbacks.
func (c *Config) Validate() error {
	c.applyLegacyEnv()

	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Records.Validate(); err != nil {
		return err
	}
	if err := c.Images.Validate(); err != nil {
		return err
	}
	if c.usesAWS() {
		if err := c.AWS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyLegacyEnv() {
	if c.Records.Table == "" {
		c.Records.Table = os.Getenv(LegacyTableEnv)
	}
	if c.Images.Bucket == "" {
		c.Images.Bucket = os.Getenv(LegacyBucketEnv)
	}
}

func (c *Config) usesAWS() bool {
	return c.Records.Driver == DriverDynamoDB || c.Images.Driver == DriverS3
}

func (c *RecordsConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = DriverDynamoDB
	}
	switch c.Driver {
	case DriverDynamoDB:
		if c.Table == "" {
			return fmt.Errorf("records.table is not configured (or set %s)", LegacyTableEnv)
		}
	case DriverPostgres:
		return c.Database.Validate()
	case DriverMemory:
	default:
		return fmt.Errorf("invalid records.driver %q: must be one of %s, %s, %s", c.Driver, DriverDynamoDB, DriverPostgres, DriverMemory)
	}
	return nil
}

func (c *ImagesConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = DriverS3
	}
	switch c.Driver {
	case DriverS3, DriverMemory:
	default:
		return fmt.Errorf("invalid images.driver %q: must be one of %s, %s", c.Driver, DriverS3, DriverMemory)
	}
	if c.Bucket == "" {
		return fmt.Errorf("images.bucket is not configured (or set %s)", LegacyBucketEnv)
	}
	return c.CircuitBreaker.Validate()
}
