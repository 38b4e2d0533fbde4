package config

import (
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.HTTPServer.Port = 8080
	c.HTTPServer.Timeout.Read = time.Second
	c.HTTPServer.Timeout.Write = time.Second
	c.HTTPServer.Timeout.Idle = time.Second
	c.HTTPServer.Timeout.ReadHeader = time.Second
	c.GRPC.Port = "9090"
	c.Shutdown.Timeout = time.Second
	c.AWS.Region = "us-east-1"
	c.Records = RecordsConfig{Driver: DriverDynamoDB, Table: "Products"}
	c.Images = ImagesConfig{Driver: DriverS3, Bucket: "images"}
	return c
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(c *Config)
		env         map[string]string
		expectError string
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "Success - defaults filled",
			mutate: func(c *Config) {
				c.Records.Driver = ""
				c.Images.Driver = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DriverDynamoDB, c.Records.Driver)
				assert.Equal(t, DriverS3, c.Images.Driver)
				assert.Equal(t, "json", c.Log.Format)
				assert.Equal(t, []string{"*"}, c.CORS.AllowedOrigins)
				assert.Equal(t, config.DefaultMaxBodyBytes, c.HTTPServer.MaxBodyBytes)
			},
		},
		{
			name: "Success - legacy env fallbacks",
			mutate: func(c *Config) {
				c.Records.Table = ""
				c.Images.Bucket = ""
			},
			env: map[string]string{LegacyTableEnv: "LegacyTable", LegacyBucketEnv: "legacy-bucket"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "LegacyTable", c.Records.Table)
				assert.Equal(t, "legacy-bucket", c.Images.Bucket)
			},
		},
		{
			name: "Success - explicit settings win over legacy env",
			env:  map[string]string{LegacyTableEnv: "LegacyTable"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "Products", c.Records.Table)
			},
		},
		{
			name: "Success - memory drivers need no AWS region",
			mutate: func(c *Config) {
				c.AWS.Region = ""
				c.Records = RecordsConfig{Driver: DriverMemory}
				c.Images.Driver = DriverMemory
			},
		},
		{
			name: "Success - explicit body limit kept",
			mutate: func(c *Config) {
				c.HTTPServer.MaxBodyBytes = 1024
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, int64(1024), c.HTTPServer.MaxBodyBytes)
			},
		},
		{
			name: "Error - negative body limit",
			mutate: func(c *Config) {
				c.HTTPServer.MaxBodyBytes = -1
			},
			expectError: "max body bytes",
		},
		{
			name: "Error - missing table",
			mutate: func(c *Config) {
				c.Records.Table = ""
			},
			expectError: "records.table",
		},
		{
			name: "Error - missing bucket",
			mutate: func(c *Config) {
				c.Images.Bucket = ""
			},
			expectError: "images.bucket",
		},
		{
			name: "Error - unknown record driver",
			mutate: func(c *Config) {
				c.Records.Driver = "mongo"
			},
			expectError: "records.driver",
		},
		{
			name: "Error - unknown image driver",
			mutate: func(c *Config) {
				c.Images.Driver = "gcs"
			},
			expectError: "images.driver",
		},
		{
			name: "Error - postgres without url",
			mutate: func(c *Config) {
				c.Records = RecordsConfig{Driver: DriverPostgres}
			},
			expectError: "database URL",
		},
		{
			name: "Success - postgres",
			mutate: func(c *Config) {
				c.Records = RecordsConfig{Driver: DriverPostgres, Database: config.DatabaseConfig{
					URL: "postgres://u:p@localhost:5432/catalog", Timeout: time.Second,
				}}
			},
		},
		{
			name: "Error - AWS region missing",
			mutate: func(c *Config) {
				c.AWS.Region = ""
			},
			expectError: "AWS region",
		},
		{
			name: "Error - shutdown timeout missing",
			mutate: func(c *Config) {
				c.Shutdown.Timeout = 0
			},
			expectError: "shutdown timeout",
		},
		{
			name: "Error - breaker enabled without thresholds",
			mutate: func(c *Config) {
				c.Images.CircuitBreaker.Enabled = true
			},
			expectError: "circuitbreaker",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			t.Setenv(LegacyTableEnv, "")
			t.Setenv(LegacyBucketEnv, "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			c := validConfig()
			if tc.mutate != nil {
				tc.mutate(c)
			}
			// when
			err := c.Validate()
			// then
			if tc.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError)
				return
			}
			require.NoError(t, err)
			if tc.check != nil {
				tc.check(t, c)
			}
		})
	}
}

func Test_Config_String_MasksDatabaseURL(t *testing.T) {
	c := validConfig()
	c.Records = RecordsConfig{Driver: DriverPostgres, Database: config.DatabaseConfig{
		URL: "postgres://user:secret@db:5432/catalog", Timeout: time.Second,
	}}

	s := c.String()

	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "****@db:5432/catalog")
	assert.Contains(t, s, "driver: postgres")
}
