package config

import (
	"fmt"
	"strings"
)

// AWSConfig holds the settings shared by every AWS client of a service.
// Endpoint is only set when talking to an emulator such as LocalStack.
type AWSConfig struct {
	Region           string `koanf:"region"`
	Endpoint         string `koanf:"endpoint"`
	S3ForcePathStyle bool   `koanf:"s3forcepathstyle"`
}

// String returns a string representation of the AWS configuration.
func (c *AWSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- AWS ---\n")
	b.WriteString(fmt.Sprintf("  region: %s\n", c.Region))
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", c.Endpoint))
	b.WriteString(fmt.Sprintf("  s3forcepathstyle: %t\n", c.S3ForcePathStyle))
	return b.String()
}

func (c *AWSConfig) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("AWS region is not configured")
	}
	if c.Endpoint != "" && !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("AWS endpoint must be an http(s) URL: %s", c.Endpoint)
	}
	return nil
}
