package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel/attribute"
)

// TelemetryConfig holds OpenTelemetry settings from environment variables.
// Without an endpoint the tools run fully offline.
type TelemetryConfig struct {
	ServiceName        string `env:"OTEL_SERVICE_NAME" envDefault:"tickbin"`
	ResourceAttributes string `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:""`
	ExporterEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	TracesEndpoint     string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT" envDefault:""`
}

// ParseTelemetryConfig reads TelemetryConfig from the environment.
func ParseTelemetryConfig() (*TelemetryConfig, error) {
	var cfg TelemetryConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing telemetry config: %w", err)
	}
	return &cfg, nil
}

// Endpoint returns the endpoint to export traces to, preferring the
// traces-specific variable. Empty means telemetry stays disabled.
func (c *TelemetryConfig) Endpoint() string {
	if c.TracesEndpoint != "" {
		return c.TracesEndpoint
	}
	return c.ExporterEndpoint
}

// ResourceAttributeList parses OTEL_RESOURCE_ATTRIBUTES
// (key1=value1,key2=value2) into attributes.
func (c *TelemetryConfig) ResourceAttributeList() []attribute.KeyValue {
	if c.ResourceAttributes == "" {
		return nil
	}

	var attrs []attribute.KeyValue
	for _, pair := range strings.Split(c.ResourceAttributes, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		attrs = append(attrs, attribute.String(key, strings.TrimSpace(kv[1])))
	}
	return attrs
}
