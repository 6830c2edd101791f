package tracing

import "time"

const reconnectionPeriod = 10 * time.Second

// Config defines the OTLP exporter settings.
type Config struct {
	// Disable installs a no-op tracer provider.
	Disable bool `yaml:"disable" default:"true"`

	ExporterHost string `yaml:"exporter_host" default:"localhost"`
	ExporterPort int    `yaml:"exporter_port" default:"4317"`

	// SampleRate is the fraction of root traces that are recorded.
	SampleRate float64 `yaml:"sample_rate" default:"1" validate:"gte=0,lte=1"`

	// Tags are attached to every span as resource attributes.
	Tags map[string]string `yaml:"tags"`
}
