package server

import (
	"net"
	"strconv"
	"time"
)

// Config is the `http` section of the service configuration.
type Config struct {
	Host string `yaml:"host" validate:"required" default:"0.0.0.0"`
	Port int    `yaml:"port" validate:"required" default:"8080"`

	// HideErrorDetails drops trace and details from error bodies. Set it in production.
	HideErrorDetails bool `yaml:"hide_error_details"`

	ReadTimeout  time.Duration `yaml:"read_timeout"  validate:"required" default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"required" default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  validate:"required" default:"120s"`

	// HandleTimeout bounds a single handler, bulk uploads included.
	HandleTimeout time.Duration `yaml:"request_timeout" validate:"required" default:"30s"`

	// ShutdownTimeout bounds how long Stop waits for in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`

	// BodyLimit caps request bodies, including uploaded bulk files. Default is 16MB.
	BodyLimit int `yaml:"body_limit" validate:"required" default:"16777216"`
}

// Address returns the listen address in host:port form.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
