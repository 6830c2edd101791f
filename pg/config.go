package pg

import (
	"fmt"
	"time"
)

// Config defines the configuration options for PostgreSQL connections.
type Config struct {
	// Debug enables SQL query logging.
	Debug bool `yaml:"debug" default:"false"`

	Host     string `yaml:"host"     validate:"required"`
	Port     int    `yaml:"port"     validate:"required"`
	User     string `yaml:"user"     validate:"required"`
	Password string `yaml:"password" validate:"required" mask:"true"`
	Database string `yaml:"database" validate:"required"`

	// SSLMode is one of: disable, allow, prefer, require, verify-ca, verify-full.
	SSLMode        string        `yaml:"sslmode"         default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`

	// ConnectAttempts is how many pings are tried at startup before giving up.
	ConnectAttempts   uint          `yaml:"connect_attempts"    default:"5"`
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay" default:"1s"`

	PoolMaxConns        int32         `yaml:"pool_max_conns"          default:"8"`
	PoolMinConns        int32         `yaml:"pool_min_conns"          default:"1"`
	PoolMaxConnLifetime time.Duration `yaml:"pool_max_conn_lifetime"  default:"1h"`
	PoolMaxConnIdleTime time.Duration `yaml:"pool_max_conn_idle_time" default:"30m"`
}

// dsn returns a PostgreSQL connection string built from the configuration.
// Tables are always schema-qualified, so no search_path is set.
func (c Config) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
		int(c.ConnectTimeout.Seconds()),
	)
}
