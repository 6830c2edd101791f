package app

import (
	"github.com/rise-and-shine/tabletop/filestore/miniowr"
	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/observability/tracing"
	"github.com/rise-and-shine/tabletop/pg"
	"github.com/rise-and-shine/tabletop/rediswr"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/token"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the service configuration, loaded with cfgloader.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Logger   logger.Config  `yaml:"logger"`
	Tracing  tracing.Config `yaml:"tracing"`
	HTTP     server.Config  `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Schemas  SchemasConfig  `yaml:"schemas"`
	Auth     token.Config   `yaml:"auth"`

	// Redis, when set, serializes bulk loads across instances.
	Redis *rediswr.Config `yaml:"redis"`

	Seeds SeedsConfig `yaml:"seeds"`
}

type ServiceConfig struct {
	Name    string `yaml:"name"    default:"tabletop"`
	Version string `yaml:"version" default:"dev"`
}

// DatabaseConfig selects the storage backend. Replica, when set, serves the read endpoints.
type DatabaseConfig struct {
	Driver   string          `yaml:"driver"   default:"sqlite" validate:"oneof=postgres sqlite"`
	Postgres *pg.Config      `yaml:"postgres" validate:"required_if=Driver postgres"`
	Replica  *pg.Config      `yaml:"replica"`
	SQLite   sqlitedb.Config `yaml:"sqlite"`
}

// SchemasConfig names the PostgreSQL schemas of the two features. SQLite keeps
// every table in its main schema.
type SchemasConfig struct {
	DnD           string `yaml:"dnd"            default:"dnd"`
	EventPlanning string `yaml:"event_planning" default:"event_planning"`
}

// SeedsConfig tells the seed command where seed files live.
type SeedsConfig struct {
	Dir   string          `yaml:"dir"   default:"./seeds"`
	Minio *miniowr.Config `yaml:"minio"`
}

// schemas returns the schema names the configured driver actually uses.
func (c Config) schemas() SchemasConfig {
	if c.Database.Driver == DriverSQLite {
		return SchemasConfig{DnD: sqlitedb.Schema, EventPlanning: sqlitedb.Schema}
	}
	return c.Schemas
}
