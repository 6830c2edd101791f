package sqlitedb

import "time"

// Config defines the configuration options for the embedded SQLite database.
type Config struct {
	// Debug enables SQL query logging through the shared debug hook.
	Debug bool `yaml:"debug" default:"false"`

	// Path is the database file. ":memory:" keeps everything in the single connection.
	Path string `yaml:"path" default:"tabletop.db" validate:"required"`

	// BusyTimeout is how long a writer waits on a locked database before failing.
	BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s"`
}
