package rediswr

import "time"

// Config is the optional `redis` section. When present, bulk loads lock
// through Redis instead of in process.
type Config struct {
	// Addrs is a comma separated host:port list, so it can come from one env variable.
	Addrs    string `yaml:"addrs"    validate:"required"`
	Username string `yaml:"username"`
	Password string `yaml:"password" mask:"true"`
	DB       int    `yaml:"db"       validate:"gte=0"`
	Cluster  bool   `yaml:"cluster"`

	LockTTL   time.Duration `yaml:"lock_ttl"   default:"10m"`
	KeyPrefix string        `yaml:"key_prefix" default:"tabletop:lock:"`
}
