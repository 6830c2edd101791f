package miniowr

// Config points at the bucket holding seed files.
type Config struct {
	Endpoint  string `yaml:"endpoint"   validate:"required"`
	AccessKey string `yaml:"access_key" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`
	Bucket    string `yaml:"bucket"     validate:"required"`

	// Prefix is prepended to every path, e.g. "seeds/2024-10".
	Prefix string `yaml:"prefix"`

	Region string `yaml:"region"`
	UseSSL bool   `yaml:"use_ssl" default:"true"`
}
