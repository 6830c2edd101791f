package cfgloader

import "io"

const defaultConfigDir = "./config"

// Options holds configuration options for Load.
type Options struct {
	// Silent disables printing the loaded (masked) config.
	Silent bool

	// ConfigDir is the directory holding ${ENVIRONMENT}.yaml files.
	ConfigDir string

	// Output receives the printed config. Defaults to stdout.
	Output io.Writer
}

// Option is a functional option for configuring Load.
type Option func(*Options)

// WithSilent disables config printing.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}

// WithConfigDir overrides the ./config lookup directory.
func WithConfigDir(dir string) Option {
	return func(o *Options) {
		o.ConfigDir = dir
	}
}

// WithOutput redirects the printed config.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}
