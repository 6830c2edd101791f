package pagination

const (
	defaultLimit = 100
)

// Options configures pagination behavior.
type Options struct {
	// DefaultLimit applies when the caller sends no limit at all.
	DefaultLimit int
	// MaxLimit caps explicit limits. Zero leaves them uncapped.
	MaxLimit int
}

type Option func(*Options)

func WithDefaultLimit(limit int) Option {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(maxLimit int) Option {
	return func(o *Options) {
		o.MaxLimit = maxLimit
	}
}

func defaultOptions() Options {
	return Options{DefaultLimit: defaultLimit}
}
