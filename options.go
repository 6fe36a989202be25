package colormanage

import "github.com/gogpu/colormanage/engine"

// DefaultMemoryLimit is the display buffer cache budget used when
// WithMemoryLimit is not given.
const DefaultMemoryLimit = 256 << 20

// ConfigEnv names the environment variable holding the path of a built-in
// engine config to load when no explicit source is given.
const ConfigEnv = "COLORMANAGE_CONFIG"

// Option configures a Manager during creation.
// Use functional options to customize Manager behavior.
//
// Example:
//
//	// Default configuration
//	m := colormanage.New()
//
//	// Explicit config file and a 64 MiB cache
//	m := colormanage.New(
//	    colormanage.WithConfigFile("studio.json"),
//	    colormanage.WithMemoryLimit(64<<20),
//	)
type Option func(*options)

// options holds optional configuration for Manager creation.
type options struct {
	engine      engine.Engine
	config      engine.Config
	configFile  string
	memoryLimit int64
	workers     int
}

// defaultOptions returns the default manager options.
func defaultOptions() options {
	return options{
		memoryLimit: DefaultMemoryLimit,
	}
}

// WithEngine sets a custom transform engine and the config it serves.
// It takes precedence over WithConfigFile and the environment.
//
// Use this for dependency injection of other engine implementations.
func WithEngine(eng engine.Engine, cfg engine.Config) Option {
	return func(o *options) {
		if eng != nil && cfg != nil {
			o.engine = eng
			o.config = cfg
		}
	}
}

// WithConfigFile loads the built-in engine config at path instead of the
// one named by the environment.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithMemoryLimit sets the byte budget shared by every buffer's display
// cache. A limit of 0 or less disables eviction.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithWorkers sets the number of goroutines used for threaded processing.
// 0 or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
