package collector

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/c360/reportstream/errors"
)

// Config holds the collector's runtime configuration. All fields are
// loadable from the environment via LoadConfig.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"REPORTSTREAM_ADDR" envDefault:":8910"`

	// Path is the URL path that accepts report uploads.
	Path string `env:"REPORTSTREAM_PATH" envDefault:"/reports"`

	// MaxRequestSize caps the size of an upload body in bytes.
	MaxRequestSize int64 `env:"REPORTSTREAM_MAX_REQUEST_SIZE" envDefault:"1048576"`

	// StoreTimeout bounds a single sink store call, including retries.
	StoreTimeout time.Duration `env:"REPORTSTREAM_STORE_TIMEOUT" envDefault:"10s"`

	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout time.Duration `env:"REPORTSTREAM_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// NATSURL enables the NATS sink when non-empty.
	NATSURL string `env:"REPORTSTREAM_NATS_URL"`

	// NATSSubjectPrefix is prepended to the report type to form the
	// publish subject, e.g. "reports.network-error".
	NATSSubjectPrefix string `env:"REPORTSTREAM_NATS_SUBJECT_PREFIX" envDefault:"reports"`
}

// LoadConfig reads collector configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.WrapFatal(err, "Collector", "LoadConfig", "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the collector cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.WrapFatal(errors.ErrMissingConfig, "Collector", "Validate", "listen address required")
	}
	if c.Path == "" || c.Path[0] != '/' {
		return errors.WrapFatal(
			fmt.Errorf("%w: path %q must start with /", errors.ErrInvalidConfig, c.Path),
			"Collector", "Validate", "invalid upload path")
	}
	if c.MaxRequestSize <= 0 {
		return errors.WrapFatal(
			fmt.Errorf("%w: max request size must be positive, got %d", errors.ErrInvalidConfig, c.MaxRequestSize),
			"Collector", "Validate", "invalid request size limit")
	}
	if c.StoreTimeout <= 0 {
		return errors.WrapFatal(
			fmt.Errorf("%w: store timeout must be positive, got %s", errors.ErrInvalidConfig, c.StoreTimeout),
			"Collector", "Validate", "invalid store timeout")
	}
	if c.NATSURL != "" && c.NATSSubjectPrefix == "" {
		return errors.WrapFatal(
			fmt.Errorf("%w: NATS subject prefix required when NATS URL is set", errors.ErrMissingConfig),
			"Collector", "Validate", "missing subject prefix")
	}
	return nil
}
