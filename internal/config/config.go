// Package config loads the hellopool server configuration.
//
// Values are resolved in three layers: built-in defaults from [Default],
// an optional YAML file, and HELLOPOOL_* environment variables. Call
// [Load] once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const envPrefix = "HELLOPOOL_"

// Config holds the whole application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Pool    PoolConfig    `yaml:"pool" envPrefix:"POOL_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// ServerConfig configures the demonstration TCP server.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
	// MaxConns is how many connections are accepted before the server
	// stops listening. 0 means unlimited.
	MaxConns       int           `yaml:"max_conns" env:"MAX_CONNS"`
	ReadBufferSize int           `yaml:"read_buffer_size" env:"READ_BUFFER_SIZE"`
	SleepDelay     time.Duration `yaml:"sleep_delay" env:"SLEEP_DELAY"`
	StaticDir      string        `yaml:"static_dir" env:"STATIC_DIR"`
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	Workers      int  `yaml:"workers" env:"WORKERS"`
	LockOSThread bool `yaml:"lock_os_thread" env:"LOCK_OS_THREAD"`
	PinWorkers   bool `yaml:"pin_workers" env:"PIN_WORKERS"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	Namespace       string        `yaml:"namespace" env:"NAMESPACE"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the configuration the server runs with when nothing
// is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "0.0.0.0:2233",
			MaxConns:       2,
			ReadBufferSize: 1024,
			SleepDelay:     5 * time.Second,
			StaticDir:      "static",
		},
		Pool: PoolConfig{
			Workers: 4,
		},
		Metrics: MetricsConfig{
			Addr:            "",
			Namespace:       "hellopool",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadYAML decodes the YAML file at path into target. Fields missing from
// the file keep their current value.
func LoadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs error

	if c.Server.Addr == "" {
		errs = multierr.Append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxConns < 0 {
		errs = multierr.Append(errs, fmt.Errorf("server.max_conns must not be negative, got %d", c.Server.MaxConns))
	}
	if c.Server.ReadBufferSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("server.read_buffer_size must be positive, got %d", c.Server.ReadBufferSize))
	}
	if c.Server.SleepDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("server.sleep_delay must not be negative, got %s", c.Server.SleepDelay))
	}
	if c.Pool.Workers <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("pool.workers must be positive, got %d", c.Pool.Workers))
	}
	if c.Metrics.ShutdownTimeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("metrics.shutdown_timeout must not be negative, got %s", c.Metrics.ShutdownTimeout))
	}

	if errs != nil {
		return fmt.Errorf("invalid config: %w", errs)
	}
	return nil
}
