package lock

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds tunables for the lock core: limits on how many granted
// locks and waiters a single file may accumulate, and a default timeout for
// callers that want a bounded wait without picking one themselves.
type Config struct {
	// MaxLocksPerFile bounds the number of GRANTED records a single file's
	// list may hold. 0 disables the check.
	MaxLocksPerFile int `mapstructure:"max_locks_per_file" yaml:"max_locks_per_file"`

	// MaxWaitersPerLock bounds the size of a record's dependents set. 0
	// disables the check.
	MaxWaitersPerLock int `mapstructure:"max_waiters_per_lock" yaml:"max_waiters_per_lock"`

	// DefaultBlockingTimeout is used by callers that want a bounded wait
	// without specifying one explicitly; the core itself always takes an
	// explicit timeout from the caller and never consults this field.
	DefaultBlockingTimeout time.Duration `mapstructure:"default_blocking_timeout" yaml:"default_blocking_timeout"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		MaxLocksPerFile:        1000,
		MaxWaitersPerLock:      256,
		DefaultBlockingTimeout: 60 * time.Second,
	}
}

// LoadConfig reads a Config from a YAML file at path, layering it over
// DefaultConfig so a partial file only overrides the keys it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("max_locks_per_file", cfg.MaxLocksPerFile)
	v.SetDefault("max_waiters_per_lock", cfg.MaxWaitersPerLock)
	v.SetDefault("default_blocking_timeout", cfg.DefaultBlockingTimeout)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
