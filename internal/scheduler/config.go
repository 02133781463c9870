package scheduler

import (
	"time"

	"github.com/smallbiznis/storecogs/internal/config"
)

// Config controls scheduler intervals.
type Config struct {
	RunInterval       time.Duration
	JobTimeout        time.Duration
	RecoveryThreshold time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:       time.Minute,
		JobTimeout:        30 * time.Second,
		RecoveryThreshold: 15 * time.Minute,
	}
}

// ProvideConfig derives the recovery threshold from the batch lock TTL: a
// batch running longer than twice the lock lifetime has lost its writer.
func ProvideConfig(policy *config.IngestPolicyHolder) Config {
	cfg := DefaultConfig()
	if policy != nil {
		cfg.RecoveryThreshold = 2 * policy.Get().LockTTL()
	}
	return cfg
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.RecoveryThreshold <= 0 {
		c.RecoveryThreshold = defaults.RecoveryThreshold
	}
	return c
}
