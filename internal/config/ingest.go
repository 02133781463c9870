package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// IngestPolicy tunes spreadsheet ingestion. It is reloaded from ingest.yml
// while the process runs.
type IngestPolicy struct {
	StopOnRowError bool   `mapstructure:"stopOnRowError"`
	MaxRows        int    `mapstructure:"maxRows"`
	LockTTLSeconds int    `mapstructure:"lockTTLSeconds"`
	SheetName      string `mapstructure:"sheetName"`
}

func DefaultIngestPolicy() IngestPolicy {
	return IngestPolicy{
		StopOnRowError: getenvBool("INGEST_STOP_ON_ROW_ERROR", false),
		MaxRows:        int(getenvInt64("INGEST_MAX_ROWS", 50_000)),
		LockTTLSeconds: int(getenvInt64("INGEST_LOCK_TTL_SECONDS", 300)),
	}
}

func (p IngestPolicy) LockTTL() time.Duration {
	if p.LockTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.LockTTLSeconds) * time.Second
}

type IngestPolicyHolder struct {
	current atomic.Value // holds IngestPolicy
}

// NewStaticIngestPolicy wraps a fixed policy, for tests and one-shot tools.
func NewStaticIngestPolicy(p IngestPolicy) *IngestPolicyHolder {
	holder := &IngestPolicyHolder{}
	holder.current.Store(p)
	return holder
}

func NewIngestPolicyHolder(log *zap.Logger) (*IngestPolicyHolder, error) {
	log = log.Named("config.ingest")
	v := viper.New()

	v.SetConfigName("ingest")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/storecogs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STORECOGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultIngestPolicy()
	v.SetDefault("ingest.stopOnRowError", defaults.StopOnRowError)
	v.SetDefault("ingest.maxRows", defaults.MaxRows)
	v.SetDefault("ingest.lockTTLSeconds", defaults.LockTTLSeconds)
	v.SetDefault("ingest.sheetName", "")

	fromFile := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fromFile = false
	}

	var policy IngestPolicy
	if err := v.UnmarshalKey("ingest", &policy); err != nil {
		return nil, err
	}
	if err := validateIngestPolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticIngestPolicy(policy)
	if !fromFile {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated IngestPolicy
		if err := v.UnmarshalKey("ingest", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateIngestPolicy(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *IngestPolicyHolder) Get() IngestPolicy {
	return h.current.Load().(IngestPolicy)
}

func validateIngestPolicy(p IngestPolicy) error {
	if p.MaxRows < 0 {
		return errors.New("ingest.maxRows cannot be negative")
	}
	if p.LockTTLSeconds < 0 {
		return errors.New("ingest.lockTTLSeconds cannot be negative")
	}
	return nil
}
