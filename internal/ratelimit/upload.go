package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/storecogs/internal/config"
	"go.uber.org/zap"
)

const keyUpload = "storecogs:upload:%s"

var ErrRateLimited = errors.New("rate_limited")

// UploadLimiter throttles spreadsheet uploads per client. A nil or disabled
// limiter allows everything.
type UploadLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

// NewUploadLimiter returns nil when Redis is not configured or the limit is
// switched off.
func NewUploadLimiter(client *redis.Client, cfg config.Config, log *zap.Logger) *UploadLimiter {
	if client == nil || cfg.UploadRatePerMinute <= 0 {
		return nil
	}
	burst := cfg.UploadBurst
	if burst <= 0 {
		burst = 1
	}
	return &UploadLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.UploadRatePerMinute / 60,
		burst:  burst,
		log:    log.Named("ratelimit.upload"),
	}
}

func (l *UploadLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes a token for client. Redis failures let the request through.
func (l *UploadLimiter) Allow(ctx context.Context, client string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyUpload, strings.TrimSpace(client)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return Result{Allowed: true}, nil
	}
	if !res.Allowed {
		return res, ErrRateLimited
	}
	return res, nil
}
