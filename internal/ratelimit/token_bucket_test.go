package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/storecogs/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
	assert.Equal(t, 20*time.Second, defaultBucketTTL(1, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(3), castToInt("3"))
	assert.Equal(t, 0.75, castToFloat("0.75"))
	assert.Equal(t, 2.0, castToFloat(int64(2)))
	assert.Equal(t, 0.0, castToFloat(nil))
}

func TestNilUploadLimiterAllows(t *testing.T) {
	var l *UploadLimiter
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), "10.0.0.1")
	assert.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewUploadLimiterWithoutRedis(t *testing.T) {
	assert.Nil(t, NewUploadLimiter(nil, config.Config{UploadRatePerMinute: 10, UploadBurst: 2}, zap.NewNop()))
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	var b *TokenBucket
	_, err := b.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}
