package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	"github.com/smallbiznis/storecogs/internal/config"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeImports struct {
	importlogdomain.Service

	cutoffs []time.Time
	closed  int
	err     error
}

func (f *fakeImports) MarkStale(ctx context.Context, cutoff time.Time) (int, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.closed, f.err
}

func newTestScheduler(t *testing.T, imports *fakeImports, log *zap.Logger) (*Scheduler, *clock.FakeClock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s, err := New(Params{
		Log:     log,
		Clock:   clk,
		GenID:   node,
		Imports: imports,
		Config:  Config{RecoveryThreshold: 10 * time.Minute},
	})
	require.NoError(t, err)
	return s, clk
}

func TestRecoverySweepUsesThreshold(t *testing.T) {
	imports := &fakeImports{closed: 2}
	core, logs := observer.New(zapcore.DebugLevel)
	s, clk := newTestScheduler(t, imports, zap.New(core))

	require.NoError(t, s.RunOnce(context.Background()))

	require.Len(t, imports.cutoffs, 1)
	assert.Equal(t, clk.Now().Add(-10*time.Minute), imports.cutoffs[0])

	finish := logs.FilterMessage("scheduler.job.finish").All()
	require.Len(t, finish, 1)
	assert.Equal(t, zapcore.InfoLevel, finish[0].Level)
	assert.EqualValues(t, 2, finish[0].ContextMap()["processed_count"])
}

func TestRecoverySweepFailureIsLogged(t *testing.T) {
	imports := &fakeImports{err: errors.New("db down")}
	core, logs := observer.New(zapcore.DebugLevel)
	s, _ := newTestScheduler(t, imports, zap.New(core))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("job failed").Len())
	assert.Equal(t, zapcore.WarnLevel, logs.FilterMessage("scheduler.job.finish").All()[0].Level)
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	imports := &fakeImports{}
	s, _ := newTestScheduler(t, imports, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunForever(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunForever did not return after cancel")
	}
	assert.NotEmpty(t, imports.cutoffs)
}

func TestNewRejectsMissingDeps(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProvideConfigFollowsLockTTL(t *testing.T) {
	cfg := ProvideConfig(config.NewStaticIngestPolicy(config.IngestPolicy{LockTTLSeconds: 120}))
	assert.Equal(t, 4*time.Minute, cfg.RecoveryThreshold)
	assert.Equal(t, time.Minute, cfg.RunInterval)
}
