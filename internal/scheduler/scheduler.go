package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/clock"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	obslogger "github.com/smallbiznis/storecogs/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid config")

const jobRecoverySweep = "import.recovery_sweep"

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Imports importlogdomain.Service
	Config  Config `optional:"true"`
}

// Scheduler runs background maintenance of the import log.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	genID   *snowflake.Node
	imports importlogdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.GenID == nil || p.Imports == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		genID:   p.GenID,
		imports: p.Imports,
	}, nil
}

// RunForever runs every job once, then on each tick until ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		_ = s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runJob(ctx, jobRecoverySweep, s.cfg.JobTimeout, s.RecoverySweepJob)
}

// RecoverySweepJob closes import batches whose writer went away without
// finishing them.
func (s *Scheduler) RecoverySweepJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.RecoveryThreshold)
	closed, err := s.imports.MarkStale(ctx, cutoff)
	if run := jobRunFromContext(ctx); run != nil {
		run.AddProcessed(closed)
	}
	return err
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name)
	s.logJobStart(ctx, run)

	err := fn(ctx)
	if err != nil {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	log := s.logger(ctx).With(zap.String("job", name), zap.String("run_id", run.runID))
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return err
	}
	log.Error("job failed", zap.Error(err))
	return err
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}
