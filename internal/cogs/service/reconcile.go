package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/pkg/db"
	"go.uber.org/zap"
)

type outcome int

const (
	outcomeInserted outcome = iota + 1
	outcomeUpdated
)

func (o outcome) String() string {
	switch o {
	case outcomeInserted:
		return "inserted"
	case outcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// SrCounter hands out consecutive Sr values for one batch. A value is only
// consumed once Commit is called, so a failed insert leaves no gap.
type SrCounter struct {
	last int64
}

func NewSrCounter(seed int64) *SrCounter {
	if seed < 0 {
		seed = 0
	}
	return &SrCounter{last: seed}
}

// Peek returns the value the next successful insert will take.
func (c *SrCounter) Peek() int64 { return c.last + 1 }

func (c *SrCounter) Commit() { c.last++ }

func (c *SrCounter) Last() int64 { return c.last }

// Reseed moves the counter to top, and always past the value Peek returned,
// since that value is already taken.
func (c *SrCounter) Reseed(top int64) {
	if top <= c.last {
		top = c.last + 1
	}
	c.last = top
}

// srAttempts bounds inserts of one report when its Sr keeps colliding with
// reports stored by another writer.
const srAttempts = 3

// reconcile writes candidate either onto the stored report with the same
// natural key or as a new report numbered from counter. The caller must hold
// the ingest lock.
func (s *Service) reconcile(ctx context.Context, counter *SrCounter, candidate *domain.Report) (outcome, *domain.Report, error) {
	key := candidate.NaturalKey()

	existing, err := s.repo.FindByNaturalKey(ctx, s.db, key)
	if err != nil {
		return 0, nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	if existing != nil {
		return s.overwrite(ctx, existing, candidate)
	}

	now := s.clock.Now()
	report := *candidate
	report.ID = s.genID.Generate()
	report.CreatedAt = now
	report.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		report.Sr = counter.Peek()
		err := s.repo.Insert(ctx, s.db, &report)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return 0, nil, fmt.Errorf("insert %s: %w", key, err)
		}

		// Another writer stored the same key first.
		existing, lookupErr := s.repo.FindByNaturalKey(ctx, s.db, key)
		if lookupErr != nil {
			return 0, nil, fmt.Errorf("insert %s: %w", key, err)
		}
		if existing != nil {
			return s.overwrite(ctx, existing, candidate)
		}

		// Otherwise the Sr was taken outside this batch.
		if attempt >= srAttempts {
			return 0, nil, fmt.Errorf("insert %s: sr %d: %w", key, report.Sr, err)
		}
		top, maxErr := s.repo.MaxSr(ctx, s.db)
		if maxErr != nil {
			return 0, nil, fmt.Errorf("insert %s: %w", key, maxErr)
		}
		s.log.Warn("sr collision, reseeding counter",
			zap.String("key", key.String()),
			zap.Int64("sr", report.Sr),
			zap.Int64("max_sr", top),
		)
		counter.Reseed(top)
	}

	counter.Commit()
	return outcomeInserted, &report, nil
}

func (s *Service) overwrite(ctx context.Context, existing, candidate *domain.Report) (outcome, *domain.Report, error) {
	existing.CopyContent(candidate)
	existing.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return 0, nil, fmt.Errorf("update %s: %w", existing.NaturalKey(), err)
	}
	return outcomeUpdated, existing, nil
}
