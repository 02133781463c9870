package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/storecogs/internal/cogs/domain"
	"github.com/smallbiznis/storecogs/internal/lock"
	"github.com/smallbiznis/storecogs/internal/tabular"
	"github.com/smallbiznis/storecogs/pkg/db"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type submitInput struct {
	StoreNumber string `validate:"required"`
	Week        string `validate:"required"`
}

func validateSubmit(r domain.Report) error {
	err := validate.Struct(submitInput{StoreNumber: r.StoreNumber, Week: r.Week})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "StoreNumber":
			return domain.ErrInvalidStore
		case "Week":
			return domain.ErrInvalidWeek
		}
	}
	return err
}

// Submit stores a manually entered report. With an ID only the fields present
// in Values are changed on that report. Without one the report is reconciled
// on its natural key like an uploaded row, numbering new reports after the
// current maximum Sr. Missing numbers are stored as 0.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Report, error) {
	candidate, diags := domain.FromRow(req.Values, "")
	if err := validateSubmit(candidate); err != nil {
		return domain.Report{}, err
	}
	if len(diags) > 0 {
		s.log.Debug("submitted values not numeric", zap.Any("diagnostics", diags))
	}

	if strings.TrimSpace(req.ID) != "" {
		return s.updateByID(ctx, req)
	}

	domain.ApplyDefaults(&candidate)

	lease, err := s.locker.Obtain(ctx, lockKey, s.policy.Get().LockTTL())
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return domain.Report{}, fmt.Errorf("%w: %w", domain.ErrBatchBusy, err)
		}
		return domain.Report{}, err
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release ingest lock", zap.Error(err))
		}
	}()

	seed, err := s.repo.MaxSr(ctx, s.db)
	if err != nil {
		return domain.Report{}, err
	}

	result, report, err := s.reconcile(ctx, NewSrCounter(seed), &candidate)
	if err != nil {
		return domain.Report{}, err
	}

	s.log.Info("cogs report submitted",
		zap.String("id", report.ID.String()),
		zap.Int64("sr", report.Sr),
		zap.String("outcome", result.String()),
	)
	return *report, nil
}

func (s *Service) updateByID(ctx context.Context, req domain.SubmitRequest) (domain.Report, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Report{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Report{}, err
	}
	if existing == nil {
		return domain.Report{}, domain.ErrNotFound
	}

	tabular.MapRowPresent(req.Values, domain.Schema, existing)
	domain.ApplyDefaults(existing)
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Report{}, domain.ErrDuplicateKey
		}
		return domain.Report{}, err
	}
	return *existing, nil
}
