package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
	"channelpass/gatekeeper/pkg/crypto"
)

// maxIssueAttempts bounds regeneration on token collisions. At 36^10 possible
// tokens a second attempt is already unlikely.
const maxIssueAttempts = 16

// CodeRegistry owns redemption codes: minting, lookup and single-use binding.
type CodeRegistry interface {
	Issue(ctx context.Context, durationDays int, issuedBy int64) (*model.Code, error)
	Lookup(ctx context.Context, token string) (*model.Code, error)
	// MarkUsed binds the code to redeemerID. Repeating it for the same redeemer is
	// a no-op; a different redeemer gets ErrCodeAlreadyUsed.
	MarkUsed(ctx context.Context, token string, redeemerID int64, at time.Time) error
	List(ctx context.Context) ([]model.Code, error)
	AllowedDurations() []int
}

type codeRegistry struct {
	codeRepo   repository.CodeRepository
	audit      AuditLog
	durations  []int
	codeLength int
	generate   func(n int) (string, error)
	logger     *zap.Logger
}

func NewCodeRegistry(
	codeRepo repository.CodeRepository,
	audit AuditLog,
	durations []int,
	codeLength int,
	logger *zap.Logger,
) CodeRegistry {
	if len(durations) == 0 {
		durations = model.DefaultDurations
	}
	return &codeRegistry{
		codeRepo:   codeRepo,
		audit:      audit,
		durations:  slices.Clone(durations),
		codeLength: codeLength,
		generate:   crypto.GenerateCode,
		logger:     logger,
	}
}

func (r *codeRegistry) AllowedDurations() []int {
	return slices.Clone(r.durations)
}

func (r *codeRegistry) Issue(ctx context.Context, durationDays int, issuedBy int64) (*model.Code, error) {
	if !slices.Contains(r.durations, durationDays) {
		r.audit.Record(ctx, issuedBy, model.AuditCodeRejected, model.AuditContext{
			"reason": "invalid_duration",
			"days":   durationDays,
		})
		return nil, ErrInvalidDuration
	}

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		token, err := r.generate(r.codeLength)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		_, err = r.codeRepo.GetByCode(ctx, token)
		switch {
		case err == nil:
			r.logger.Warn("generated code collides with an existing one", zap.Int("attempt", attempt))
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("check code existence: %w", err)
		}

		code := &model.Code{
			Code:         token,
			DurationDays: durationDays,
			CreatedBy:    issuedBy,
		}
		if err := r.codeRepo.Create(ctx, code); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return nil, fmt.Errorf("create code: %w", err)
		}

		r.audit.Record(ctx, issuedBy, model.AuditCodeGenerated, model.AuditContext{
			"code": code.Code,
			"days": durationDays,
		})
		return code, nil
	}
	return nil, ErrCodeSpaceExhausted
}

func (r *codeRegistry) Lookup(ctx context.Context, token string) (*model.Code, error) {
	code, err := r.codeRepo.GetByCode(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

func (r *codeRegistry) MarkUsed(ctx context.Context, token string, redeemerID int64, at time.Time) error {
	won, err := r.codeRepo.MarkUsed(ctx, token, redeemerID, at)
	if err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	if won {
		return nil
	}

	// Nothing changed: the code is missing or already bound. Re-read to tell which.
	code, err := r.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if code.RedeemedBy(redeemerID) {
		return nil
	}
	return ErrCodeAlreadyUsed
}

func (r *codeRegistry) List(ctx context.Context) ([]model.Code, error) {
	return r.codeRepo.List(ctx)
}
