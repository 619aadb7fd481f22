package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
)

// SweepReport summarises one sweep.
type SweepReport struct {
	Candidates    int `json:"candidates"`
	Removed       int `json:"removed"`
	RemovalFailed int `json:"removal_failed"`
	ExpireFailed  int `json:"expire_failed"`
}

// ExpirySweeper revokes channel access for lapsed subscriptions.
type ExpirySweeper struct {
	subRepo  repository.SubscriptionRepository
	gateway  gateway.Gateway
	audit    AuditLog
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	// running guards against overlapping sweeps.
	running sync.Mutex
}

func NewExpirySweeper(
	subRepo repository.SubscriptionRepository,
	gw gateway.Gateway,
	audit AuditLog,
	interval time.Duration,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		subRepo:  subRepo,
		gateway:  gw,
		audit:    audit,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done. Each tick
// starts independently of the previous one; a tick that finds a sweep still running
// is dropped. Run returns after in-flight sweeps finish.
func (s *ExpirySweeper) Run(ctx context.Context) {
	var wg conc.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	wg.Go(func() { s.tick(ctx) })
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wg.Go(func() { s.tick(ctx) })
		}
	}
}

func (s *ExpirySweeper) tick(ctx context.Context) {
	report, err := s.Sweep(ctx, s.now())
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Warn("previous sweep still running, skipping tick")
	case err != nil:
		s.logger.Error("sweep aborted", zap.Error(err), zap.Any("report", report))
	case report.Candidates > 0:
		s.logger.Info("sweep finished", zap.Any("report", report))
	}
}

// Sweep processes a snapshot of lapsed subscriptions one at a time. A failed removal
// never blocks the transition to expired; it is audited for operator follow-up.
func (s *ExpirySweeper) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport
	if !s.running.TryLock() {
		return report, ErrSweepInProgress
	}
	defer s.running.Unlock()

	subs, err := s.subRepo.ListExpirable(ctx, now.UTC())
	if err != nil {
		return report, err
	}
	report.Candidates = len(subs)

	for i := range subs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.expireOne(ctx, &subs[i], &report)
	}
	return report, nil
}

func (s *ExpirySweeper) expireOne(ctx context.Context, sub *model.Subscription, report *SweepReport) {
	removeErr := s.gateway.RemoveMember(ctx, sub.UserID)

	if err := s.subRepo.Expire(ctx, sub.ID); err != nil {
		report.ExpireFailed++
		s.logger.Error("failed to mark subscription expired",
			zap.Uint("subscription_id", sub.ID), zap.Int64("user_id", sub.UserID), zap.Error(err))
	}

	details := model.AuditContext{
		"subscription": sub.ID,
		"code":         sub.Code,
		"expired_at":   sub.ExpiresAt,
	}
	if removeErr != nil {
		report.RemovalFailed++
		details["error"] = errors.Join(ErrRemovalFailed, removeErr).Error()
		s.audit.Record(ctx, sub.UserID, model.AuditExpiredKickFailed, details)
		s.logger.Warn("failed to remove lapsed member",
			zap.Int64("user_id", sub.UserID), zap.Error(removeErr))
		return
	}
	report.Removed++
	s.audit.Record(ctx, sub.UserID, model.AuditExpiredKicked, details)
}
