package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
)

// SubscriptionService is the operator view over subscriptions, including the
// moderation hook that moves a subscription to banned.
type SubscriptionService interface {
	List(ctx context.Context, status model.SubscriptionStatus) ([]model.Subscription, error)
	Ban(ctx context.Context, id uint, actorID int64) (*model.Subscription, error)
}

type subscriptionService struct {
	subRepo repository.SubscriptionRepository
	gateway gateway.Gateway
	audit   AuditLog
	logger  *zap.Logger
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, gw gateway.Gateway, audit AuditLog, logger *zap.Logger) SubscriptionService {
	return &subscriptionService{subRepo: subRepo, gateway: gw, audit: audit, logger: logger}
}

func (s *subscriptionService) List(ctx context.Context, status model.SubscriptionStatus) ([]model.Subscription, error) {
	return s.subRepo.List(ctx, status)
}

// Ban is terminal. The member is removed best-effort; because the status is no
// longer active, later join requests are declined.
func (s *subscriptionService) Ban(ctx context.Context, id uint, actorID int64) (*model.Subscription, error) {
	if err := s.subRepo.Ban(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("ban subscription: %w", err)
	}
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload subscription: %w", err)
	}

	details := model.AuditContext{"subscription": sub.ID, "user_id": sub.UserID, "code": sub.Code}
	if err := s.gateway.RemoveMember(ctx, sub.UserID); err != nil {
		details["removal_error"] = err.Error()
		s.logger.Warn("failed to remove banned member", zap.Int64("user_id", sub.UserID), zap.Error(err))
	}
	s.audit.Record(ctx, actorID, model.AuditSubscriptionBanned, details)
	return sub, nil
}
