package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
)

type JoinDecision int

const (
	// JoinIgnored means the request was not acted on: foreign channel, missing actor,
	// or a storage failure that left the request pending.
	JoinIgnored JoinDecision = iota
	JoinApproved
	JoinDeclined
)

func (d JoinDecision) String() string {
	switch d {
	case JoinApproved:
		return "approved"
	case JoinDeclined:
		return "declined"
	default:
		return "ignored"
	}
}

// JoinArbiter admits join requests for the managed channel from users holding an active subscription.
type JoinArbiter interface {
	// Decide returns the decision taken. A non-nil error wraps ErrGatewayUnavailable
	// when the approve/decline call failed, or carries the storage failure.
	Decide(ctx context.Context, req gateway.JoinRequest, now time.Time) (JoinDecision, error)
}

type joinArbiter struct {
	channelID int64
	subRepo   repository.SubscriptionRepository
	gateway   gateway.Gateway
	audit     AuditLog
}

func NewJoinArbiter(channelID int64, subRepo repository.SubscriptionRepository, gw gateway.Gateway, audit AuditLog) JoinArbiter {
	return &joinArbiter{
		channelID: channelID,
		subRepo:   subRepo,
		gateway:   gw,
		audit:     audit,
	}
}

func (a *joinArbiter) Decide(ctx context.Context, req gateway.JoinRequest, now time.Time) (JoinDecision, error) {
	if req.ChatID != a.channelID || req.UserID == 0 {
		return JoinIgnored, nil
	}

	sub, err := a.subRepo.FindActiveForUser(ctx, req.UserID, now.UTC())
	switch {
	case err == nil:
		if err := a.gateway.ApproveJoinRequest(ctx, req.UserID); err != nil {
			return JoinApproved, fmt.Errorf("%w: approve: %v", ErrGatewayUnavailable, err)
		}
		a.audit.Record(ctx, req.UserID, model.AuditJoinApproved, model.AuditContext{
			"chat_id":    req.ChatID,
			"code":       sub.Code,
			"expires_at": sub.ExpiresAt,
		})
		return JoinApproved, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gateway.DeclineJoinRequest(ctx, req.UserID); err != nil {
			return JoinDeclined, fmt.Errorf("%w: decline: %v", ErrGatewayUnavailable, err)
		}
		a.audit.Record(ctx, req.UserID, model.AuditJoinDeclined, model.AuditContext{
			"chat_id": req.ChatID,
		})
		return JoinDeclined, nil

	default:
		return JoinIgnored, fmt.Errorf("find active subscription: %w", err)
	}
}
