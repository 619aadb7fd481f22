package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
)

// RedeemOutcome is the user-facing result of presenting a code.
type RedeemOutcome int

const (
	OutcomeInvalidCode RedeemOutcome = iota + 1
	OutcomeUsedByOther
	OutcomeRedeemed
	OutcomeLinkRefreshed
	OutcomeExpired
	OutcomeRevoked
	OutcomeUserDataMissing
)

func (o RedeemOutcome) String() string {
	switch o {
	case OutcomeInvalidCode:
		return "invalid_code"
	case OutcomeUsedByOther:
		return "used_by_other"
	case OutcomeRedeemed:
		return "redeemed"
	case OutcomeLinkRefreshed:
		return "link_refreshed"
	case OutcomeExpired:
		return "expired"
	case OutcomeRevoked:
		return "revoked"
	case OutcomeUserDataMissing:
		return "user_data_missing"
	default:
		return "unknown"
	}
}

type RedeemRequest struct {
	UserID int64
	Handle string
	Token  string
	Now    time.Time
}

type RedeemResult struct {
	Outcome      RedeemOutcome
	ExpiresAt    time.Time
	Link         string
	Subscription *model.Subscription
}

// RedemptionService is the subscription lifecycle state machine driven by a user presenting a code.
type RedemptionService interface {
	// Redeem returns an error only for infrastructure failures (storage, gateway);
	// every user-input rejection is an outcome.
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
}

type redemptionService struct {
	codes   CodeRegistry
	subRepo repository.SubscriptionRepository
	issuer  InviteIssuer
	audit   AuditLog
	logger  *zap.Logger
}

func NewRedemptionService(
	codes CodeRegistry,
	subRepo repository.SubscriptionRepository,
	issuer InviteIssuer,
	audit AuditLog,
	logger *zap.Logger,
) RedemptionService {
	return &redemptionService{
		codes:   codes,
		subRepo: subRepo,
		issuer:  issuer,
		audit:   audit,
		logger:  logger,
	}
}

func (s *redemptionService) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	req.Now = req.Now.UTC()

	code, err := s.codes.Lookup(ctx, req.Token)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			s.reject(ctx, req, "not_found")
			return &RedeemResult{Outcome: OutcomeInvalidCode}, nil
		}
		return nil, err
	}

	if code.IsUsed && !code.RedeemedBy(req.UserID) {
		s.reject(ctx, req, "used_by_other")
		return &RedeemResult{Outcome: OutcomeUsedByOther}, nil
	}

	if !code.IsUsed {
		return s.redeemFresh(ctx, req, code)
	}
	return s.reenter(ctx, req)
}

// redeemFresh provisions a new subscription. The link is minted before any write so a
// gateway failure leaves the code unused and no subscription behind.
func (s *redemptionService) redeemFresh(ctx context.Context, req RedeemRequest, code *model.Code) (*RedeemResult, error) {
	expiresAt := req.Now.Add(code.Duration())

	link, err := s.issuer.IssueLink(ctx, expiresAt)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		UserID:     req.UserID,
		Handle:     req.Handle,
		Code:       code.Code,
		JoinedAt:   req.Now,
		ExpiresAt:  expiresAt,
		Status:     model.SubscriptionStatusActive,
		InviteLink: link,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		// Another delivery of the same message already created the row. Make sure the
		// code is bound to this user, then continue as a re-entry.
		if err := s.codes.MarkUsed(ctx, code.Code, req.UserID, req.Now); err != nil {
			if errors.Is(err, ErrCodeAlreadyUsed) {
				s.reject(ctx, req, "used_by_other")
				return &RedeemResult{Outcome: OutcomeUsedByOther}, nil
			}
			return nil, err
		}
		return s.reenter(ctx, req)
	}

	if err := s.codes.MarkUsed(ctx, code.Code, req.UserID, req.Now); err != nil {
		if !errors.Is(err, ErrCodeAlreadyUsed) {
			return nil, err
		}
		// Lost the race to another user. The row stays (never deleted) but can no
		// longer grant access.
		if xerr := s.subRepo.Expire(ctx, sub.ID); xerr != nil {
			s.logger.Error("failed to retire subscription of race loser",
				zap.Uint("subscription_id", sub.ID), zap.Error(xerr))
		}
		s.reject(ctx, req, "used_by_other")
		return &RedeemResult{Outcome: OutcomeUsedByOther}, nil
	}

	s.audit.Record(ctx, req.UserID, model.AuditCodeRedeemed, model.AuditContext{
		"code":       code.Code,
		"days":       code.DurationDays,
		"expires_at": expiresAt,
	})
	s.audit.Record(ctx, req.UserID, model.AuditLinkGenerated, model.AuditContext{
		"code": code.Code,
		"link": link,
	})
	s.logger.Info("code redeemed",
		zap.Int64("user_id", req.UserID),
		zap.String("code", code.Code),
		zap.Time("expires_at", expiresAt),
	)

	return &RedeemResult{
		Outcome:      OutcomeRedeemed,
		ExpiresAt:    expiresAt,
		Link:         link,
		Subscription: sub,
	}, nil
}

// reenter hands the owner of a code a fresh link bounded by the original expiry.
// The expiry is never extended.
func (s *redemptionService) reenter(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	sub, err := s.subRepo.Find(ctx, req.UserID, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("code bound to user without a subscription",
				zap.Int64("user_id", req.UserID), zap.String("code", req.Token))
			return &RedeemResult{Outcome: OutcomeUserDataMissing}, nil
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}

	switch {
	case sub.Status == model.SubscriptionStatusBanned:
		return &RedeemResult{Outcome: OutcomeRevoked, ExpiresAt: sub.ExpiresAt, Subscription: sub}, nil
	case !sub.ExpiresAt.After(req.Now), sub.Status == model.SubscriptionStatusExpired:
		if sub.Status == model.SubscriptionStatusActive {
			if err := s.subRepo.Expire(ctx, sub.ID); err != nil {
				return nil, fmt.Errorf("expire subscription: %w", err)
			}
			sub.Status = model.SubscriptionStatusExpired
			s.audit.Record(ctx, req.UserID, model.AuditSubscriptionExpired, model.AuditContext{
				"code":         sub.Code,
				"subscription": sub.ID,
				"expired_at":   sub.ExpiresAt,
			})
		}
		return &RedeemResult{Outcome: OutcomeExpired, ExpiresAt: sub.ExpiresAt, Subscription: sub}, nil
	}

	link, err := s.issuer.IssueLink(ctx, sub.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.subRepo.RefreshLink(ctx, sub.ID, link); err != nil {
		return nil, fmt.Errorf("refresh invite link: %w", err)
	}
	sub.InviteLink = link

	s.audit.Record(ctx, req.UserID, model.AuditLinkRegenerated, model.AuditContext{
		"code": sub.Code,
		"link": link,
	})

	return &RedeemResult{
		Outcome:      OutcomeLinkRefreshed,
		ExpiresAt:    sub.ExpiresAt,
		Link:         link,
		Subscription: sub,
	}, nil
}

func (s *redemptionService) reject(ctx context.Context, req RedeemRequest, reason string) {
	s.audit.Record(ctx, req.UserID, model.AuditCodeRejected, model.AuditContext{
		"code":   req.Token,
		"reason": reason,
	})
}
