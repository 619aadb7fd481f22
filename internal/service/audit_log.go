package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
)

// AuditLog appends an entry for every state transition and external call outcome.
type AuditLog interface {
	// Record never fails the caller: the audited action has already happened,
	// so an append error is only logged.
	Record(ctx context.Context, actorID int64, action model.AuditAction, details model.AuditContext)
	Recent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

const maxAuditPage = 500

type auditLog struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditLog(repo repository.AuditRepository, logger *zap.Logger) AuditLog {
	return &auditLog{repo: repo, logger: logger, now: time.Now}
}

func (a *auditLog) Record(ctx context.Context, actorID int64, action model.AuditAction, details model.AuditContext) {
	entry := &model.AuditEntry{
		ActorID:   actorID,
		Action:    action,
		Context:   details,
		CreatedAt: a.now().UTC(),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Error("failed to append audit entry",
			zap.Int64("actor_id", actorID),
			zap.String("action", string(action)),
			zap.Any("context", details),
			zap.Error(err),
		)
	}
}

func (a *auditLog) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	return a.repo.ListRecent(ctx, limit)
}
