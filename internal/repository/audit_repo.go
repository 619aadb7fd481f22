package repository

import (
	"context"

	"channelpass/gatekeeper/internal/model"
)

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}
