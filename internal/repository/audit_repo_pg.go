package repository

import (
	"context"

	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
)

type pgAuditRepository struct {
	db *gorm.DB
}

func NewPGAuditRepository(db *gorm.DB) AuditRepository {
	return &pgAuditRepository{db: db}
}

func (r *pgAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *pgAuditRepository) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
