package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
)

type pgCodeRepository struct {
	db *gorm.DB
}

func NewPGCodeRepository(db *gorm.DB) CodeRepository {
	return &pgCodeRepository{db: db}
}

func (r *pgCodeRepository) Create(ctx context.Context, code *model.Code) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *pgCodeRepository) GetByCode(ctx context.Context, code string) (*model.Code, error) {
	var c model.Code
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgCodeRepository) MarkUsed(ctx context.Context, code string, userID int64, usedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Code{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_by":    userID,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pgCodeRepository) List(ctx context.Context) ([]model.Code, error) {
	var codes []model.Code
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
