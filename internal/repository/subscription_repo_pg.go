package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
)

type pgSubscriptionRepository struct {
	db *gorm.DB
}

func NewPGSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &pgSubscriptionRepository{db: db}
}

func (r *pgSubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *pgSubscriptionRepository) GetByID(ctx context.Context, id uint) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriptionRepository) Find(ctx context.Context, userID int64, code string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, code).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriptionRepository) FindActiveForUser(ctx context.Context, userID int64, now time.Time) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, model.SubscriptionStatusActive, now).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriptionRepository) RefreshLink(ctx context.Context, id uint, link string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("invite_link", link)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pgSubscriptionRepository) Expire(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, model.SubscriptionStatusActive).
		Update("status", model.SubscriptionStatusExpired).
		Error
}

func (r *pgSubscriptionRepository) Ban(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("status", model.SubscriptionStatusBanned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pgSubscriptionRepository) ListExpirable(ctx context.Context, now time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", model.SubscriptionStatusActive, now).
		Order("expires_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *pgSubscriptionRepository) List(ctx context.Context, status model.SubscriptionStatus) ([]model.Subscription, error) {
	var subs []model.Subscription
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&subs).Error
	return subs, err
}
