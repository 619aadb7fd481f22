package repository

import (
	"context"
	"time"

	"channelpass/gatekeeper/internal/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, id uint) (*model.Subscription, error)
	Find(ctx context.Context, userID int64, code string) (*model.Subscription, error)
	FindActiveForUser(ctx context.Context, userID int64, now time.Time) (*model.Subscription, error)
	RefreshLink(ctx context.Context, id uint, link string) error
	// Expire moves a subscription to expired. Banned rows are left untouched and
	// repeating the call is not an error.
	Expire(ctx context.Context, id uint) error
	Ban(ctx context.Context, id uint) error
	// ListExpirable returns a snapshot of active subscriptions whose expiry is at or before now.
	ListExpirable(ctx context.Context, now time.Time) ([]model.Subscription, error)
	List(ctx context.Context, status model.SubscriptionStatus) ([]model.Subscription, error)
}
