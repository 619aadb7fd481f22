package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	// SubscriptionStatusBanned is only set by moderation, never by the redemption or sweep flows.
	SubscriptionStatusBanned SubscriptionStatus = "banned"
)

type Subscription struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	UserID     int64              `gorm:"not null;uniqueIndex:idx_subscriptions_user_code,priority:1" json:"user_id"`
	Handle     string             `gorm:"type:varchar(64);not null;default:''" json:"handle"`
	Code       string             `gorm:"type:varchar(16);not null;uniqueIndex:idx_subscriptions_user_code,priority:2" json:"code"`
	JoinedAt   time.Time          `gorm:"not null" json:"joined_at"`
	ExpiresAt  time.Time          `gorm:"not null;index:idx_subscriptions_status_expires,priority:2" json:"expires_at"`
	Status     SubscriptionStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_subscriptions_status_expires,priority:1" json:"status"`
	InviteLink string             `gorm:"type:varchar(256)" json:"invite_link"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// ActiveAt reports whether the subscription grants access at the given instant.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.ExpiresAt.After(now)
}
