package model

import "time"

// Duration classes a code may carry, in days.
const (
	Duration15Days = 15
	Duration30Days = 30
	Duration60Days = 60
)

// DefaultDurations is the set of duration classes accepted when none is configured.
var DefaultDurations = []int{Duration15Days, Duration30Days, Duration60Days}

// Code is a one-time redemption token bound to a subscription duration.
type Code struct {
	Code         string     `gorm:"type:varchar(16);primaryKey" json:"code"`
	DurationDays int        `gorm:"not null" json:"duration_days"`
	IsUsed       bool       `gorm:"not null;default:false" json:"is_used"`
	UsedBy       *int64     `json:"used_by,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedBy    int64      `gorm:"not null;default:0" json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Code) TableName() string { return "codes" }

// Duration converts the code's duration class into an absolute length of time.
func (c *Code) Duration() time.Duration {
	return time.Duration(c.DurationDays) * 24 * time.Hour
}

// RedeemedBy reports whether the code has been bound to userID.
func (c *Code) RedeemedBy(userID int64) bool {
	return c.IsUsed && c.UsedBy != nil && *c.UsedBy == userID
}
