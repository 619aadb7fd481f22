package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemActor is the actor id recorded for entries not caused by a user.
const SystemActor int64 = 0

type AuditAction string

const (
	AuditCodeGenerated       AuditAction = "code_generated"
	AuditCodeRedeemed        AuditAction = "code_redeemed"
	AuditCodeRejected        AuditAction = "code_rejected"
	AuditLinkGenerated       AuditAction = "link_generated"
	AuditLinkRegenerated     AuditAction = "link_regenerated"
	AuditJoinApproved        AuditAction = "join_approved"
	AuditJoinDeclined        AuditAction = "join_declined"
	AuditExpiredKicked       AuditAction = "expired_kicked"
	AuditExpiredKickFailed   AuditAction = "expired_kick_failed"
	AuditSubscriptionExpired AuditAction = "subscription_expired"
	AuditSubscriptionBanned  AuditAction = "subscription_banned"
)

// AuditContext is a JSON blob stored in the context column.
type AuditContext map[string]interface{}

func (ac AuditContext) Value() (driver.Value, error) {
	if ac == nil {
		return nil, nil
	}
	return json.Marshal(ac)
}

func (ac *AuditContext) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*ac = nil
		return nil
	case []byte:
		return json.Unmarshal(v, ac)
	case string:
		return json.Unmarshal([]byte(v), ac)
	default:
		return errors.New("AuditContext.Scan: unsupported column type")
	}
}

type AuditEntry struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID   int64        `gorm:"not null;index" json:"actor_id"`
	Action    AuditAction  `gorm:"type:varchar(32);not null;index" json:"action"`
	Context   AuditContext `gorm:"type:jsonb" json:"context,omitempty"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entries" }

func (e *AuditEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
