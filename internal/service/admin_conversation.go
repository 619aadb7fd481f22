package service

import (
	"context"
	"fmt"
	"time"

	"channelpass/gatekeeper/internal/repository"
)

// ConversationGenerateCode is the only prompt the admin conversation currently supports.
const ConversationGenerateCode = "generate_code"

// AdminConversation tracks a pending prompt to the administrator, keyed by
// (admin, chat). Only the next message from that admin in that chat answers it,
// and it lapses after ttl.
type AdminConversation struct {
	store repository.StateStore
	ttl   time.Duration
}

func NewAdminConversation(store repository.StateStore, ttl time.Duration) *AdminConversation {
	return &AdminConversation{store: store, ttl: ttl}
}

func conversationKey(adminID, chatID int64) string {
	return fmt.Sprintf("admin:session:%d:%d", adminID, chatID)
}

// Open starts (or restarts) a prompt.
func (c *AdminConversation) Open(ctx context.Context, adminID, chatID int64, purpose string) error {
	return c.store.Set(ctx, conversationKey(adminID, chatID), []byte(purpose), c.ttl)
}

// Consume ends the pending prompt and returns its purpose, or "" when none is open.
func (c *AdminConversation) Consume(ctx context.Context, adminID, chatID int64) (string, error) {
	v, err := c.store.Take(ctx, conversationKey(adminID, chatID))
	if err != nil {
		return "", err
	}
	return string(v), nil
}
