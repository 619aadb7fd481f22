// Package gateway models the messaging transport the bot runs on: outbound calls
// against the managed channel and the stream of inbound events.
package gateway

//go:generate mockgen -destination=mock/gateway_mock.go -package=mock channelpass/gatekeeper/internal/gateway Gateway

import (
	"context"
	"time"
)

// InviteLinkRequest describes a channel invite link to mint.
type InviteLinkRequest struct {
	ExpiresAt          time.Time
	Name               string
	CreatesJoinRequest bool
}

// Gateway is the set of channel operations the core depends on. The managed
// channel is fixed by the implementation.
type Gateway interface {
	CreateInviteLink(ctx context.Context, req InviteLinkRequest) (string, error)
	ApproveJoinRequest(ctx context.Context, userID int64) error
	DeclineJoinRequest(ctx context.Context, userID int64) error
	// RemoveMember forces the user out of the channel without blocking a later
	// join request (ban, then lift the ban).
	RemoveMember(ctx context.Context, userID int64) error
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Message is an inbound text message addressed to the bot.
type Message struct {
	ChatID int64
	UserID int64
	Handle string
	Text   string
}

// JoinRequest is an inbound request to enter a channel.
type JoinRequest struct {
	ChatID int64
	UserID int64
}

// Update carries exactly one inbound event.
type Update struct {
	ID          int
	Message     *Message
	JoinRequest *JoinRequest
}

// UpdateSource delivers inbound events until ctx is done, then closes the channel.
type UpdateSource interface {
	Updates(ctx context.Context) <-chan Update
}
