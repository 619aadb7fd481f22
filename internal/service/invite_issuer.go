package service

import (
	"context"
	"fmt"
	"time"

	"channelpass/gatekeeper/internal/gateway"
)

// InviteIssuer mints join-request-gated invite links bounded by a subscription's expiry.
type InviteIssuer interface {
	IssueLink(ctx context.Context, expiresAt time.Time) (string, error)
}

type inviteIssuer struct {
	gateway     gateway.Gateway
	labelPrefix string
}

func NewInviteIssuer(gw gateway.Gateway, labelPrefix string) InviteIssuer {
	return &inviteIssuer{gateway: gw, labelPrefix: labelPrefix}
}

// IssueLink does not retry; a failure surfaces as ErrGatewayUnavailable.
func (i *inviteIssuer) IssueLink(ctx context.Context, expiresAt time.Time) (string, error) {
	unix := expiresAt.Unix()
	link, err := i.gateway.CreateInviteLink(ctx, gateway.InviteLinkRequest{
		ExpiresAt:          time.Unix(unix, 0).UTC(),
		Name:               fmt.Sprintf("%s-%d", i.labelPrefix, unix),
		CreatesJoinRequest: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return link, nil
}
