package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/model"
)

// Walks one code through its whole life: mint, redeem, rejected reuse, re-entry,
// join, sweep.
func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.expectLinks()
	ctx := context.Background()
	env.fixedTokens("ABCD123456")

	code, err := env.registry.Issue(ctx, 15, 1)
	require.NoError(t, err)
	require.Equal(t, "ABCD123456", code.Code)

	res, err := env.redeemer.Redeem(ctx, RedeemRequest{UserID: 100, Token: "ABCD123456", Now: jan1})
	require.NoError(t, err)
	require.Equal(t, OutcomeRedeemed, res.Outcome)
	expiry := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expiry, res.ExpiresAt)

	res, err = env.redeemer.Redeem(ctx, RedeemRequest{UserID: 200, Token: "ABCD123456", Now: jan1.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUsedByOther, res.Outcome)

	res, err = env.redeemer.Redeem(ctx, RedeemRequest{UserID: 100, Token: "ABCD123456", Now: jan1.AddDate(0, 0, 5)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeLinkRefreshed, res.Outcome)
	assert.Equal(t, expiry, res.ExpiresAt)
	assert.Equal(t, 1, env.auditRepo.count(model.AuditLinkRegenerated))

	env.gateway.EXPECT().ApproveJoinRequest(gomock.Any(), int64(100)).Return(nil)
	decision, err := env.arbiter.Decide(ctx, gateway.JoinRequest{ChatID: testChannelID, UserID: 100}, jan1.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, JoinApproved, decision)

	env.gateway.EXPECT().RemoveMember(gomock.Any(), int64(100)).Return(nil).Times(1)
	sweepAt := time.Date(2024, 1, 16, 0, 0, 1, 0, time.UTC)
	report, err := env.sweeper.Sweep(ctx, sweepAt)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)

	report, err = env.sweeper.Sweep(ctx, sweepAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)

	sub, err := env.subRepo.Find(ctx, 100, "ABCD123456")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, sub.Status)
	assert.Equal(t, 1, env.auditRepo.count(model.AuditExpiredKicked))
}
