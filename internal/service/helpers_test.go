package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/gateway/mock"
)

const testChannelID int64 = -1001234567890

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	codeRepo  *mockCodeRepo
	subRepo   *mockSubscriptionRepo
	auditRepo *mockAuditRepo
	gateway   *mock.MockGateway
	audit     AuditLog
	registry  CodeRegistry
	redeemer  RedemptionService
	arbiter   JoinArbiter
	sweeper   *ExpirySweeper
	links     atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := zap.NewNop()

	env := &testEnv{
		codeRepo:  newMockCodeRepo(),
		subRepo:   newMockSubscriptionRepo(),
		auditRepo: newMockAuditRepo(),
		gateway:   mock.NewMockGateway(ctrl),
	}
	env.audit = NewAuditLog(env.auditRepo, logger)
	env.registry = NewCodeRegistry(env.codeRepo, env.audit, nil, 10, logger)
	issuer := NewInviteIssuer(env.gateway, "sub")
	env.redeemer = NewRedemptionService(env.registry, env.subRepo, issuer, env.audit, logger)
	env.arbiter = NewJoinArbiter(testChannelID, env.subRepo, env.gateway, env.audit)
	env.sweeper = NewExpirySweeper(env.subRepo, env.gateway, env.audit, time.Hour, logger)
	return env
}

// expectLinks lets CreateInviteLink succeed any number of times with distinct links.
func (e *testEnv) expectLinks() {
	e.gateway.EXPECT().
		CreateInviteLink(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gateway.InviteLinkRequest) (string, error) {
			n := e.links.Add(1)
			return fmt.Sprintf("https://t.me/+link%d", n), nil
		}).
		AnyTimes()
}

// fixedTokens makes the registry hand out the given tokens in order.
func (e *testEnv) fixedTokens(tokens ...string) {
	i := 0
	e.registry.(*codeRegistry).generate = func(int) (string, error) {
		tok := tokens[i%len(tokens)]
		i++
		return tok, nil
	}
}
