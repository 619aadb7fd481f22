package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"channelpass/gatekeeper/internal/model"
)

func TestExpirySweeper_Sweep_RemovesLapsedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	expiry := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	seedActive(t, env, 100, "ABCD123456", expiry)
	seedActive(t, env, 101, "EFGH123456", expiry.Add(time.Hour))

	env.gateway.EXPECT().RemoveMember(gomock.Any(), int64(100)).Return(nil).Times(1)

	report, err := env.sweeper.Sweep(ctx, expiry.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Candidates: 1, Removed: 1}, report)

	sub, err := env.subRepo.Find(ctx, 100, "ABCD123456")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, sub.Status)
	assert.Equal(t, 1, env.auditRepo.count(model.AuditExpiredKicked))

	// Second sweep at the same instant finds nothing.
	report, err = env.sweeper.Sweep(ctx, expiry.Add(time.Second))
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)
}

func TestExpirySweeper_Sweep_RemovalFailureStillExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	expiry := jan1.Add(15 * 24 * time.Hour)
	seedActive(t, env, 100, "ABCD123456", expiry)
	seedActive(t, env, 101, "EFGH123456", expiry)

	gomock.InOrder(
		env.gateway.EXPECT().RemoveMember(gomock.Any(), gomock.Any()).Return(errors.New("not enough rights")),
		env.gateway.EXPECT().RemoveMember(gomock.Any(), gomock.Any()).Return(nil),
	)

	report, err := env.sweeper.Sweep(ctx, expiry)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Candidates: 2, Removed: 1, RemovalFailed: 1}, report)

	for _, sub := range env.subRepo.all() {
		assert.Equal(t, model.SubscriptionStatusExpired, sub.Status)
	}
	failed := env.auditRepo.last(model.AuditExpiredKickFailed)
	require.NotNil(t, failed)
	assert.Contains(t, failed.Context["error"], "not enough rights")
}

func TestExpirySweeper_Sweep_LeavesBannedAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := seedActive(t, env, 100, "ABCD123456", jan1)
	require.NoError(t, env.subRepo.Ban(ctx, sub.ID))

	report, err := env.sweeper.Sweep(ctx, jan1.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)
}

func TestExpirySweeper_Sweep_SingleFlight(t *testing.T) {
	env := newTestEnv(t)
	env.sweeper.running.Lock()

	_, err := env.sweeper.Sweep(context.Background(), jan1)
	assert.ErrorIs(t, err, ErrSweepInProgress)

	env.sweeper.running.Unlock()
	_, err = env.sweeper.Sweep(context.Background(), jan1)
	assert.NoError(t, err)
}

func TestExpirySweeper_Run_SweepsImmediatelyAndStops(t *testing.T) {
	env := newTestEnv(t)
	seedActive(t, env, 100, "ABCD123456", jan1)
	env.sweeper.now = func() time.Time { return jan1.Add(time.Hour) }

	removed := make(chan struct{})
	env.gateway.EXPECT().RemoveMember(gomock.Any(), int64(100)).
		DoAndReturn(func(context.Context, int64) error {
			close(removed)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-removed:
	case <-time.After(2 * time.Second):
		t.Fatal("initial sweep did not run")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, env.auditRepo.count(model.AuditExpiredKicked))
}
