package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"channelpass/gatekeeper/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedSubscription(t *testing.T, repo SubscriptionRepository, userID int64, code string, expiresAt time.Time) *model.Subscription {
	t.Helper()
	sub := &model.Subscription{
		UserID:     userID,
		Handle:     "user",
		Code:       code,
		JoinedAt:   t0,
		ExpiresAt:  expiresAt,
		Status:     model.SubscriptionStatusActive,
		InviteLink: "https://t.me/+initial",
	}
	require.NoError(t, repo.Create(context.Background(), sub))
	return sub
}

func TestSubscriptionRepository_FindActiveForUser_SkipsLapsed(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	expiry := t0.Add(15 * 24 * time.Hour)
	seedSubscription(t, repo, 100, "ABCD123456", expiry)

	found, err := repo.FindActiveForUser(ctx, 100, expiry.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, "ABCD123456", found.Code)

	_, err = repo.FindActiveForUser(ctx, 100, expiry)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindActiveForUser(ctx, 100, expiry.Add(time.Hour))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubscriptionRepository_Create_DuplicatePair(t *testing.T) {
	repo := NewPGSubscriptionRepository(openTestDB(t))
	seedSubscription(t, repo, 100, "ABCD123456", t0.Add(time.Hour))

	err := repo.Create(context.Background(), &model.Subscription{
		UserID: 100, Code: "ABCD123456", JoinedAt: t0, ExpiresAt: t0.Add(time.Hour),
		Status: model.SubscriptionStatusActive,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSubscriptionRepository_Expire_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	sub := seedSubscription(t, repo, 100, "ABCD123456", t0.Add(time.Hour))

	require.NoError(t, repo.Expire(ctx, sub.ID))
	require.NoError(t, repo.Expire(ctx, sub.ID))

	got, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, got.Status)
}

func TestSubscriptionRepository_Expire_LeavesBannedAlone(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	sub := seedSubscription(t, repo, 100, "ABCD123456", t0.Add(time.Hour))

	require.NoError(t, repo.Ban(ctx, sub.ID))
	require.NoError(t, repo.Expire(ctx, sub.ID))

	got, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusBanned, got.Status)
}

func TestSubscriptionRepository_Ban_Unknown(t *testing.T) {
	repo := NewPGSubscriptionRepository(openTestDB(t))
	assert.ErrorIs(t, repo.Ban(context.Background(), 42), gorm.ErrRecordNotFound)
}

func TestSubscriptionRepository_RefreshLink_OnlyTouchesLink(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	expiry := t0.Add(15 * 24 * time.Hour)
	sub := seedSubscription(t, repo, 100, "ABCD123456", expiry)

	require.NoError(t, repo.RefreshLink(ctx, sub.ID, "https://t.me/+fresh"))

	got, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+fresh", got.InviteLink)
	assert.True(t, got.ExpiresAt.Equal(expiry))
	assert.Equal(t, model.SubscriptionStatusActive, got.Status)

	assert.ErrorIs(t, repo.RefreshLink(ctx, 9999, "x"), gorm.ErrRecordNotFound)
}

func TestSubscriptionRepository_ListExpirable(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	now := t0.Add(10 * 24 * time.Hour)

	lapsed := seedSubscription(t, repo, 1, "LAPSED0001", now.Add(-time.Hour))
	seedSubscription(t, repo, 2, "EXACT00002", now)
	seedSubscription(t, repo, 3, "FUTURE0003", now.Add(time.Hour))
	expired := seedSubscription(t, repo, 4, "GONE000004", now.Add(-48*time.Hour))
	require.NoError(t, repo.Expire(ctx, expired.ID))

	subs, err := repo.ListExpirable(ctx, now)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, lapsed.ID, subs[0].ID)
	assert.Equal(t, "EXACT00002", subs[1].Code)
}

func TestSubscriptionRepository_List_FiltersByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewPGSubscriptionRepository(openTestDB(t))
	a := seedSubscription(t, repo, 1, "AAAAAAAAAA", t0.Add(time.Hour))
	seedSubscription(t, repo, 2, "BBBBBBBBBB", t0.Add(time.Hour))
	require.NoError(t, repo.Expire(ctx, a.ID))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	expired, err := repo.List(ctx, model.SubscriptionStatusExpired)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, a.ID, expired[0].ID)
}
