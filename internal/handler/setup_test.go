package handler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"channelpass/gatekeeper/internal/config"
	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/gateway/mock"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
	"channelpass/gatekeeper/internal/service"
)

const (
	testAdminID   int64 = 1
	testChannelID int64 = -1001234567890
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// testDeps wires the real services over an in-memory SQLite database and a mocked gateway.
type testDeps struct {
	gateway  *mock.MockGateway
	codeRepo repository.CodeRepository
	subRepo  repository.SubscriptionRepository
	codes    service.CodeRegistry
	redeemer service.RedemptionService
	arbiter  service.JoinArbiter
	subs     service.SubscriptionService
	audit    service.AuditLog
	sweeper  *service.ExpirySweeper
	conv     *service.AdminConversation

	mu    sync.Mutex
	sent  []string
	links int
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, model.AutoMigrate(db))

	log := zap.NewNop()
	d := &testDeps{
		gateway:  mock.NewMockGateway(gomock.NewController(t)),
		codeRepo: repository.NewPGCodeRepository(db),
		subRepo:  repository.NewPGSubscriptionRepository(db),
	}
	d.audit = service.NewAuditLog(repository.NewPGAuditRepository(db), log)
	d.codes = service.NewCodeRegistry(d.codeRepo, d.audit, model.DefaultDurations, 10, log)
	issuer := service.NewInviteIssuer(d.gateway, "pass")
	d.redeemer = service.NewRedemptionService(d.codes, d.subRepo, issuer, d.audit, log)
	d.arbiter = service.NewJoinArbiter(testChannelID, d.subRepo, d.gateway, d.audit)
	d.subs = service.NewSubscriptionService(d.subRepo, d.gateway, d.audit, log)
	d.sweeper = service.NewExpirySweeper(d.subRepo, d.gateway, d.audit, time.Hour, log)
	d.conv = service.NewAdminConversation(repository.NewMemoryStateStore(), time.Minute)

	d.gateway.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, text string) error {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.sent = append(d.sent, text)
			return nil
		}).AnyTimes()
	d.gateway.EXPECT().CreateInviteLink(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gateway.InviteLinkRequest) (string, error) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.links++
			return fmt.Sprintf("https://t.me/+link%d", d.links), nil
		}).AnyTimes()
	return d
}

func (d *testDeps) botHandler(trigger string) *BotHandler {
	h := NewBotHandler(d.gateway, d.codes, d.redeemer, d.arbiter, d.conv, config.TelegramConfig{
		AdminID:           testAdminID,
		ChannelID:         testChannelID,
		RedemptionTrigger: trigger,
		Workers:           2,
	}, 10, zap.NewNop())
	h.now = func() time.Time { return jan1 }
	return h
}

func (d *testDeps) replies() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

func (d *testDeps) lastReply(t *testing.T) string {
	t.Helper()
	r := d.replies()
	require.NotEmpty(t, r)
	return r[len(r)-1]
}
