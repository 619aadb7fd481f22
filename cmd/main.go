package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/config"
	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/handler"
	"channelpass/gatekeeper/internal/model"
	"channelpass/gatekeeper/internal/repository"
	"channelpass/gatekeeper/internal/service"
	jwtpkg "channelpass/gatekeeper/pkg/jwt"
	"channelpass/gatekeeper/pkg/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath(), "path to the YAML config file (empty: environment only)")
	pflag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to postgres", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("failed to get sql handle", zap.Error(err))
	}
	defer sqlDB.Close()

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			zlog.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zlog.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		var redisClient *redis.Client
		redisClient, err = config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient, cfg.Database.Redis.KeyPrefix)
		zlog.Info("using Redis state store")
	default:
		stateStore = repository.NewMemoryStateStore()
		zlog.Info("using in-memory state store")
	}

	// 6. Initialize repositories
	codeRepo := repository.NewPGCodeRepository(db)
	subRepo := repository.NewPGSubscriptionRepository(db)
	auditRepo := repository.NewPGAuditRepository(db)

	// 7. Connect the channel gateway
	tg, err := gateway.NewTelegramGateway(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChannelID,
		cfg.Telegram.PollTimeout,
		cfg.Telegram.Debug,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to connect telegram", zap.Error(err))
	}

	// 8. Initialize services
	auditLog := service.NewAuditLog(auditRepo, zlog)
	codes := service.NewCodeRegistry(codeRepo, auditLog, cfg.Subscription.AllowedDurations, cfg.Subscription.CodeLength, zlog)
	issuer := service.NewInviteIssuer(tg, cfg.Subscription.LinkLabelPrefix)
	redeemer := service.NewRedemptionService(codes, subRepo, issuer, auditLog, zlog)
	arbiter := service.NewJoinArbiter(cfg.Telegram.ChannelID, subRepo, tg, auditLog)
	subscriptions := service.NewSubscriptionService(subRepo, tg, auditLog, zlog)
	sweeper := service.NewExpirySweeper(subRepo, tg, auditLog, cfg.Subscription.SweepInterval, zlog.Named("sweeper"))
	conversation := service.NewAdminConversation(stateStore, cfg.Admin.SessionTTL)

	// 9. Initialize handlers
	bot := handler.NewBotHandler(tg, codes, redeemer, arbiter, conversation, cfg.Telegram, cfg.Subscription.CodeLength, zlog.Named("bot"))

	var adminHandler *handler.AdminHandler
	if cfg.Admin.APIEnabled {
		adminHandler = handler.NewAdminHandler(codes, subscriptions, sweeper, auditLog)
	}
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)

	// 10. Setup router and HTTP server
	router := handler.SetupRouter(cfg, zlog, jwtManager, adminHandler)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 11. Start polling, sweeping and serving
	var wg conc.WaitGroup
	wg.Go(func() { bot.Run(ctx, tg) })
	wg.Go(func() { sweeper.Run(ctx) })
	go func() {
		zlog.Info("server starting", zap.String("addr", addr), zap.Bool("admin_api", adminHandler != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server failed", zap.Error(err))
			stop()
		}
	}()
	zlog.Info("bot started",
		zap.Int64("channel_id", cfg.Telegram.ChannelID),
		zap.String("redemption_trigger", cfg.Telegram.RedemptionTrigger),
	)

	// 12. Wait for interrupt signal
	<-ctx.Done()
	zlog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		zlog.Info("exited gracefully")
	case <-time.After(cfg.Server.GracefulShutdownTimeout):
		zlog.Warn("in-flight work did not finish before the shutdown timeout")
	}
}
