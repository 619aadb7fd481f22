package handler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"channelpass/gatekeeper/internal/config"
	"channelpass/gatekeeper/internal/gateway"
	"channelpass/gatekeeper/internal/service"
)

// BotHandler dispatches inbound Telegram events to the services and answers the user.
type BotHandler struct {
	gateway      gateway.Gateway
	codes        service.CodeRegistry
	redeemer     service.RedemptionService
	arbiter      service.JoinArbiter
	conversation *service.AdminConversation
	adminID      int64
	trigger      string
	tokenPattern *regexp.Regexp
	workers      int
	logger       *zap.Logger
	now          func() time.Time
}

func NewBotHandler(
	gw gateway.Gateway,
	codes service.CodeRegistry,
	redeemer service.RedemptionService,
	arbiter service.JoinArbiter,
	conversation *service.AdminConversation,
	cfg config.TelegramConfig,
	codeLength int,
	logger *zap.Logger,
) *BotHandler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &BotHandler{
		gateway:      gw,
		codes:        codes,
		redeemer:     redeemer,
		arbiter:      arbiter,
		conversation: conversation,
		adminID:      cfg.AdminID,
		trigger:      cfg.RedemptionTrigger,
		tokenPattern: regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9]{%d}$`, codeLength)),
		workers:      workers,
		logger:       logger,
		now:          time.Now,
	}
}

// Run consumes updates until the source closes, handling up to workers of them at
// once, and returns after every in-flight handler finished.
func (h *BotHandler) Run(ctx context.Context, src gateway.UpdateSource) {
	p := pool.New().WithMaxGoroutines(h.workers)
	for u := range src.Updates(ctx) {
		p.Go(func() { h.HandleUpdate(ctx, u) })
	}
	p.Wait()
}

func (h *BotHandler) HandleUpdate(ctx context.Context, u gateway.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling update", zap.Int("update_id", u.ID), zap.Any("error", r))
		}
	}()

	switch {
	case u.JoinRequest != nil:
		h.handleJoinRequest(ctx, *u.JoinRequest)
	case u.Message != nil:
		h.handleMessage(ctx, *u.Message)
	}
}

func (h *BotHandler) handleJoinRequest(ctx context.Context, req gateway.JoinRequest) {
	decision, err := h.arbiter.Decide(ctx, req, h.now())
	if err != nil {
		h.logger.Warn("join request not settled",
			zap.Int64("chat_id", req.ChatID),
			zap.Int64("user_id", req.UserID),
			zap.Stringer("decision", decision),
			zap.Error(err),
		)
		return
	}
	h.logger.Debug("join request settled", zap.Int64("user_id", req.UserID), zap.Stringer("decision", decision))
}

func (h *BotHandler) handleMessage(ctx context.Context, msg gateway.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		if msg.UserID == h.adminID && h.answerConversation(ctx, msg, text) {
			return
		}
		if h.trigger == config.TriggerPlainText && h.tokenPattern.MatchString(text) {
			h.redeem(ctx, msg, text)
		}
		return
	}

	fields := strings.Fields(text)
	// Commands in groups arrive as /cmd@botname.
	cmd, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch cmd {
	case "/start":
		h.reply(ctx, msg.ChatID, startMessage(h.trigger))
	case "/generate":
		h.handleGenerate(ctx, msg, args)
	case "/use":
		if h.trigger == config.TriggerCommand && len(args) == 1 && h.tokenPattern.MatchString(args[0]) {
			h.redeem(ctx, msg, args[0])
		}
	}
}

func (h *BotHandler) handleGenerate(ctx context.Context, msg gateway.Message, args []string) {
	if msg.UserID != h.adminID {
		h.reply(ctx, msg.ChatID, msgAdminOnly)
		return
	}
	if len(args) > 0 {
		h.issueCode(ctx, msg, args[0])
		return
	}
	if err := h.conversation.Open(ctx, msg.UserID, msg.ChatID, service.ConversationGenerateCode); err != nil {
		h.logger.Error("failed to open admin conversation", zap.Error(err))
		h.reply(ctx, msg.ChatID, msgInternalError)
		return
	}
	h.reply(ctx, msg.ChatID, askDurationMessage(h.codes.AllowedDurations()))
}

// answerConversation reports whether text was consumed as the answer to a pending prompt.
func (h *BotHandler) answerConversation(ctx context.Context, msg gateway.Message, text string) bool {
	purpose, err := h.conversation.Consume(ctx, msg.UserID, msg.ChatID)
	if err != nil {
		h.logger.Error("failed to read admin conversation", zap.Error(err))
		return false
	}
	switch purpose {
	case service.ConversationGenerateCode:
		h.issueCode(ctx, msg, text)
		return true
	default:
		return false
	}
}

func (h *BotHandler) issueCode(ctx context.Context, msg gateway.Message, rawDays string) {
	days, err := strconv.Atoi(strings.TrimSpace(rawDays))
	if err != nil {
		days = 0
	}

	code, err := h.codes.Issue(ctx, days, msg.UserID)
	switch {
	case errors.Is(err, service.ErrInvalidDuration):
		h.reply(ctx, msg.ChatID, invalidDurationMessage(h.codes.AllowedDurations()))
	case err != nil:
		h.logger.Error("failed to issue code", zap.Int("days", days), zap.Error(err))
		h.reply(ctx, msg.ChatID, msgInternalError)
	default:
		h.logger.Info("code issued", zap.Int64("admin_id", msg.UserID), zap.Int("days", days))
		h.reply(ctx, msg.ChatID, codeCreatedMessage(code.Code, code.DurationDays))
	}
}

func (h *BotHandler) redeem(ctx context.Context, msg gateway.Message, token string) {
	res, err := h.redeemer.Redeem(ctx, service.RedeemRequest{
		UserID: msg.UserID,
		Handle: msg.Handle,
		Token:  token,
		Now:    h.now(),
	})
	if err != nil {
		h.logger.Error("redemption failed", zap.Int64("user_id", msg.UserID), zap.String("code", token), zap.Error(err))
		if errors.Is(err, service.ErrGatewayUnavailable) {
			h.reply(ctx, msg.ChatID, msgTryLater)
		} else {
			h.reply(ctx, msg.ChatID, msgInternalError)
		}
		return
	}

	h.reply(ctx, msg.ChatID, redeemReply(res))
}

func redeemReply(res *service.RedeemResult) string {
	switch res.Outcome {
	case service.OutcomeRedeemed:
		return redeemedMessage(res.ExpiresAt, res.Link)
	case service.OutcomeLinkRefreshed:
		return linkRefreshedMessage(res.ExpiresAt, res.Link)
	case service.OutcomeUsedByOther:
		return msgUsedByOther
	case service.OutcomeExpired:
		return msgSubscriptionExpired
	case service.OutcomeRevoked:
		return msgAccessRevoked
	case service.OutcomeUserDataMissing:
		return msgUserDataMissing
	default:
		return msgInvalidCode
	}
}

func (h *BotHandler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.gateway.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
