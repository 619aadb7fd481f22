package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramGateway implements Gateway on the Telegram Bot API using long polling.
type TelegramGateway struct {
	bot         *tgbotapi.BotAPI
	channelID   int64
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewTelegramGateway authenticates the bot token against the Bot API.
func NewTelegramGateway(token string, channelID int64, pollTimeout time.Duration, debug bool, logger *zap.Logger) (*TelegramGateway, error) {
	// The library reports polling failures through its own logger and retries by itself.
	if err := tgbotapi.SetLogger(zap.NewStdLog(logger.Named("tgbotapi"))); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	bot.Debug = debug

	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &TelegramGateway{
		bot:         bot,
		channelID:   channelID,
		pollTimeout: pollTimeout,
		logger:      logger,
	}, nil
}

func (g *TelegramGateway) CreateInviteLink(ctx context.Context, req InviteLinkRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := g.bot.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:         tgbotapi.ChatConfig{ChatID: g.channelID},
		Name:               req.Name,
		ExpireDate:         int(req.ExpiresAt.Unix()),
		CreatesJoinRequest: req.CreatesJoinRequest,
	})
	if err != nil {
		return "", fmt.Errorf("createChatInviteLink: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link: %w", err)
	}
	if link.InviteLink == "" {
		return "", fmt.Errorf("createChatInviteLink: empty link in response")
	}
	return link.InviteLink, nil
}

func (g *TelegramGateway) ApproveJoinRequest(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := g.bot.Request(tgbotapi.ApproveChatJoinRequestConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: g.channelID},
		UserID:     userID,
	})
	if err != nil {
		return fmt.Errorf("approveChatJoinRequest: %w", err)
	}
	return nil
}

func (g *TelegramGateway) DeclineJoinRequest(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := g.bot.Request(tgbotapi.DeclineChatJoinRequest{
		ChatConfig: tgbotapi.ChatConfig{ChatID: g.channelID},
		UserID:     userID,
	})
	if err != nil {
		return fmt.Errorf("declineChatJoinRequest: %w", err)
	}
	return nil
}

func (g *TelegramGateway) RemoveMember(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	member := tgbotapi.ChatMemberConfig{ChatID: g.channelID, UserID: userID}
	if _, err := g.bot.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}); err != nil {
		return fmt.Errorf("banChatMember: %w", err)
	}
	if _, err := g.bot.Request(tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member, OnlyIfBanned: true}); err != nil {
		return fmt.Errorf("unbanChatMember: %w", err)
	}
	return nil
}

func (g *TelegramGateway) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := g.bot.Send(msg); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

// Updates starts long polling and converts Telegram updates into gateway events.
// The returned channel is closed after ctx is cancelled.
func (g *TelegramGateway) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(g.pollTimeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "chat_join_request"}

	raw := g.bot.GetUpdatesChan(cfg)
	out := make(chan Update)

	go func() {
		defer close(out)
		defer g.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				ev, ok := convertUpdate(u)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// convertUpdate drops update kinds the bot does not handle and payloads without an actor.
func convertUpdate(u tgbotapi.Update) (Update, bool) {
	switch {
	case u.Message != nil:
		if u.Message.From == nil || u.Message.Chat == nil {
			return Update{}, false
		}
		return Update{
			ID: u.UpdateID,
			Message: &Message{
				ChatID: u.Message.Chat.ID,
				UserID: u.Message.From.ID,
				Handle: u.Message.From.UserName,
				Text:   u.Message.Text,
			},
		}, true
	case u.ChatJoinRequest != nil:
		return Update{
			ID: u.UpdateID,
			JoinRequest: &JoinRequest{
				ChatID: u.ChatJoinRequest.Chat.ID,
				UserID: u.ChatJoinRequest.From.ID,
			},
		}, true
	default:
		return Update{}, false
	}
}

var (
	_ Gateway      = (*TelegramGateway)(nil)
	_ UpdateSource = (*TelegramGateway)(nil)
)
