package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/service"
)

// Provider is the slice of the provider client the bot depends on.
// *tgbotapi.BotAPI satisfies it.
type Provider interface {
	Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RecipientRegistry persists everyone who ever contacted the bot, for
// broadcast targeting.
type RecipientRegistry interface {
	UpsertRecipient(ctx context.Context, r domain.Recipient) error
}

// Bot is the inbound transport: it polls provider updates and maps
// them onto the service layer. Updates are handled sequentially; only
// broadcast fan-out runs detached.
type Bot struct {
	api     Provider
	botName string

	auth        *service.Authorizer
	staging     *service.Staging
	redemption  *service.Redemption
	policies    *service.Policies
	vault       *service.Vault
	broadcaster *service.Broadcaster
	sessions    *service.Sessions
	recipients  RecipientRegistry

	// staged-count replies are throttled past this count
	pendingNotice int
	startedAt     time.Time
}

type BotDeps struct {
	Auth        *service.Authorizer
	Staging     *service.Staging
	Redemption  *service.Redemption
	Policies    *service.Policies
	Vault       *service.Vault
	Broadcaster *service.Broadcaster
	Sessions    *service.Sessions
	Recipients  RecipientRegistry

	PendingNoticeThreshold int
}

func NewBot(api Provider, botName string, deps BotDeps) *Bot {
	return &Bot{
		api:           api,
		botName:       botName,
		auth:          deps.Auth,
		staging:       deps.Staging,
		redemption:    deps.Redemption,
		policies:      deps.Policies,
		vault:         deps.Vault,
		broadcaster:   deps.Broadcaster,
		sessions:      deps.Sessions,
		recipients:    deps.Recipients,
		pendingNotice: deps.PendingNoticeThreshold,
		startedAt:     time.Now(),
	}
}

// Run polls updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	logger.Log.Info("bot update loop started", "bot", b.botName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Log.Info("bot update loop shutting down gracefully")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Log.Warn("update channel closed")
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	// best effort; a failed upsert must not break command handling
	err := b.recipients.UpsertRecipient(ctx, domain.Recipient{
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstSeen: time.Now().UTC(),
	})
	if err != nil {
		logger.Log.Warn("failed to register recipient", "user", msg.From.ID, "error", err)
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	default:
		if item, ok := itemFromMessage(msg); ok {
			b.handleUpload(ctx, msg, item)
			return
		}
		if msg.Text != "" {
			b.handleText(ctx, msg)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(m); err != nil {
		logger.Log.Warn("failed to send reply", "chat", chatID, "error", err)
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = keyboard
	if _, err := b.api.Send(m); err != nil {
		logger.Log.Warn("failed to send reply", "chat", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		logger.Log.Warn("failed to edit message", "chat", chatID, "error", err)
	}
}
