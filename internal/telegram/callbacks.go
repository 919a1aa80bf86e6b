package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/service"
)

// Callback data layout: "cfg:g:t" toggles the global policy, "cfg:g:h"
// prompts for global hours, "cfg:c:t:<code>" / "cfg:c:h:<code>" the
// per-batch equivalents, "bc:go" / "bc:no" resolve a staged broadcast.
const (
	cbGlobalToggle = "cfg:g:t"
	cbGlobalHours  = "cfg:g:h"
	cbCodeToggle   = "cfg:c:t"
	cbCodeHours    = "cfg:c:h"
	cbBroadcastGo  = "bc:go"
	cbBroadcastNo  = "bc:no"
)

func globalConfigKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Toggle auto-delete", cbGlobalToggle),
			tgbotapi.NewInlineKeyboardButtonData("Set hours", cbGlobalHours),
		),
	)
}

func codeConfigKeyboard(code string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Toggle auto-delete", cbCodeToggle+":"+code),
			tgbotapi.NewInlineKeyboardButtonData("Set hours", cbCodeHours+":"+code),
		),
	)
}

func broadcastKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Send it", cbBroadcastGo),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbBroadcastNo),
		),
	)
}

// showConfig renders the global or per-batch policy view with its
// inline controls.
func (b *Bot) showConfig(ctx context.Context, chatID, userID int64, code string) {
	if code == "" {
		policy, err := b.policies.Global(ctx)
		if err != nil {
			logger.Log.Error("failed to load global policy", "error", err)
			b.reply(chatID, "Something went wrong, try again.")
			return
		}
		b.replyWithKeyboard(chatID, renderGlobalConfig(policy), globalConfigKeyboard())
		return
	}

	owns, err := b.vault.OwnsCode(ctx, userID, code)
	if err != nil {
		logger.Log.Error("failed to check code ownership", "user", userID, "code", code, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	if !owns {
		b.reply(chatID, "No batch of yours matches that code.")
		return
	}

	policy, err := b.policies.ForCode(ctx, code)
	if err != nil {
		logger.Log.Error("failed to load code policy", "code", code, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.replyWithKeyboard(chatID, renderCodeConfig(code, policy), codeConfigKeyboard(code))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logger.Log.Warn("failed to ack callback", "error", err)
	}
	if cq.Message == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	userID := cq.From.ID
	if !b.auth.IsAuthorized(userID) {
		return
	}

	switch {
	case cq.Data == cbGlobalToggle:
		b.toggleGlobal(ctx, chatID, messageID)
	case cq.Data == cbGlobalHours:
		b.sessions.AwaitGlobalTTL(userID, messageID)
		b.reply(chatID, renderTTLPrompt())
	case strings.HasPrefix(cq.Data, cbCodeToggle+":"):
		b.toggleCode(ctx, chatID, messageID, strings.TrimPrefix(cq.Data, cbCodeToggle+":"))
	case strings.HasPrefix(cq.Data, cbCodeHours+":"):
		b.sessions.AwaitCodeTTL(userID, strings.TrimPrefix(cq.Data, cbCodeHours+":"), messageID)
		b.reply(chatID, renderTTLPrompt())
	case cq.Data == cbBroadcastGo:
		b.confirmBroadcast(ctx, chatID, messageID, userID)
	case cq.Data == cbBroadcastNo:
		if b.broadcaster.CancelPending(userID) {
			b.edit(chatID, messageID, "Broadcast cancelled.", nil)
		} else {
			b.edit(chatID, messageID, "Nothing pending.", nil)
		}
	}
}

func (b *Bot) toggleGlobal(ctx context.Context, chatID int64, messageID int) {
	policy, err := b.policies.Global(ctx)
	if err != nil {
		logger.Log.Error("failed to load global policy", "error", err)
		return
	}
	flipped := !policy.AutoDelete
	if err := b.policies.SetGlobal(ctx, &flipped, nil); err != nil {
		logger.Log.Error("failed to toggle global policy", "error", err)
		return
	}
	policy.AutoDelete = flipped
	keyboard := globalConfigKeyboard()
	b.edit(chatID, messageID, renderGlobalConfig(policy), &keyboard)
}

func (b *Bot) toggleCode(ctx context.Context, chatID int64, messageID int, code string) {
	policy, err := b.policies.ForCode(ctx, code)
	if err != nil {
		logger.Log.Error("failed to load code policy", "code", code, "error", err)
		return
	}
	flipped := !policy.AutoDelete
	if err := b.policies.SetForCode(ctx, code, &flipped, nil); err != nil {
		logger.Log.Error("failed to toggle code policy", "code", code, "error", err)
		return
	}
	policy.AutoDelete = flipped
	keyboard := codeConfigKeyboard(code)
	b.edit(chatID, messageID, renderCodeConfig(code, policy), &keyboard)
}

// refreshConfigView re-renders the config prompt a TTL reply belongs to.
func (b *Bot) refreshConfigView(ctx context.Context, chatID int64, session service.Session) {
	switch session.State {
	case service.StateAwaitingGlobalTTL:
		policy, err := b.policies.Global(ctx)
		if err != nil {
			return
		}
		keyboard := globalConfigKeyboard()
		b.edit(chatID, session.PromptMessageID, renderGlobalConfig(policy), &keyboard)
	case service.StateAwaitingCodeTTL:
		policy, err := b.policies.ForCode(ctx, session.Code)
		if err != nil {
			return
		}
		keyboard := codeConfigKeyboard(session.Code)
		b.edit(chatID, session.PromptMessageID, renderCodeConfig(session.Code, policy), &keyboard)
	}
}

// requestBroadcast resolves the selected content (replied-to message or
// command arguments) and hands it to the broadcaster.
func (b *Bot) requestBroadcast(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	var bmsg domain.BroadcastMessage
	var ok bool
	switch {
	case msg.ReplyToMessage != nil:
		bmsg, ok = broadcastFromMessage(msg.ReplyToMessage)
	case args != "":
		bmsg, ok = domain.BroadcastMessage{Kind: domain.KindText, Text: args}, true
	}
	if !ok {
		b.reply(chatID, "Reply to a message with /broadcast, or use /broadcast &lt;text&gt;.")
		return
	}

	started, total, err := b.broadcaster.Request(ctx, userID, bmsg, newProgressReporter(b.api, chatID))
	if err != nil {
		logger.Log.Error("broadcast request failed", "user", userID, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	if !started {
		b.replyWithKeyboard(chatID, renderBroadcastPending(total), broadcastKeyboard())
		return
	}
	b.reply(chatID, renderBroadcastStarted(total))
}

func (b *Bot) confirmBroadcast(ctx context.Context, chatID int64, messageID int, userID int64) {
	total, err := b.broadcaster.Confirm(ctx, userID, newProgressReporter(b.api, chatID))
	if errors.Is(err, internal_errors.ErrNoPendingBroadcast) {
		b.edit(chatID, messageID, "Nothing pending.", nil)
		return
	}
	if err != nil {
		logger.Log.Error("broadcast confirm failed", "user", userID, "error", err)
		b.edit(chatID, messageID, "Something went wrong, try again.", nil)
		return
	}
	b.edit(chatID, messageID, renderBroadcastStarted(total), nil)
}
