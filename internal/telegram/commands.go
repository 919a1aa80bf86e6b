package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/service"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		if args != "" {
			b.redeem(ctx, chatID, args)
			return
		}
		b.reply(chatID, renderWelcome())
	case "help":
		if b.auth.IsAuthorized(userID) {
			b.reply(chatID, renderHelpAuthorized())
			return
		}
		b.reply(chatID, renderHelpBasic())
	case "savefiles":
		if !b.requireAuth(chatID, userID) {
			return
		}
		b.commit(ctx, chatID, userID)
	case "cancelupload":
		if !b.requireAuth(chatID, userID) {
			return
		}
		if err := b.staging.Cancel(ctx, userID); err != nil {
			logger.Log.Error("failed to cancel upload", "user", userID, "error", err)
			b.reply(chatID, "Something went wrong, try again.")
			return
		}
		b.sessions.Reset(userID)
		b.reply(chatID, "Staged batch dropped.")
	case "viewfiles":
		if !b.requireAuth(chatID, userID) {
			return
		}
		summaries, err := b.vault.List(ctx, userID)
		if err != nil {
			logger.Log.Error("failed to list batches", "user", userID, "error", err)
			b.reply(chatID, "Something went wrong, try again.")
			return
		}
		b.reply(chatID, renderSummaries(summaries))
	case "deletefiles":
		if !b.requireAuth(chatID, userID) {
			return
		}
		if args == "" {
			b.reply(chatID, "Usage: /deletefiles &lt;code&gt;")
			return
		}
		b.deleteBatch(ctx, chatID, userID, args)
	case "stats":
		if !b.requireAuth(chatID, userID) {
			return
		}
		stats, err := b.vault.Stats(ctx)
		if err != nil {
			logger.Log.Error("failed to load stats", "error", err)
			b.reply(chatID, "Something went wrong, try again.")
			return
		}
		b.reply(chatID, renderStats(stats, time.Since(b.startedAt)))
	case "uptime":
		if !b.requireAuth(chatID, userID) {
			return
		}
		b.reply(chatID, renderUptime(time.Since(b.startedAt)))
	case "config":
		if !b.requireAuth(chatID, userID) {
			return
		}
		b.showConfig(ctx, chatID, userID, args)
	case "broadcast":
		if !b.requireAuth(chatID, userID) {
			return
		}
		b.requestBroadcast(ctx, msg, args)
	default:
		b.reply(chatID, "Unknown command. /help lists what I can do.")
	}
}

func (b *Bot) requireAuth(chatID, userID int64) bool {
	if b.auth.IsAuthorized(userID) {
		return true
	}
	b.reply(chatID, "This command is for uploaders only. Send me a code instead.")
	return false
}

func (b *Bot) redeem(ctx context.Context, chatID int64, code string) {
	result, err := b.redemption.Redeem(ctx, code, chatID)
	if errors.Is(err, internal_errors.ErrCodeNotFound) {
		b.reply(chatID, "Unknown or expired code.")
		return
	}
	if err != nil {
		logger.Log.Error("redemption failed", "code", code, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.reply(chatID, renderRedeemed(result))
}

func (b *Bot) commit(ctx context.Context, chatID, userID int64) {
	code, n, policy, err := b.staging.Commit(ctx, userID)
	if errors.Is(err, internal_errors.ErrEmptyBatch) {
		b.reply(chatID, "Nothing staged. Send me files first.")
		return
	}
	if err != nil {
		logger.Log.Error("commit failed", "user", userID, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.reply(chatID, renderCommitted(b.botName, code, n, policy))
}

func (b *Bot) deleteBatch(ctx context.Context, chatID, userID int64, code string) {
	err := b.vault.Delete(ctx, userID, code)
	if errors.Is(err, internal_errors.ErrCodeNotFound) {
		b.reply(chatID, "No batch of yours matches that code.")
		return
	}
	if err != nil {
		logger.Log.Error("batch deletion failed", "user", userID, "code", code, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.reply(chatID, "Batch deleted.")
}

func (b *Bot) handleUpload(ctx context.Context, msg *tgbotapi.Message, item domain.Item) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	if !b.auth.IsAuthorized(userID) {
		b.reply(chatID, "Only uploaders can store files. Send me a code instead.")
		return
	}

	// forwarded assets are already provider-hosted; probing them again
	// is wasted round trips
	if !isForwarded(msg) {
		if _, err := b.api.GetFile(tgbotapi.FileConfig{FileID: item.AssetRef}); err != nil {
			logger.Log.Warn("asset probe failed", "user", userID, "kind", item.Kind, "error", err)
			b.reply(chatID, "I could not fetch that file, it was not staged.")
			return
		}
	}

	count, err := b.staging.Append(ctx, item)
	if err != nil {
		var vErr *internal_errors.ValidationError
		if errors.As(err, &vErr) {
			b.reply(chatID, "I cannot store that kind of message.")
			return
		}
		logger.Log.Error("failed to stage item", "user", userID, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}

	if count <= b.pendingNotice || count%b.pendingNotice == 0 {
		b.reply(chatID, renderStaged(count))
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if b.auth.IsAuthorized(userID) {
		if b.handleTTLReply(ctx, chatID, userID, text) {
			return
		}
	}

	if looksLikeCode(text) {
		b.redeem(ctx, chatID, text)
		return
	}
	if !b.auth.IsAuthorized(userID) {
		b.reply(chatID, renderWelcome())
	}
}

// handleTTLReply consumes the text when the owner's session awaits a
// TTL value. Reports whether the text was consumed.
func (b *Bot) handleTTLReply(ctx context.Context, chatID, userID int64, text string) bool {
	session := b.sessions.Get(userID)
	if session.State == service.StateIdle {
		return false
	}

	hours, err := strconv.Atoi(text)
	if err != nil {
		b.reply(chatID, "Send a whole number of hours, e.g. 24.")
		return true
	}

	switch session.State {
	case service.StateAwaitingGlobalTTL:
		err = b.policies.SetGlobal(ctx, nil, &hours)
	case service.StateAwaitingCodeTTL:
		err = b.policies.SetForCode(ctx, session.Code, nil, &hours)
	}

	var vErr *internal_errors.ValidationError
	if errors.As(err, &vErr) {
		b.reply(chatID, vErr.Message)
		return true
	}
	if err != nil {
		logger.Log.Error("failed to update ttl", "user", userID, "error", err)
		b.reply(chatID, "Something went wrong, try again.")
		return true
	}

	b.sessions.Reset(userID)
	b.refreshConfigView(ctx, chatID, session)
	return true
}

func looksLikeCode(s string) bool {
	if len(s) != domain.CodeLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
