package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/logger"
)

// progressReporter maintains one provider message with running fan-out
// snapshots: posted on the first event, edited in place afterwards.
// Reporting is cosmetic; failures are logged and never abort the run.
// The broadcaster invokes it from a single goroutine.
type progressReporter struct {
	api       Sender
	chatID    int64
	messageID int
}

func newProgressReporter(api Sender, chatID int64) *progressReporter {
	return &progressReporter{api: api, chatID: chatID}
}

func (r *progressReporter) Progress(p domain.BroadcastProgress) {
	r.post(renderBroadcastProgress(p))
}

func (r *progressReporter) Done(report domain.BroadcastReport) {
	r.post(renderBroadcastReport(report))
}

func (r *progressReporter) post(text string) {
	if r.messageID == 0 {
		sent, err := r.api.Send(tgbotapi.NewMessage(r.chatID, text))
		if err != nil {
			logger.Log.Warn("failed to post broadcast progress", "error", err)
			return
		}
		r.messageID = sent.MessageID
		return
	}
	if _, err := r.api.Send(tgbotapi.NewEditMessageText(r.chatID, r.messageID, text)); err != nil {
		logger.Log.Warn("failed to edit broadcast progress", "error", err)
	}
}
