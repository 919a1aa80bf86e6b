package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"
)

// Courier adapts the provider API to the delivery and broadcast
// boundaries. Captions pass through bluemonday before being rendered as
// HTML so stored content can never inject markup.
type Courier struct {
	api      Sender
	sanitize *bluemonday.Policy
}

// Sender is the slice of the provider client the courier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

func NewCourier(api Sender) *Courier {
	return &Courier{api: api, sanitize: bluemonday.StrictPolicy()}
}

// SendAlbum sends one album of up to ten same-kind items. The caption
// rides on the first element only; the provider shows it under the
// whole album.
func (c *Courier) SendAlbum(ctx context.Context, dest int64, items []domain.Item) error {
	media := make([]interface{}, 0, len(items))
	for i, item := range items {
		caption := ""
		if i == 0 {
			caption = c.sanitize.Sanitize(item.Caption)
		}
		m, err := inputMedia(item, caption)
		if err != nil {
			return err
		}
		media = append(media, m)
	}

	_, err := c.api.SendMediaGroup(tgbotapi.NewMediaGroup(dest, media))
	return classify(err)
}

func inputMedia(item domain.Item, caption string) (interface{}, error) {
	file := tgbotapi.FileID(item.AssetRef)
	switch item.Kind {
	case domain.KindPhoto:
		m := tgbotapi.NewInputMediaPhoto(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m, nil
	case domain.KindVideo:
		m := tgbotapi.NewInputMediaVideo(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m, nil
	case domain.KindDocument:
		m := tgbotapi.NewInputMediaDocument(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m, nil
	case domain.KindAudio:
		m := tgbotapi.NewInputMediaAudio(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m, nil
	}
	return nil, fmt.Errorf("kind %q cannot join an album", item.Kind)
}

// SendItem sends one item on its own, kind-dispatched.
func (c *Courier) SendItem(ctx context.Context, dest int64, item domain.Item) error {
	file := tgbotapi.FileID(item.AssetRef)
	caption := c.sanitize.Sanitize(item.Caption)

	var chattable tgbotapi.Chattable
	switch item.Kind {
	case domain.KindPhoto:
		m := tgbotapi.NewPhoto(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindVideo:
		m := tgbotapi.NewVideo(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindDocument:
		m := tgbotapi.NewDocument(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindAudio:
		m := tgbotapi.NewAudio(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindVoice:
		m := tgbotapi.NewVoice(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindVideoNote:
		// video notes carry no caption
		chattable = tgbotapi.NewVideoNote(dest, 0, file)
	case domain.KindAnimation:
		m := tgbotapi.NewAnimation(dest, file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		chattable = m
	case domain.KindSticker:
		chattable = tgbotapi.NewSticker(dest, file)
	default:
		return fmt.Errorf("unsupported asset kind %q", item.Kind)
	}

	_, err := c.api.Send(chattable)
	return classify(err)
}

// SendBroadcast sends one broadcast message to one recipient.
func (c *Courier) SendBroadcast(ctx context.Context, dest int64, msg domain.BroadcastMessage) error {
	if msg.Kind == domain.KindText {
		m := tgbotapi.NewMessage(dest, c.sanitize.Sanitize(msg.Text))
		m.ParseMode = tgbotapi.ModeHTML
		_, err := c.api.Send(m)
		return classify(err)
	}
	return c.SendItem(ctx, dest, domain.Item{Kind: msg.Kind, AssetRef: msg.AssetRef, Caption: msg.Caption})
}

// classify maps provider failures onto the retry taxonomy: rate limits
// and provider-side errors are transient, rejections (bad request,
// blocked bot) are permanent, anything else (network) is worth a retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		if tgErr.Code == 429 || tgErr.Code >= 500 {
			return internal_errors.Transient(err)
		}
		return err
	}
	return internal_errors.Transient(err)
}
