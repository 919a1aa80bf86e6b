package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/domain"
)

// itemFromMessage resolves an inbound message to a typed item. The kind
// is decided here, once; everything downstream switches on it. Returns
// ok=false for messages carrying no asset.
func itemFromMessage(msg *tgbotapi.Message) (domain.Item, bool) {
	item := domain.Item{
		Caption:   msg.Caption,
		OwnerID:   msg.From.ID,
		CreatedAt: time.Now().UTC(),
	}

	switch {
	case len(msg.Photo) > 0:
		// the last size is the largest rendition
		item.Kind = domain.KindPhoto
		item.AssetRef = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		item.Kind = domain.KindVideo
		item.AssetRef = msg.Video.FileID
	case msg.Document != nil:
		item.Kind = domain.KindDocument
		item.AssetRef = msg.Document.FileID
	case msg.Audio != nil:
		item.Kind = domain.KindAudio
		item.AssetRef = msg.Audio.FileID
	case msg.Voice != nil:
		item.Kind = domain.KindVoice
		item.AssetRef = msg.Voice.FileID
	case msg.VideoNote != nil:
		item.Kind = domain.KindVideoNote
		item.AssetRef = msg.VideoNote.FileID
	case msg.Animation != nil:
		item.Kind = domain.KindAnimation
		item.AssetRef = msg.Animation.FileID
	case msg.Sticker != nil:
		item.Kind = domain.KindSticker
		item.AssetRef = msg.Sticker.FileID
	default:
		return domain.Item{}, false
	}

	return item, true
}

// isForwarded reports whether the message arrived via forward. Forwarded
// assets are already provider-hosted, so the reachability probe is
// skipped for them.
func isForwarded(msg *tgbotapi.Message) bool {
	return msg.ForwardFrom != nil || msg.ForwardFromChat != nil || msg.ForwardDate != 0
}

// broadcastFromMessage resolves the message an owner selected for
// fan-out. Text messages become KindText; anything with an asset keeps
// its kind and caption.
func broadcastFromMessage(msg *tgbotapi.Message) (domain.BroadcastMessage, bool) {
	if item, ok := itemFromMessage(msg); ok {
		return domain.BroadcastMessage{Kind: item.Kind, AssetRef: item.AssetRef, Caption: item.Caption}, true
	}
	if msg.Text != "" {
		return domain.BroadcastMessage{Kind: domain.KindText, Text: msg.Text}, true
	}
	return domain.BroadcastMessage{}, false
}
