package telegram

import (
	"context"
	"strconv"

	"gopkg.in/telebot.v3"

	domainTelegram "shift_report_bot/internal/domain/telegram"
)

// maxAlbumItems is Telegram's limit for one sendMediaGroup call.
const maxAlbumItems = 10

var _ domainTelegram.Client = (*TelebotAdapter)(nil)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a user or a group chat.
func (tba *TelebotAdapter) SendMessage(_ context.Context, chatID int64, text string, options *telebot.SendOptions) (domainTelegram.MessageRef, error) {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	msg, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	if err != nil {
		return domainTelegram.MessageRef{}, err
	}
	return domainTelegram.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// SendMediaGroup sends photos as albums of at most ten. Only the first
// album carries the caption.
func (tba *TelebotAdapter) SendMediaGroup(_ context.Context, chatID int64, items []domainTelegram.Attachment) error {
	for _, chunk := range albumChunks(items) {
		if _, err := tba.bot.SendAlbum(telebot.ChatID(chatID), chunk); err != nil {
			return err
		}
	}
	return nil
}

func (tba *TelebotAdapter) DeleteMessage(_ context.Context, ref domainTelegram.MessageRef) error {
	return tba.bot.Delete(telebot.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	})
}

func albumChunks(items []domainTelegram.Attachment) []telebot.Album {
	var chunks []telebot.Album
	for start := 0; start < len(items); start += maxAlbumItems {
		end := start + maxAlbumItems
		if end > len(items) {
			end = len(items)
		}
		album := make(telebot.Album, 0, end-start)
		for _, it := range items[start:end] {
			album = append(album, &telebot.Photo{
				File:    telebot.File{FileID: it.FileID},
				Caption: it.Caption,
			})
		}
		chunks = append(chunks, album)
	}
	return chunks
}
