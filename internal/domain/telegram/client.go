package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// MessageRef points at a message that was sent and may later be deleted.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Attachment is one item of a media group. Only the first item of a group carries a caption.
type Attachment struct {
	FileID  string
	Caption string
}

// Client defines an interface for sending messages via a Telegram bot.
// This helps in decoupling the application logic from the specific bot library.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string, options *telebot.SendOptions) (MessageRef, error)
	SendMediaGroup(ctx context.Context, chatID int64, items []Attachment) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
}
