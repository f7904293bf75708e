package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// This helps in decoupling the dialogue engine from the specific bot library;
// tests substitute a recording fake.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
	// SendVideo relays a previously seen video by its Telegram file ID.
	SendVideo(recipientChatID int64, fileID string, caption string) error
}
