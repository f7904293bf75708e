package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain telegram.Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.User{ID: recipientChatID} // direct user chats only
	_, err := tba.bot.Send(recipient, text, options)
	return err
}

// SendVideo relays a previously seen video by its Telegram file ID.
func (tba *TelebotAdapter) SendVideo(recipientChatID int64, fileID string, caption string) error {
	video := &telebot.Video{File: telebot.File{FileID: fileID}, Caption: caption}
	_, err := tba.bot.Send(&telebot.User{ID: recipientChatID}, video)
	return err
}
