package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	SendMessage(text string) error
	SendPhoto(name string, png []byte, caption string) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}

// SendPhoto uploads a PNG chart to the configured Telegram chat.
func (c *client) SendPhoto(name string, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileBytes{Name: name, Bytes: png})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(photo)
	return err
}
