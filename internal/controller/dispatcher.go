package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramDispatcher adapts *bot.Bot to the reminder engine's
// Dispatcher interface.
type TelegramDispatcher struct {
	bot *bot.Bot
}

func NewTelegramDispatcher(b *bot.Bot) *TelegramDispatcher {
	return &TelegramDispatcher{bot: b}
}

// Send delivers plain text to the chat.
func (d *TelegramDispatcher) Send(ctx context.Context, chatID int64, text string) error {
	_, err := d.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
