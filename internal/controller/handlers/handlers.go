package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/controller/render"
	"github.com/teheiw197/classbell/internal/service"
)

// Handlers holds every command and message handler of the bot.
type Handlers struct {
	schedules *service.ScheduleService
	reminders *service.ReminderService
	renderer  *render.Timetable
	logger    *zap.Logger
}

func NewHandlers(
	schedules *service.ScheduleService,
	reminders *service.ReminderService,
	renderer *render.Timetable,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		schedules: schedules,
		reminders: reminders,
		renderer:  renderer,
		logger:    logger,
	}
}

// reply sends plain text to the update's chat, logging send failures.
func (h *Handlers) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		h.logger.Warn("send message failed",
			zap.Int64("chat_id", update.Message.Chat.ID),
			zap.Error(err))
	}
}

// hasMedia reports whether the message carries an attachment the bot
// cannot parse (photo, document, sticker or similar binary payload).
func hasMedia(msg *models.Message) bool {
	return len(msg.Photo) > 0 ||
		msg.Document != nil ||
		msg.Sticker != nil ||
		msg.Video != nil ||
		msg.Audio != nil ||
		msg.Voice != nil
}
