package handlers

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/service"
)

// HandleHelp answers /help.
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.reply(ctx, b, update, helpText)
}

// HandleTest answers /test with a sample reminder, so users can see
// what a real one will look like.
func (h *Handlers) HandleTest(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if !h.requireSchedule(ctx, b, update) {
		return
	}
	h.reply(ctx, b, update, testReminderText)
}

// HandlePreview answers /preview with tomorrow's courses.
func (h *Handlers) HandlePreview(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	preview, err := h.reminders.PreviewFor(ctx, userID, time.Now())
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	if preview == "" {
		h.reply(ctx, b, update, "明天没有课程安排。")
		return
	}
	h.reply(ctx, b, update, preview)
}

// HandleStatus answers /status with the reminder policy and state.
func (h *Handlers) HandleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	status, err := h.reminders.StatusFor(ctx, update.Message.From.ID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, status)
}

// HandleStart answers /start: greet new users, re-enable reminders for
// users with a stored schedule.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	err := h.schedules.Enable(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoSchedule) {
			h.reply(ctx, b, update, "👋 欢迎使用课程提醒机器人！\n\n"+noScheduleText+"\n\n"+helpText)
			return
		}
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, "已开启课程提醒。")
}

// HandleStop answers /stop: reminders off, course data kept.
func (h *Handlers) HandleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	err := h.schedules.Disable(ctx, update.Message.From.ID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, "已停止课程提醒。发送 /start 可重新开启。")
}

// HandleClear answers /clear: schedule and markers gone.
func (h *Handlers) HandleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	err := h.schedules.Clear(ctx, update.Message.From.ID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, "已清除课程数据。")
}

// HandleTable answers /table with a rendered weekly timetable image.
func (h *Handlers) HandleTable(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	schedule, err := h.schedules.Get(ctx, userID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	if schedule == nil || len(schedule.Courses) == 0 {
		h.reply(ctx, b, update, noScheduleText)
		return
	}

	png, err := h.renderer.RenderPNG(schedule)
	if err != nil {
		h.logger.Error("timetable render failed",
			zap.Int64("user_id", userID), zap.Error(err))
		h.reply(ctx, b, update, "生成课程表图片失败，请稍后再试。")
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: "timetable.png",
			Data:     bytes.NewReader(png),
		},
	})
	if err != nil {
		h.logger.Warn("send photo failed",
			zap.Int64("chat_id", update.Message.Chat.ID), zap.Error(err))
	}
}

// requireSchedule replies with a hint and returns false when the user
// has no stored schedule.
func (h *Handlers) requireSchedule(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	schedule, err := h.schedules.Get(ctx, update.Message.From.ID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return false
	}
	if schedule == nil || len(schedule.Courses) == 0 {
		h.reply(ctx, b, update, noScheduleText)
		return false
	}
	return true
}

func (h *Handlers) replyServiceError(ctx context.Context, b *bot.Bot, update *models.Update, err error) {
	if errors.Is(err, service.ErrNoSchedule) {
		h.reply(ctx, b, update, noScheduleText)
		return
	}
	h.logger.Error("command failed",
		zap.Int64("user_id", update.Message.From.ID), zap.Error(err))
	h.reply(ctx, b, update, "操作失败，请稍后再试。")
}
