package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/ai"
	"github.com/teheiw197/classbell/internal/parse"
	"github.com/teheiw197/classbell/internal/service"
)

// HandleMessage is the catch-all for non-command messages: media gets
// the conversion template, confirmation words move the pending
// schedule, everything else is treated as schedule text to parse.
func (h *Handlers) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	if hasMedia(msg) {
		h.reply(ctx, b, update, mediaReplyText)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}

	switch text {
	case "确认", "是":
		h.handleConfirm(ctx, b, update)
		return
	case "取消", "否":
		h.handleReject(ctx, b, update)
		return
	}

	h.handleScheduleText(ctx, b, update, text)
}

func (h *Handlers) handleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID := update.Message.From.ID

	schedule, err := h.schedules.Get(ctx, userID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	if schedule == nil {
		h.reply(ctx, b, update, noScheduleText)
		return
	}

	if schedule.IsPending() {
		if _, err := h.schedules.Confirm(ctx, userID); err != nil {
			h.replyServiceError(ctx, b, update, err)
			return
		}
		h.reply(ctx, b, update, "课程表已确认，课程提醒已开启。")
		return
	}

	// "是" after the nightly preview re-enables reminders for tomorrow.
	if err := h.schedules.Enable(ctx, userID); err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, "已开启课程提醒。")
}

func (h *Handlers) handleReject(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID := update.Message.From.ID

	schedule, err := h.schedules.Get(ctx, userID)
	if err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	if schedule == nil || !schedule.IsPending() {
		return
	}

	if err := h.schedules.Reject(ctx, userID); err != nil {
		h.replyServiceError(ctx, b, update, err)
		return
	}
	h.reply(ctx, b, update, "已取消，课程表未保存。")
}

func (h *Handlers) handleScheduleText(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	schedule, err := h.schedules.IngestText(ctx, userID, chatID, text)
	if err != nil {
		switch {
		case errors.Is(err, parse.ErrNoCourses):
			h.reply(ctx, b, update, parseFailedText)
		case errors.Is(err, ai.ErrUpstream):
			h.reply(ctx, b, update, aiUnavailableText)
		default:
			h.logger.Error("schedule ingestion failed",
				zap.Int64("user_id", userID), zap.Error(err))
			h.reply(ctx, b, update, "操作失败，请稍后再试。")
		}
		return
	}

	h.reply(ctx, b, update,
		fmt.Sprintf(confirmPromptText, service.FormatSchedule(schedule)))
}
