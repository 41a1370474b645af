package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/controller/handlers"
	"github.com/teheiw197/classbell/internal/controller/render"
	"github.com/teheiw197/classbell/internal/service"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	schedules *service.ScheduleService,
	reminders *service.ReminderService,
	renderer *render.Timetable,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(schedules, reminders, renderer, logger),
		logger:   logger,
	}
}

// RegisterHandlers wires the command surface and the catch-all
// schedule-text handler.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/test", bot.MatchTypeExact, c.handlers.HandleTest)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/preview", bot.MatchTypeExact, c.handlers.HandlePreview)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, c.handlers.HandleStatus)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypeExact, c.handlers.HandleStop)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clear", bot.MatchTypeExact, c.handlers.HandleClear)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/table", bot.MatchTypeExact, c.handlers.HandleTable)

	// Everything else — pasted schedule text, confirmation replies,
	// media — goes through the message handler.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleMessage)

	return c.setCommands(ctx)
}

// setCommands installs the bot command menu.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 开启课程提醒"},
		{Command: "help", Description: "❓ 使用说明"},
		{Command: "test", Description: "🔔 发送测试提醒"},
		{Command: "preview", Description: "📅 预览明天的课程"},
		{Command: "status", Description: "📊 查看提醒状态"},
		{Command: "stop", Description: "⏸ 停止课程提醒"},
		{Command: "clear", Description: "🗑 清除课程数据"},
		{Command: "table", Description: "🖼 生成课程表图片"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start runs the long-polling loop until ctx is cancelled.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
