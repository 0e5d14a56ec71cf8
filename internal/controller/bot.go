// Package controller Telegram бот приглашений: учитель с привязанным
// чатом видит входящие приглашения и отвечает на них из бота.
package controller

import (
	"context"

	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Responder часть *bot.Bot, через которую отвечают обработчики
type Responder interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

type BotController struct {
	bot       *bot.Bot
	directory *service.DirectoryService
	invites   *service.InviteService
	logger    *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	directory *service.DirectoryService,
	invites *service.InviteService,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:       botInstance,
		directory: directory,
		invites:   invites,
		logger:    logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact,
		func(ctx context.Context, b *bot.Bot, update *models.Update) { c.handleStart(ctx, b, update) })
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/invites", bot.MatchTypeExact,
		func(ctx context.Context, b *bot.Bot, update *models.Update) { c.handleInvites(ctx, b, update) })

	// Обработчик нажатий на inline кнопки приглашений
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "faculty_", bot.MatchTypePrefix,
		func(ctx context.Context, b *bot.Bot, update *models.Update) { c.handleCallback(ctx, b, update) })

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Link status"},
		{Command: "invites", Description: "📩 Pending faculty invitations"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting telegram bot")
	c.bot.Start(ctx)
}
