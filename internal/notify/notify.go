// Package notify уведомляет учителей о новых приглашениях вне приложения
package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/controller/keyboard"
	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Nop ничего не отправляет, используется без Telegram токена
type Nop struct{}

func (Nop) InvitationReceived(ctx context.Context, invitation *model.Invitation, recipient, sender *model.Teacher) error {
	return nil
}

// MessageSender часть *bot.Bot, нужная уведомлениям
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram шлёт уведомления учителям с привязанным Telegram чатом
type Telegram struct {
	sender MessageSender
	logger *zap.Logger
}

func NewTelegram(sender MessageSender, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender: sender,
		logger: logger,
	}
}

// InvitationReceived шлёт получателю уведомление о приглашении
func (t *Telegram) InvitationReceived(ctx context.Context, invitation *model.Invitation, recipient, sender *model.Teacher) error {
	if recipient.TelegramChatID == nil {
		// Учитель не привязал Telegram, молча пропускаем
		return nil
	}

	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *recipient.TelegramChatID,
		Text:        InvitationText(sender),
		ReplyMarkup: keyboard.Invitation(invitation.ID),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.logger.Debug("Invitation notice sent",
		zap.String("invitation_id", invitation.ID),
		zap.String("recipient_id", recipient.ID),
		zap.String("sender_id", sender.ID),
	)

	return nil
}

// InvitationText форматирует текст уведомления
func InvitationText(sender *model.Teacher) string {
	text := fmt.Sprintf("📩 %s invited you to Faculty Chat", sender.FullName)
	if sender.Subject != "" {
		text += fmt.Sprintf(" (%s)", sender.Subject)
	}
	return text + ".\nAnswer below or in Faculty Connect."
}
