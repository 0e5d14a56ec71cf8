package controller

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/controller/keyboard"
	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// handleStart сообщает, привязан ли чат к учителю
func (c *BotController) handleStart(ctx context.Context, r Responder, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	teacher, err := c.directory.TeacherByTelegramChat(ctx, chatID)
	if err != nil {
		c.logger.Error("Failed to get teacher by chat", zap.Int64("chat_id", chatID), zap.Error(err))
		c.send(ctx, r, chatID, ErrorMessage(err), nil)
		return
	}

	if teacher == nil {
		c.send(ctx, r, chatID, fmt.Sprintf(
			"👋 This chat is not linked to a teacher yet.\n\n"+
				"Your chat id is %d. Ask the administrator to link it to your profile.", chatID), nil)
		return
	}

	c.send(ctx, r, chatID, fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"Faculty Connect invitations will arrive here.\n"+
			"/invites - pending invitations", teacher.FullName), nil)
}

// handleInvites показывает входящие приглашения с кнопками
func (c *BotController) handleInvites(ctx context.Context, r Responder, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	teacher, ok := c.requireTeacher(ctx, r, chatID)
	if !ok {
		return
	}

	incoming, _, err := c.invites.ListInvites(ctx, teacher.ID)
	if err != nil {
		c.logger.Error("Failed to list invites", zap.String("teacher_id", teacher.ID), zap.Error(err))
		c.send(ctx, r, chatID, ErrorMessage(err), nil)
		return
	}

	if len(incoming) == 0 {
		c.send(ctx, r, chatID, "📭 No pending invitations.", nil)
		return
	}

	for _, inv := range incoming {
		c.send(ctx, r, chatID, invitationText(inv), keyboard.Invitation(inv.ID))
	}
}

// handleCallback принимает или отклоняет приглашение по кнопке
func (c *BotController) handleCallback(ctx context.Context, r Responder, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	action, invitationID, ok := keyboard.ParseInvitation(callback.Data)
	if !ok {
		c.answer(ctx, r, callback.ID, ErrorMessage(errInvalidCallback), true)
		return
	}

	msg := callback.Message.Message
	chatID := callback.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	teacher, err := c.directory.TeacherByTelegramChat(ctx, chatID)
	if err == nil && teacher == nil {
		err = errNotLinked
	}
	if err != nil {
		c.answer(ctx, r, callback.ID, ErrorMessage(err), true)
		return
	}

	var result string
	switch action {
	case keyboard.AcceptInvite:
		_, err = c.invites.AcceptInvite(ctx, teacher.ID, invitationID)
		result = "✅ Invitation accepted. You can now chat in Faculty Connect."
	default:
		err = c.invites.RejectInvite(ctx, teacher.ID, invitationID)
		result = "Invitation rejected."
	}

	if err != nil {
		c.logger.Warn("Failed to answer invitation from telegram",
			zap.String("teacher_id", teacher.ID),
			zap.String("invitation_id", invitationID),
			zap.Error(err),
		)
		c.answer(ctx, r, callback.ID, ErrorMessage(err), true)
		return
	}

	c.answer(ctx, r, callback.ID, result, false)

	if msg != nil {
		_, err := r.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      msg.Text + "\n\n" + result,
		})
		if err != nil {
			c.logger.Warn("Failed to edit invitation message", zap.Error(err))
		}
	}
}

// ============ Вспомогательные методы ============

// requireTeacher находит учителя по чату или отвечает подсказкой
func (c *BotController) requireTeacher(ctx context.Context, r Responder, chatID int64) (*model.Teacher, bool) {
	teacher, err := c.directory.TeacherByTelegramChat(ctx, chatID)
	if err != nil {
		c.logger.Error("Failed to get teacher by chat", zap.Int64("chat_id", chatID), zap.Error(err))
		c.send(ctx, r, chatID, ErrorMessage(err), nil)
		return nil, false
	}

	if teacher == nil {
		c.send(ctx, r, chatID, ErrorMessage(errNotLinked), nil)
		return nil, false
	}

	return teacher, true
}

func (c *BotController) send(ctx context.Context, r Responder, chatID int64, text string, markup *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := r.SendMessage(ctx, params); err != nil {
		c.logger.Warn("Failed to send telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (c *BotController) answer(ctx context.Context, r Responder, callbackID, text string, alert bool) {
	_, err := r.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		c.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func invitationText(inv *model.InvitationView) string {
	name := inv.SenderID
	subject := ""
	if inv.Sender != nil {
		name = inv.Sender.FullName
		subject = inv.Sender.Subject
	}

	text := "📩 " + name + " invited you to Faculty Chat"
	if subject != "" {
		text += " (" + subject + ")"
	}
	return text + "."
}
