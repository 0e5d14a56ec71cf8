// Package keyboard inline клавиатуры и callback data для Telegram бота
package keyboard

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// Префиксы callback data, после префикса идёт id приглашения
const (
	AcceptInvite = "faculty_accept:" // faculty_accept:<invitation id>
	RejectInvite = "faculty_reject:" // faculty_reject:<invitation id>
)

// Builder упрощает создание inline клавиатур
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{rows: make([][]models.InlineKeyboardButton, 0)}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: b.rows}
}

// Button создаёт кнопку
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// Invitation ряд кнопок принять/отклонить для приглашения
func Invitation(invitationID string) *models.InlineKeyboardMarkup {
	return NewBuilder().
		Row(
			Button("✅ Accept", AcceptInvite+invitationID),
			Button("❌ Reject", RejectInvite+invitationID),
		).
		Build()
}

// ParseInvitation разбирает callback data на префикс и id приглашения
func ParseInvitation(data string) (action, invitationID string, ok bool) {
	for _, prefix := range []string{AcceptInvite, RejectInvite} {
		if id, found := strings.CutPrefix(data, prefix); found && id != "" {
			return prefix, id, true
		}
	}
	return "", "", false
}
