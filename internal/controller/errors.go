package controller

import (
	"errors"

	"github.com/Freeeeeet/faculty_chat/internal/service"
)

var (
	errNotLinked       = errors.New("chat is not linked to a teacher")
	errInvalidCallback = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var svcErr *service.Error

	switch {
	case errors.Is(err, errNotLinked):
		return "❌ This chat is not linked to a teacher. Send /start to see your chat id."
	case errors.Is(err, errInvalidCallback):
		return "❌ Invalid button data"
	case errors.As(err, &svcErr):
		return "❌ " + svcErr.Message
	default:
		return "❌ Something went wrong. Try again later."
	}
}
