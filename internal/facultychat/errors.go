package facultychat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInviteNotAllowed: пара уже в ожидании или подключена,
	// либо учитель приглашает сам себя
	ErrInviteNotAllowed = errors.New("you cannot invite this teacher")
	ErrActionInFlight   = errors.New("action already in progress")
	ErrInviteNotFound   = errors.New("invitation not found")
	ErrEmptyMessage     = errors.New("message must have text or an attachment")
	ErrNotConnected     = errors.New("you are not connected with this teacher")
	ErrNoPeer           = errors.New("no conversation selected")
)

// APIError ответ backend не 2xx. Message это поле "error" сервера,
// пользователю показывается как есть.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("faculty api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("faculty api: %s (%d)", e.Message, e.StatusCode)
}

// IdentityError не удалось определить текущего учителя, без него
// ничего не работает
type IdentityError struct {
	Err error
}

func (e *IdentityError) Error() string { return "load profile: " + e.Err.Error() }
func (e *IdentityError) Unwrap() error { return e.Err }

// ListError список не загрузился. Экран остаётся рабочим, список
// показывается как недоступный.
type ListError struct {
	List string
	Err  error
}

func (e *ListError) Error() string { return "load " + e.List + ": " + e.Err.Error() }
func (e *ListError) Unwrap() error { return e.Err }

// ValidationError ошибка проверки до любого сетевого запроса
type ValidationError struct {
	Message string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// UserMessage превращает любую ошибку пакета в текст для пользователя
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	var identityErr *IdentityError
	var listErr *ListError
	var apiErr *APIError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &identityErr):
		return "Could not load your profile. Sign in again."
	case errors.As(err, &listErr):
		return "Could not load " + listErr.List + "."
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return statusMessage(apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "The server did not respond in time."
	case errors.Is(err, ErrInviteNotAllowed),
		errors.Is(err, ErrActionInFlight),
		errors.Is(err, ErrInviteNotFound),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrNotConnected),
		errors.Is(err, ErrNoPeer):
		return err.Error()
	default:
		return "Something went wrong. Try again."
	}
}

func statusMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Your session has expired. Sign in again."
	case http.StatusForbidden:
		return "You are not allowed to do that."
	case http.StatusNotFound:
		return "Not found."
	default:
		return "Something went wrong. Try again."
	}
}
