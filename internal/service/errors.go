package service

import "errors"

// Категории ошибок сервиса; API мапит их на HTTP-статусы
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// Error текст для пользователя вместе с категорией
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Готовые ошибки с текстом для пользователя
var (
	errTeacherNotFound     = newError(ErrNotFound, "teacher not found")
	errInvitationNotFound  = newError(ErrNotFound, "invitation not found")
	errOtherSchool         = newError(ErrForbidden, "teacher belongs to another school")
	errNotRecipient        = newError(ErrForbidden, "invitation belongs to another teacher")
	errNotConnected        = newError(ErrForbidden, "you are not connected with this teacher")
	errSelfInvite          = newError(ErrValidation, "you cannot invite yourself")
	errAlreadyInvited      = newError(ErrConflict, "already invited")
	errAlreadyConnected    = newError(ErrConflict, "already connected")
	errInvitationNotActive = newError(ErrConflict, "invitation is not pending")
	errEmptyMessage        = newError(ErrValidation, "message must have text or an attachment")
	errTextTooLong         = newError(ErrValidation, "message text is too long")
	errAttachmentMalformed = newError(ErrValidation, "attachment is not a valid data url")
	errAttachmentTooLarge  = newError(ErrValidation, "file too large")
	errAttachmentNoName    = newError(ErrValidation, "attachment name is required")
)
