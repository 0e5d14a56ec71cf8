package service

import (
	"context"

	"github.com/Freeeeeet/faculty_chat/internal/model"
)

// Хранилища описаны интерфейсами: в проде это репозитории на pgx,
// в тестах и в режиме STORE=memory это memory.Store.

type SchoolStore interface {
	CreateSchool(ctx context.Context, school *model.School) error
	GetSchoolByID(ctx context.Context, id string) (*model.School, error)
}

type TeacherStore interface {
	CreateTeacher(ctx context.Context, teacher *model.Teacher) error
	GetTeacherByID(ctx context.Context, id string) (*model.Teacher, error)
	GetTeachersBySchool(ctx context.Context, schoolID string) ([]*model.Teacher, error)
	GetTeachersByIDs(ctx context.Context, ids []string) ([]*model.Teacher, error)
	GetTeacherByTelegramChatID(ctx context.Context, chatID int64) (*model.Teacher, error)
}

type InvitationStore interface {
	CreateInvitation(ctx context.Context, inv *model.Invitation) error
	GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error)
	// GetActiveBetween возвращает pending или accepted приглашение пары в любую сторону
	GetActiveBetween(ctx context.Context, a, b string) (*model.Invitation, error)
	GetPendingIncoming(ctx context.Context, recipientID string) ([]*model.Invitation, error)
	GetPendingOutgoing(ctx context.Context, senderID string) ([]*model.Invitation, error)
	GetAccepted(ctx context.Context, teacherID string) ([]*model.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, id, status string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	// GetRecentMessages возвращает последние limit сообщений по возрастанию created_at
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*model.Message, error)
}
