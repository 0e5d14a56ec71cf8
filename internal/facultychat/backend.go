// Package facultychat клиентская часть Faculty Connect и Faculty Chat:
// справочник учителей, приглашения, опрос переписки, вложения и
// подготовка сообщений к показу.
package facultychat

import (
	"context"
	"time"
)

// Статусы приглашения, как их отдаёт backend
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Teacher коллега из школы текущего учителя
type Teacher struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	SchoolID string `json:"schoolId,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// Profile текущий учитель и название его школы
type Profile struct {
	Teacher Teacher
	School  string
}

// Invitation запрос на подключение между двумя учителями. Во входящих
// заполнен профиль отправителя, в исходящих профиль получателя.
type Invitation struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"senderId"`
	RecipientID      string    `json:"recipientId"`
	Status           string    `json:"status"`
	SenderName       string    `json:"senderName"`
	SenderEmail      string    `json:"senderEmail"`
	SenderSubject    string    `json:"senderSubject"`
	RecipientName    string    `json:"recipientName,omitempty"`
	RecipientEmail   string    `json:"recipientEmail,omitempty"`
	RecipientSubject string    `json:"recipientSubject,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Connection принятое приглашение с точки зрения одной стороны.
// UserID вторая сторона, ID id принятого приглашения.
type Connection struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
}

// Attachment файл внутри сообщения в виде base64 data URL
type Attachment struct {
	Name    string
	Type    string
	DataURL string
}

// Message сообщение чата, всегда есть Text или Attachment
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Text        string
	Attachment  *Attachment
	CreatedAt   time.Time
}

// OutgoingMessage то, что композер отправляет в backend
type OutgoingMessage struct {
	Text       string
	Attachment *Attachment
}

// Backend серверный контракт клиента. Все вызовы идут от имени
// авторизованного учителя.
type Backend interface {
	CurrentUser(ctx context.Context) (*Profile, error)
	SchoolTeachers(ctx context.Context) ([]Teacher, error)
	MyInvites(ctx context.Context) (incoming, outgoing []Invitation, err error)
	AcceptedConnections(ctx context.Context) ([]Connection, error)
	SendInvite(ctx context.Context, teacherID string) (invitationID string, err error)
	AcceptInvite(ctx context.Context, invitationID string) error
	RejectInvite(ctx context.Context, invitationID string) error
	Conversation(ctx context.Context, peerID string, limit int) ([]Message, error)
	SendMessage(ctx context.Context, peerID string, msg OutgoingMessage) error
}
