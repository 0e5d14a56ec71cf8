package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/faculty_chat/internal/conversation"
	"github.com/Freeeeeet/faculty_chat/internal/dataurl"
	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultConversationLimit: окно выборки сообщений, если limit не задан
	DefaultConversationLimit = 100
	// MaxConversationLimit: больше за один запрос не отдаём
	MaxConversationLimit = 100
	// MaxAttachmentSize: 1.5 MiB после декодирования base64
	MaxAttachmentSize = 3 * 1024 * 1024 / 2
	// MaxTextLength в рунах
	MaxTextLength = 4000
)

type MessageService struct {
	inviteService *InviteService
	messageStore  MessageStore
	logger        *zap.Logger
}

func NewMessageService(inviteService *InviteService, messageStore MessageStore, logger *zap.Logger) *MessageService {
	return &MessageService{
		inviteService: inviteService,
		messageStore:  messageStore,
		logger:        logger,
	}
}

// GetConversation получает последние сообщения переписки viewerID с peerID
func (s *MessageService) GetConversation(ctx context.Context, viewerID, peerID string, limit int) ([]*model.Message, error) {
	if err := s.requireConnected(ctx, viewerID, peerID); err != nil {
		return nil, err
	}

	messages, err := s.messageStore.GetRecentMessages(ctx, conversation.ID(viewerID, peerID), ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	return messages, nil
}

// SendMessage сохраняет сообщение от senderID к recipientID
func (s *MessageService) SendMessage(ctx context.Context, senderID, recipientID, text string, attachment *model.Attachment) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		text = ""
	}

	if text == "" && attachment == nil {
		return nil, errEmptyMessage
	}

	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, errTextTooLong
	}

	if attachment != nil {
		if err := validateAttachment(attachment); err != nil {
			return nil, err
		}
	}

	if err := s.requireConnected(ctx, senderID, recipientID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Text:           text,
		Attachment:     attachment,
	}

	if err := s.messageStore.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.logger.Debug("Message sent",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", msg.ConversationID),
		zap.Bool("has_attachment", attachment != nil),
	)

	return msg, nil
}

func (s *MessageService) requireConnected(ctx context.Context, a, b string) error {
	connected, err := s.inviteService.IsConnected(ctx, a, b)
	if err != nil {
		return err
	}

	if !connected {
		return errNotConnected
	}

	return nil
}

// ClampLimit приводит limit к окну [1, MaxConversationLimit]
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultConversationLimit
	}
	if limit > MaxConversationLimit {
		return MaxConversationLimit
	}
	return limit
}

func validateAttachment(a *model.Attachment) error {
	if strings.TrimSpace(a.Name) == "" {
		return errAttachmentNoName
	}

	mediaType, data, err := dataurl.Decode(a.DataURL)
	if err != nil {
		return errAttachmentMalformed
	}

	if len(data) > MaxAttachmentSize {
		return errAttachmentTooLarge
	}

	if a.Type == "" {
		a.Type = mediaType
	}

	return nil
}
