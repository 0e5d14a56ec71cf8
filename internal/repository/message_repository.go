package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	*base.Repository
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{Repository: base.NewRepository(pool)}
}

// CreateMessage сохраняет сообщение
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO faculty_messages (id, conversation_id, sender_id, recipient_id, text, attachment_name, attachment_type, attachment_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	var name, mediaType, data *string
	if msg.Attachment != nil {
		name, mediaType, data = &msg.Attachment.Name, &msg.Attachment.Type, &msg.Attachment.DataURL
	}

	err := r.QueryRow(
		ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.SenderID,
		msg.RecipientID,
		msg.Text,
		name,
		mediaType,
		data,
	).Scan(&msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// GetRecentMessages получает последние limit сообщений переписки по возрастанию времени
func (r *MessageRepository) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*model.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, recipient_id, text, attachment_name, attachment_type, attachment_data, created_at
		FROM (
			SELECT *
			FROM faculty_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	messages := []*model.Message{}
	for rows.Next() {
		var (
			msg                   model.Message
			name, mediaType, data *string
		)
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.RecipientID,
			&msg.Text,
			&name,
			&mediaType,
			&data,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		if data != nil {
			msg.Attachment = &model.Attachment{DataURL: *data}
			if name != nil {
				msg.Attachment.Name = *name
			}
			if mediaType != nil {
				msg.Attachment.Type = *mediaType
			}
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
