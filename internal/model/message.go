package model

import "time"

// Message is one chat message between two connected teachers
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	RecipientID    string      `json:"recipient_id"`
	Text           string      `json:"text"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Attachment is an inline file carried as a base64 data URL
type Attachment struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"data_url"`
}
