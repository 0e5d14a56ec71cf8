package api

import (
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/model"
)

// Формы ответов повторяют контракт, на который рассчитан клиент

type (
	userDTO struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		SchoolID string `json:"schoolId"`
		Subject  string `json:"subject,omitempty"`
	}

	schoolDTO struct {
		Name string `json:"name"`
	}

	profileResponse struct {
		Success bool      `json:"success"`
		User    userDTO   `json:"user"`
		School  schoolDTO `json:"school"`
	}

	teacherDTO struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
	}

	teachersResponse struct {
		Success  bool         `json:"success"`
		Teachers []teacherDTO `json:"teachers"`
	}

	invitationDTO struct {
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

	invitesResponse struct {
		Success  bool            `json:"success"`
		Incoming []invitationDTO `json:"incoming"`
		Outgoing []invitationDTO `json:"outgoing"`
	}

	connectionDTO struct {
		ID      string `json:"id"`
		UserID  string `json:"userId"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
	}

	connectionsResponse struct {
		Success     bool            `json:"success"`
		Connections []connectionDTO `json:"connections"`
	}

	invitationRef struct {
		ID string `json:"id"`
	}

	sendInviteRequest struct {
		TeacherID string `json:"teacherId" validate:"required"`
	}

	sendInviteResponse struct {
		Success    bool          `json:"success"`
		Invitation invitationRef `json:"invitation"`
	}

	messageDTO struct {
		ID             string    `json:"id"`
		SenderID       string    `json:"senderId"`
		RecipientID    string    `json:"recipientId"`
		Text           string    `json:"text"`
		AttachmentName string    `json:"attachmentName,omitempty"`
		AttachmentType string    `json:"attachmentType,omitempty"`
		AttachmentData string    `json:"attachmentData,omitempty"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	messagesResponse struct {
		Success  bool         `json:"success"`
		Messages []messageDTO `json:"messages"`
	}

	sendMessageRequest struct {
		Text           string `json:"text"`
		AttachmentName string `json:"attachmentName" validate:"required_with=AttachmentData,max=255"`
		AttachmentType string `json:"attachmentType" validate:"max=255"`
		AttachmentData string `json:"attachmentData"`
	}

	successResponse struct {
		Success bool `json:"success"`
	}
)

func toTeacherDTO(t *model.Teacher) teacherDTO {
	return teacherDTO{
		ID:      t.ID,
		Name:    t.FullName,
		Email:   t.Email,
		Subject: t.Subject,
	}
}

func toInvitationDTO(v *model.InvitationView) invitationDTO {
	dto := invitationDTO{
		ID:          v.ID,
		SenderID:    v.SenderID,
		RecipientID: v.RecipientID,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
	if v.Sender != nil {
		dto.SenderName = v.Sender.FullName
		dto.SenderEmail = v.Sender.Email
		dto.SenderSubject = v.Sender.Subject
	}
	if v.Recipient != nil {
		dto.RecipientName = v.Recipient.FullName
		dto.RecipientEmail = v.Recipient.Email
		dto.RecipientSubject = v.Recipient.Subject
	}
	return dto
}

func toConnectionDTO(c *model.Connection) connectionDTO {
	return connectionDTO{
		ID:      c.ID,
		UserID:  c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Subject: c.Subject,
	}
}

func toMessageDTO(m *model.Message) messageDTO {
	dto := messageDTO{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Text:        m.Text,
		CreatedAt:   m.CreatedAt,
	}
	if m.Attachment != nil {
		dto.AttachmentName = m.Attachment.Name
		dto.AttachmentType = m.Attachment.Type
		dto.AttachmentData = m.Attachment.DataURL
	}
	return dto
}

func (r *sendMessageRequest) attachment() *model.Attachment {
	if r.AttachmentData == "" {
		return nil
	}
	return &model.Attachment{
		Name:    r.AttachmentName,
		Type:    r.AttachmentType,
		DataURL: r.AttachmentData,
	}
}
