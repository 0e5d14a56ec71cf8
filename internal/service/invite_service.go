package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier сообщает учителю о новом приглашении вне приложения
type Notifier interface {
	InvitationReceived(ctx context.Context, invitation *model.Invitation, recipient, sender *model.Teacher) error
}

type InviteService struct {
	teacherStore    TeacherStore
	invitationStore InvitationStore
	notifier        Notifier
	logger          *zap.Logger
}

func NewInviteService(
	teacherStore TeacherStore,
	invitationStore InvitationStore,
	notifier Notifier,
	logger *zap.Logger,
) *InviteService {
	return &InviteService{
		teacherStore:    teacherStore,
		invitationStore: invitationStore,
		notifier:        notifier,
		logger:          logger,
	}
}

// ============ Отправка и ответы ============

// SendInvite создаёт pending приглашение от senderID к recipientID
func (s *InviteService) SendInvite(ctx context.Context, senderID, recipientID string) (*model.Invitation, error) {
	if senderID == recipientID {
		return nil, errSelfInvite
	}

	sender, recipient, err := s.pair(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	if !sender.SameSchool(recipient) {
		return nil, errOtherSchool
	}

	// Проверяем, нет ли уже активного приглашения в любую сторону
	active, err := s.invitationStore.GetActiveBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("check active invitation: %w", err)
	}

	if active != nil {
		if active.IsAccepted() {
			return nil, errAlreadyConnected
		}
		return nil, errAlreadyInvited
	}

	invitation := &model.Invitation{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      model.InvitationStatusPending,
	}

	err = s.invitationStore.CreateInvitation(ctx, invitation)
	if err != nil {
		// Параллельная отправка второй стороной упирается в уникальный индекс
		if errors.Is(err, model.ErrDuplicate) {
			return nil, errAlreadyInvited
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.logger.Info("Invitation sent",
		zap.String("invitation_id", invitation.ID),
		zap.String("sender_id", senderID),
		zap.String("recipient_id", recipientID),
	)

	if s.notifier != nil {
		if err := s.notifier.InvitationReceived(ctx, invitation, recipient, sender); err != nil {
			s.logger.Warn("Failed to notify invitation recipient",
				zap.String("invitation_id", invitation.ID),
				zap.Error(err),
			)
			// Не возвращаем ошибку, т.к. приглашение уже создано
		}
	}

	return invitation, nil
}

// AcceptInvite принимает приглашение (только получатель)
func (s *InviteService) AcceptInvite(ctx context.Context, recipientID, invitationID string) (*model.Invitation, error) {
	invitation, err := s.pendingFor(ctx, recipientID, invitationID)
	if err != nil {
		return nil, err
	}

	err = s.invitationStore.UpdateInvitationStatus(ctx, invitationID, model.InvitationStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("update invitation status: %w", err)
	}
	invitation.Status = model.InvitationStatusAccepted

	s.logger.Info("Invitation accepted",
		zap.String("invitation_id", invitationID),
		zap.String("sender_id", invitation.SenderID),
		zap.String("recipient_id", recipientID),
	)

	return invitation, nil
}

// RejectInvite отклоняет приглашение (только получатель).
// После отказа пара снова в состоянии none и приглашать можно заново.
func (s *InviteService) RejectInvite(ctx context.Context, recipientID, invitationID string) error {
	invitation, err := s.pendingFor(ctx, recipientID, invitationID)
	if err != nil {
		return err
	}

	err = s.invitationStore.UpdateInvitationStatus(ctx, invitationID, model.InvitationStatusRejected)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}

	s.logger.Info("Invitation rejected",
		zap.String("invitation_id", invitationID),
		zap.String("sender_id", invitation.SenderID),
		zap.String("recipient_id", recipientID),
	)

	return nil
}

// ============ Списки ============

// ListInvites получает pending входящие и исходящие приглашения учителя
func (s *InviteService) ListInvites(ctx context.Context, teacherID string) (incoming, outgoing []*model.InvitationView, err error) {
	in, err := s.invitationStore.GetPendingIncoming(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get incoming invitations: %w", err)
	}

	out, err := s.invitationStore.GetPendingOutgoing(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get outgoing invitations: %w", err)
	}

	profiles, err := s.profiles(ctx, teacherID, append(in, out...))
	if err != nil {
		return nil, nil, err
	}

	incoming = make([]*model.InvitationView, 0, len(in))
	for _, inv := range in {
		incoming = append(incoming, &model.InvitationView{
			Invitation: *inv,
			Sender:     profiles[inv.SenderID],
			Recipient:  profiles[inv.RecipientID],
		})
	}

	outgoing = make([]*model.InvitationView, 0, len(out))
	for _, inv := range out {
		outgoing = append(outgoing, &model.InvitationView{
			Invitation: *inv,
			Sender:     profiles[inv.SenderID],
			Recipient:  profiles[inv.RecipientID],
		})
	}

	return incoming, outgoing, nil
}

// ListConnections получает подключения учителя: по одному на принятое приглашение
func (s *InviteService) ListConnections(ctx context.Context, teacherID string) ([]*model.Connection, error) {
	accepted, err := s.invitationStore.GetAccepted(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get accepted invitations: %w", err)
	}

	profiles, err := s.profiles(ctx, teacherID, accepted)
	if err != nil {
		return nil, err
	}

	connections := make([]*model.Connection, 0, len(accepted))
	for _, inv := range accepted {
		otherID := inv.Other(teacherID)
		conn := &model.Connection{
			ID:     inv.ID,
			UserID: otherID,
		}
		if other := profiles[otherID]; other != nil {
			conn.Name = other.FullName
			conn.Email = other.Email
			conn.Subject = other.Subject
		}
		connections = append(connections, conn)
	}

	return connections, nil
}

// IsConnected проверяет, есть ли принятое приглашение между a и b
func (s *InviteService) IsConnected(ctx context.Context, a, b string) (bool, error) {
	active, err := s.invitationStore.GetActiveBetween(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("check connection: %w", err)
	}

	return active != nil && active.IsAccepted(), nil
}

// ============ Вспомогательное ============

func (s *InviteService) pair(ctx context.Context, senderID, recipientID string) (*model.Teacher, *model.Teacher, error) {
	sender, err := s.teacherStore.GetTeacherByID(ctx, senderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get sender: %w", err)
	}

	if sender == nil {
		return nil, nil, errTeacherNotFound
	}

	recipient, err := s.teacherStore.GetTeacherByID(ctx, recipientID)
	if err != nil {
		return nil, nil, fmt.Errorf("get recipient: %w", err)
	}

	if recipient == nil {
		return nil, nil, errTeacherNotFound
	}

	return sender, recipient, nil
}

// pendingFor получает приглашение и проверяет, что отвечать на него может recipientID
func (s *InviteService) pendingFor(ctx context.Context, recipientID, invitationID string) (*model.Invitation, error) {
	invitation, err := s.invitationStore.GetInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	if invitation == nil {
		return nil, errInvitationNotFound
	}

	if invitation.RecipientID != recipientID {
		return nil, errNotRecipient
	}

	if !invitation.IsPending() {
		return nil, errInvitationNotActive
	}

	return invitation, nil
}

// profiles загружает профили всех вторых сторон приглашений одним запросом
func (s *InviteService) profiles(ctx context.Context, viewerID string, invitations []*model.Invitation) (map[string]*model.Teacher, error) {
	ids := []string{viewerID}
	seen := map[string]bool{viewerID: true}
	for _, inv := range invitations {
		other := inv.Other(viewerID)
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}

	teachers, err := s.teacherStore.GetTeachersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get teachers: %w", err)
	}

	profiles := make(map[string]*model.Teacher, len(teachers))
	for _, t := range teachers {
		profiles[t.ID] = t
	}

	return profiles, nil
}
