package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invitationColumns = `id, sender_id, recipient_id, status, created_at, updated_at`

type InvitationRepository struct {
	*base.Repository
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{Repository: base.NewRepository(pool)}
}

// CreateInvitation создаёт приглашение
func (r *InvitationRepository) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	query := `
		INSERT INTO faculty_invitations (id, sender_id, recipient_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		inv.ID,
		inv.SenderID,
		inv.RecipientID,
		inv.Status,
	).Scan(&inv.CreatedAt)

	if err != nil {
		// faculty_invitations_pending_pair_idx
		if base.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

// GetInvitationByID получает приглашение по ID
func (r *InvitationRepository) GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM faculty_invitations WHERE id = $1`

	inv, err := scanInvitation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	return inv, nil
}

// GetActiveBetween получает pending или accepted приглашение пары; accepted в приоритете
func (r *InvitationRepository) GetActiveBetween(ctx context.Context, a, b string) (*model.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM faculty_invitations
		WHERE ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		  AND status IN ($3, $4)
		ORDER BY CASE status WHEN $3 THEN 0 ELSE 1 END, created_at
		LIMIT 1
	`

	inv, err := scanInvitation(r.QueryRow(ctx, query, a, b, model.InvitationStatusAccepted, model.InvitationStatusPending))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active invitation: %w", err)
	}

	return inv, nil
}

// GetPendingIncoming получает pending приглашения, адресованные учителю
func (r *InvitationRepository) GetPendingIncoming(ctx context.Context, recipientID string) ([]*model.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM faculty_invitations
		WHERE recipient_id = $1 AND status = $2
		ORDER BY created_at ASC
	`

	rows, err := r.Query(ctx, query, recipientID, model.InvitationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("get incoming invitations: %w", err)
	}

	return collectInvitations(rows)
}

// GetPendingOutgoing получает pending приглашения, отправленные учителем
func (r *InvitationRepository) GetPendingOutgoing(ctx context.Context, senderID string) ([]*model.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM faculty_invitations
		WHERE sender_id = $1 AND status = $2
		ORDER BY created_at ASC
	`

	rows, err := r.Query(ctx, query, senderID, model.InvitationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("get outgoing invitations: %w", err)
	}

	return collectInvitations(rows)
}

// GetAccepted получает принятые приглашения учителя в обе стороны
func (r *InvitationRepository) GetAccepted(ctx context.Context, teacherID string) ([]*model.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM faculty_invitations
		WHERE (sender_id = $1 OR recipient_id = $1) AND status = $2
		ORDER BY updated_at ASC NULLS FIRST, created_at ASC
	`

	rows, err := r.Query(ctx, query, teacherID, model.InvitationStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("get accepted invitations: %w", err)
	}

	return collectInvitations(rows)
}

// UpdateInvitationStatus обновляет статус приглашения
func (r *InvitationRepository) UpdateInvitationStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE faculty_invitations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("invitation not found")
	}

	return nil
}

func scanInvitation(row pgx.Row) (*model.Invitation, error) {
	var inv model.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.SenderID,
		&inv.RecipientID,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func collectInvitations(rows pgx.Rows) ([]*model.Invitation, error) {
	defer rows.Close()

	invitations := []*model.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}

	return invitations, nil
}
