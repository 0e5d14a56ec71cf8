package model

import "time"

// Invitation is a directed request from one teacher to another to open a chat
type Invitation struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Status      string     `json:"status"` // 'pending', 'accepted', 'rejected'
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Invitation status constants
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)

// IsPending checks if invitation is pending
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// IsAccepted checks if invitation is accepted
func (i *Invitation) IsAccepted() bool {
	return i.Status == InvitationStatusAccepted
}

// Involves reports whether the invitation is between a and b in either direction
func (i *Invitation) Involves(a, b string) bool {
	return (i.SenderID == a && i.RecipientID == b) || (i.SenderID == b && i.RecipientID == a)
}

// Other returns the party of the invitation that is not viewerID
func (i *Invitation) Other(viewerID string) string {
	if i.SenderID == viewerID {
		return i.RecipientID
	}
	return i.SenderID
}

// InvitationView is an invitation joined with the profile of the other party
type InvitationView struct {
	Invitation
	Sender    *Teacher
	Recipient *Teacher
}

// Connection is the symmetric view of an accepted invitation.
// UserID is always the other party relative to the viewer.
type Connection struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
}
