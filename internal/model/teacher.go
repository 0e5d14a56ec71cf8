package model

import "time"

// School groups teachers; teachers only ever see peers of their own school
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Teacher is a faculty member of one school
type Teacher struct {
	ID             string    `json:"id"`
	SchoolID       string    `json:"school_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Subject        string    `json:"subject"`
	TelegramChatID *int64    `json:"-"` // куда слать уведомления о приглашениях, nil = не слать
	CreatedAt      time.Time `json:"created_at"`
}

// SameSchool checks whether both teachers belong to one school
func (t *Teacher) SameSchool(other *Teacher) bool {
	return other != nil && t.SchoolID == other.SchoolID
}
