// Package memory хранит школы, учителей, приглашения и сообщения в памяти
// процесса. Используется в тестах и в режиме STORE=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/model"
)

// Store реализует все интерфейсы хранилищ пакета service
type Store struct {
	mu          sync.RWMutex
	schools     map[string]*model.School
	teachers    map[string]*model.Teacher
	invitations []*model.Invitation
	messages    map[string][]*model.Message // conversationID -> сообщения в порядке вставки

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		schools:  make(map[string]*model.School),
		teachers: make(map[string]*model.Teacher),
		messages: make(map[string][]*model.Message),
		now:      time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// ============ Школы и учителя ============

func (s *Store) CreateSchool(ctx context.Context, school *model.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schools[school.ID]; exists {
		return model.ErrDuplicate
	}

	school.CreatedAt = s.now()
	c := *school
	s.schools[school.ID] = &c
	return nil
}

func (s *Store) GetSchoolByID(ctx context.Context, id string) (*model.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	school, ok := s.schools[id]
	if !ok {
		return nil, nil
	}
	c := *school
	return &c, nil
}

func (s *Store) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teachers[teacher.ID]; exists {
		return model.ErrDuplicate
	}
	for _, t := range s.teachers {
		if t.Email == teacher.Email {
			return model.ErrDuplicate
		}
		if t.TelegramChatID != nil && teacher.TelegramChatID != nil && *t.TelegramChatID == *teacher.TelegramChatID {
			return model.ErrDuplicate
		}
	}

	teacher.CreatedAt = s.now()
	c := *teacher
	s.teachers[teacher.ID] = &c
	return nil
}

func (s *Store) GetTeacherByID(ctx context.Context, id string) (*model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teacher, ok := s.teachers[id]
	if !ok {
		return nil, nil
	}
	c := *teacher
	return &c, nil
}

func (s *Store) GetTeacherByTelegramChatID(ctx context.Context, chatID int64) (*model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.teachers {
		if t.TelegramChatID != nil && *t.TelegramChatID == chatID {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetTeachersBySchool(ctx context.Context, schoolID string) ([]*model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teachers := []*model.Teacher{}
	for _, t := range s.teachers {
		if t.SchoolID == schoolID {
			c := *t
			teachers = append(teachers, &c)
		}
	}

	sortTeachers(teachers)
	return teachers, nil
}

func (s *Store) GetTeachersByIDs(ctx context.Context, ids []string) ([]*model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teachers := []*model.Teacher{}
	for _, id := range ids {
		if t, ok := s.teachers[id]; ok {
			c := *t
			teachers = append(teachers, &c)
		}
	}

	sortTeachers(teachers)
	return teachers, nil
}

func sortTeachers(teachers []*model.Teacher) {
	sort.SliceStable(teachers, func(i, j int) bool {
		if teachers[i].FullName != teachers[j].FullName {
			return teachers[i].FullName < teachers[j].FullName
		}
		return teachers[i].ID < teachers[j].ID
	})
}

// ============ Приглашения ============

func (s *Store) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// то же правило, что и уникальный индекс в postgres
	if inv.IsPending() {
		for _, existing := range s.invitations {
			if existing.IsPending() && existing.Involves(inv.SenderID, inv.RecipientID) {
				return model.ErrDuplicate
			}
		}
	}

	inv.CreatedAt = s.now()
	c := *inv
	s.invitations = append(s.invitations, &c)
	return nil
}

func (s *Store) GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invitations {
		if inv.ID == id {
			c := *inv
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetActiveBetween(ctx context.Context, a, b string) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// accepted важнее pending
	var pending *model.Invitation
	for _, inv := range s.invitations {
		if !inv.Involves(a, b) {
			continue
		}
		if inv.IsAccepted() {
			c := *inv
			return &c, nil
		}
		if inv.IsPending() && pending == nil {
			pending = inv
		}
	}

	if pending == nil {
		return nil, nil
	}
	c := *pending
	return &c, nil
}

func (s *Store) GetPendingIncoming(ctx context.Context, recipientID string) ([]*model.Invitation, error) {
	return s.filterInvitations(func(inv *model.Invitation) bool {
		return inv.IsPending() && inv.RecipientID == recipientID
	}), nil
}

func (s *Store) GetPendingOutgoing(ctx context.Context, senderID string) ([]*model.Invitation, error) {
	return s.filterInvitations(func(inv *model.Invitation) bool {
		return inv.IsPending() && inv.SenderID == senderID
	}), nil
}

func (s *Store) GetAccepted(ctx context.Context, teacherID string) ([]*model.Invitation, error) {
	return s.filterInvitations(func(inv *model.Invitation) bool {
		return inv.IsAccepted() && (inv.SenderID == teacherID || inv.RecipientID == teacherID)
	}), nil
}

func (s *Store) UpdateInvitationStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invitations {
		if inv.ID == id {
			now := s.now()
			inv.Status = status
			inv.UpdatedAt = &now
			return nil
		}
	}
	return errInvitationNotFound
}

func (s *Store) filterInvitations(keep func(*model.Invitation) bool) []*model.Invitation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*model.Invitation{}
	for _, inv := range s.invitations {
		if keep(inv) {
			c := *inv
			result = append(result, &c)
		}
	}
	return result
}

// ============ Сообщения ============

func (s *Store) CreateMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.CreatedAt = s.now()

	// created_at не убывает внутри переписки даже при скачке часов
	list := s.messages[msg.ConversationID]
	if n := len(list); n > 0 && msg.CreatedAt.Before(list[n-1].CreatedAt) {
		msg.CreatedAt = list[n-1].CreatedAt
	}

	c := *msg
	if msg.Attachment != nil {
		a := *msg.Attachment
		c.Attachment = &a
	}
	s.messages[msg.ConversationID] = append(list, &c)
	return nil
}

func (s *Store) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.messages[conversationID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}

	result := make([]*model.Message, 0, len(list))
	for _, m := range list {
		c := *m
		result = append(result, &c)
	}
	return result, nil
}
