package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DirectoryService struct {
	schoolStore  SchoolStore
	teacherStore TeacherStore
	logger       *zap.Logger
}

func NewDirectoryService(schoolStore SchoolStore, teacherStore TeacherStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		schoolStore:  schoolStore,
		teacherStore: teacherStore,
		logger:       logger,
	}
}

// Profile получает профиль учителя вместе со школой
func (s *DirectoryService) Profile(ctx context.Context, teacherID string) (*model.Teacher, *model.School, error) {
	teacher, err := s.teacherStore.GetTeacherByID(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get teacher: %w", err)
	}

	if teacher == nil {
		return nil, nil, errTeacherNotFound
	}

	school, err := s.schoolStore.GetSchoolByID(ctx, teacher.SchoolID)
	if err != nil {
		return nil, nil, fmt.Errorf("get school: %w", err)
	}

	if school == nil {
		// Учитель без школы означает битые данные, но профиль отдать можно
		school = &model.School{ID: teacher.SchoolID}
	}

	return teacher, school, nil
}

// SchoolTeachers получает учителей той же школы, что и teacherID
func (s *DirectoryService) SchoolTeachers(ctx context.Context, teacherID string) ([]*model.Teacher, error) {
	teacher, err := s.teacherStore.GetTeacherByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	if teacher == nil {
		return nil, errTeacherNotFound
	}

	teachers, err := s.teacherStore.GetTeachersBySchool(ctx, teacher.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("get school teachers: %w", err)
	}

	return teachers, nil
}

// ============ Администрирование ============

// TeacherByTelegramChat находит учителя по привязанному Telegram чату.
// Возвращает nil, если чат ни к кому не привязан.
func (s *DirectoryService) TeacherByTelegramChat(ctx context.Context, chatID int64) (*model.Teacher, error) {
	teacher, err := s.teacherStore.GetTeacherByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get teacher by telegram chat: %w", err)
	}
	return teacher, nil
}

// AddSchool создаёт школу
func (s *DirectoryService) AddSchool(ctx context.Context, name string) (*model.School, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(ErrValidation, "school name is required")
	}

	school := &model.School{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := s.schoolStore.CreateSchool(ctx, school); err != nil {
		return nil, fmt.Errorf("create school: %w", err)
	}

	s.logger.Info("School created",
		zap.String("school_id", school.ID),
		zap.String("name", school.Name),
	)

	return school, nil
}

// AddTeacher создаёт учителя в существующей школе
func (s *DirectoryService) AddTeacher(ctx context.Context, teacher *model.Teacher) error {
	school, err := s.schoolStore.GetSchoolByID(ctx, teacher.SchoolID)
	if err != nil {
		return fmt.Errorf("get school: %w", err)
	}

	if school == nil {
		return newError(ErrNotFound, "school not found")
	}

	teacher.FullName = strings.TrimSpace(teacher.FullName)
	teacher.Email = strings.TrimSpace(teacher.Email)
	if teacher.FullName == "" || teacher.Email == "" {
		return newError(ErrValidation, "teacher name and email are required")
	}

	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}

	if err := s.teacherStore.CreateTeacher(ctx, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}

	s.logger.Info("Teacher created",
		zap.String("teacher_id", teacher.ID),
		zap.String("school_id", teacher.SchoolID),
	)

	return nil
}
