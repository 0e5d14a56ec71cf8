package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const teacherColumns = `id, school_id, full_name, email, subject, telegram_chat_id, created_at`

type TeacherRepository struct {
	*base.Repository
}

func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{Repository: base.NewRepository(pool)}
}

// CreateTeacher создаёт учителя
func (r *TeacherRepository) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	query := `
		INSERT INTO teachers (id, school_id, full_name, email, subject, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		teacher.ID,
		teacher.SchoolID,
		teacher.FullName,
		teacher.Email,
		teacher.Subject,
		teacher.TelegramChatID,
	).Scan(&teacher.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

// GetTeacherByID получает учителя по ID
func (r *TeacherRepository) GetTeacherByID(ctx context.Context, id string) (*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`

	teacher, err := scanTeacher(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Учитель не найден
		}
		return nil, fmt.Errorf("get teacher by id: %w", err)
	}

	return teacher, nil
}

// GetTeacherByTelegramChatID получает учителя по привязанному чату
func (r *TeacherRepository) GetTeacherByTelegramChatID(ctx context.Context, chatID int64) (*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE telegram_chat_id = $1`

	teacher, err := scanTeacher(r.QueryRow(ctx, query, chatID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by telegram chat: %w", err)
	}

	return teacher, nil
}

// GetTeachersBySchool получает всех учителей школы
func (r *TeacherRepository) GetTeachersBySchool(ctx context.Context, schoolID string) ([]*model.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE school_id = $1 ORDER BY full_name, id`

	rows, err := r.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("get school teachers: %w", err)
	}

	return collectTeachers(rows)
}

// GetTeachersByIDs получает учителей по списку ID
func (r *TeacherRepository) GetTeachersByIDs(ctx context.Context, ids []string) ([]*model.Teacher, error) {
	if len(ids) == 0 {
		return []*model.Teacher{}, nil
	}

	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = ANY($1) ORDER BY full_name, id`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get teachers by ids: %w", err)
	}

	return collectTeachers(rows)
}

func scanTeacher(row pgx.Row) (*model.Teacher, error) {
	var t model.Teacher
	err := row.Scan(
		&t.ID,
		&t.SchoolID,
		&t.FullName,
		&t.Email,
		&t.Subject,
		&t.TelegramChatID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTeachers(rows pgx.Rows) ([]*model.Teacher, error) {
	defer rows.Close()

	teachers := []*model.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teachers: %w", err)
	}

	return teachers, nil
}
