package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SchoolRepository struct {
	*base.Repository
}

func NewSchoolRepository(pool *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{Repository: base.NewRepository(pool)}
}

// CreateSchool создаёт школу
func (r *SchoolRepository) CreateSchool(ctx context.Context, school *model.School) error {
	query := `
		INSERT INTO schools (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, school.ID, school.Name).Scan(&school.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("create school: %w", err)
	}

	return nil
}

// GetSchoolByID получает школу по ID
func (r *SchoolRepository) GetSchoolByID(ctx context.Context, id string) (*model.School, error) {
	query := `
		SELECT id, name, created_at
		FROM schools
		WHERE id = $1
	`

	var school model.School
	err := r.QueryRow(ctx, query, id).Scan(&school.ID, &school.Name, &school.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get school: %w", err)
	}

	return &school, nil
}
