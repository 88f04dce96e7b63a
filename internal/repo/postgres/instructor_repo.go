package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type InstructorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Instructor, error)
	List(ctx context.Context) ([]domain.Instructor, error)
	Create(ctx context.Context, input *domain.InstructorInput) (*domain.Instructor, error)
	Update(ctx context.Context, id int64, input *domain.InstructorInput) (*domain.Instructor, error)
	Delete(ctx context.Context, id int64) error
}

type instructorRepository struct {
	pool *pgxpool.Pool
}

func NewInstructorRepository(pool *pgxpool.Pool) InstructorRepository {
	return &instructorRepository{pool: pool}
}

const instructorCols = `id, name, bio, skills, photo_url`

func scanInstructor(row pgx.Row) (*domain.Instructor, error) {
	var i domain.Instructor
	err := row.Scan(&i.ID, &i.Name, &i.Bio, &i.Skills, &i.PhotoURL)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *instructorRepository) GetByID(ctx context.Context, id int64) (*domain.Instructor, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanInstructor(r.pool.QueryRow(ctx, `SELECT `+instructorCols+` FROM instructors WHERE id = $1`, id))
}

func (r *instructorRepository) List(ctx context.Context) ([]domain.Instructor, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+instructorCols+` FROM instructors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instructors := []domain.Instructor{}
	for rows.Next() {
		i, err := scanInstructor(rows)
		if err != nil {
			return nil, err
		}
		instructors = append(instructors, *i)
	}
	return instructors, rows.Err()
}

func (r *instructorRepository) Create(ctx context.Context, input *domain.InstructorInput) (*domain.Instructor, error) {
	const q = `
		INSERT INTO instructors (name, bio, skills, photo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + instructorCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanInstructor(r.pool.QueryRow(ctx, q, input.Name, input.Bio, input.Skills, input.PhotoURL))
}

func (r *instructorRepository) Update(ctx context.Context, id int64, input *domain.InstructorInput) (*domain.Instructor, error) {
	const q = `
		UPDATE instructors SET name = $2, bio = $3, skills = $4, photo_url = $5
		WHERE id = $1
		RETURNING ` + instructorCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	i, err := scanInstructor(r.pool.QueryRow(ctx, q, id, input.Name, input.Bio, input.Skills, input.PhotoURL))
	if err == nil && i == nil {
		return nil, fmt.Errorf("%w: instructor not found", errdefs.ErrNotFound)
	}
	return i, err
}

func (r *instructorRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM instructors WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: instructor still has courses", errdefs.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: instructor not found", errdefs.ErrNotFound)
	}
	return nil
}
