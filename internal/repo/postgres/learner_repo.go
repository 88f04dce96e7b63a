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

type LearnerRepository interface {
	Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Learner, error)
	FindByEmail(ctx context.Context, email string) (*domain.Learner, error)
	FindByID(ctx context.Context, id int64) (*domain.Learner, error)
	PersistLogin(ctx context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error
}

type learnerRepository struct {
	pool *pgxpool.Pool
}

func NewLearnerRepository(pool *pgxpool.Pool) LearnerRepository {
	return &learnerRepository{pool: pool}
}

const learnerCols = `id, full_name, age, phone, email, password_hash, academic_year,
refresh_token, refresh_token_expiry, created_at`

func scanLearner(row pgx.Row) (*domain.Learner, error) {
	var l domain.Learner
	err := row.Scan(
		&l.ID, &l.FullName, &l.Age, &l.Phone, &l.Email, &l.PasswordHash, &l.AcademicYear,
		&l.RefreshToken, &l.RefreshTokenExpiry, &l.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *learnerRepository) Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Learner, error) {
	const q = `
		INSERT INTO learners (full_name, age, phone, email, password_hash, academic_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + learnerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	l, err := scanLearner(r.pool.QueryRow(ctx, q,
		req.FullName, req.Age, req.Phone, req.Email, passwordHash, req.AcademicYear,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: email already exists", errdefs.ErrConflict)
	}
	return l, err
}

func (r *learnerRepository) FindByEmail(ctx context.Context, email string) (*domain.Learner, error) {
	const q = `SELECT ` + learnerCols + ` FROM learners WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanLearner(r.pool.QueryRow(ctx, q, email))
}

func (r *learnerRepository) FindByID(ctx context.Context, id int64) (*domain.Learner, error) {
	const q = `SELECT ` + learnerCols + ` FROM learners WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanLearner(r.pool.QueryRow(ctx, q, id))
}

// PersistLogin writes the rotated refresh token and, when the login matched a
// legacy plain-text credential, the replacement hash, in one statement.
func (r *learnerRepository) PersistLogin(ctx context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error {
	const q = `
		UPDATE learners
		SET password_hash = COALESCE($2, password_hash),
			refresh_token = $3,
			refresh_token_expiry = $4
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, newHash, refreshToken, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: learner not found", errdefs.ErrNotFound)
	}
	return nil
}
