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

type StaffRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Staff, error)
	PersistLogin(ctx context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error
	// Ensure provisions a staff account if the email is not taken yet.
	Ensure(ctx context.Context, fullName, email, passwordHash string) error
}

type staffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffCols = `id, full_name, email, password_hash, refresh_token, refresh_token_expiry, created_at`

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	const q = `SELECT ` + staffCols + ` FROM staff WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Staff
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&s.ID, &s.FullName, &s.Email, &s.PasswordHash, &s.RefreshToken, &s.RefreshTokenExpiry, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *staffRepository) PersistLogin(ctx context.Context, id int64, newHash *string, refreshToken string, expiry time.Time) error {
	const q = `
		UPDATE staff
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
		return fmt.Errorf("%w: staff not found", errdefs.ErrNotFound)
	}
	return nil
}

func (r *staffRepository) Ensure(ctx context.Context, fullName, email, passwordHash string) error {
	const q = `
		INSERT INTO staff (full_name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, fullName, email, passwordHash)
	return err
}
