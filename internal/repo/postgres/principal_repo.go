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

// RotatedPrincipal identifies whose refresh token just rotated.
type RotatedPrincipal struct {
	Role  domain.Role
	ID    int64
	Email string
}

type PrincipalRepository interface {
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiry time.Time) (*RotatedPrincipal, error)
}

type principalRepository struct {
	pool *pgxpool.Pool
}

func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

// One indexed lookup across the union of both principal kinds; tokens carry
// enough entropy that a cross-kind collision is not a practical concern.
const rotateLookup = `
	SELECT kind, id, email, refresh_token_expiry FROM (
		SELECT 'learner' AS kind, id, email, refresh_token_expiry FROM learners WHERE refresh_token = $1
		UNION ALL
		SELECT 'staff' AS kind, id, email, refresh_token_expiry FROM staff WHERE refresh_token = $1
	) principals
	LIMIT 1`

// RotateRefreshToken validates and rotates in a single transaction. The
// rotation UPDATE is a compare-and-swap on the old token value, so of two
// concurrent refreshes with the same token exactly one can win; the loser
// gets the same generic authentication failure as an unknown token.
func (r *principalRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiry time.Time) (*RotatedPrincipal, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		kind       string
		id         int64
		email      string
		tokenUntil *time.Time
	)
	err = tx.QueryRow(ctx, rotateLookup, oldToken).Scan(&kind, &id, &email, &tokenUntil)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if tokenUntil == nil || time.Now().After(*tokenUntil) {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)
	}

	table := "learners"
	if kind == string(domain.RoleStaff) {
		table = "staff"
	}

	q := `UPDATE ` + table + `
		SET refresh_token = $1, refresh_token_expiry = $2
		WHERE id = $3 AND refresh_token = $4`

	tag, err := tx.Exec(ctx, q, newToken, expiry, id, oldToken)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &RotatedPrincipal{Role: domain.Role(kind), ID: id, Email: email}, nil
}
