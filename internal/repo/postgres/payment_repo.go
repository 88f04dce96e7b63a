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

type PaymentRepository interface {
	Create(ctx context.Context, bookingID int64, method domain.PaymentMethod, referenceNumber, evidenceURL *string) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Resolve(ctx context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.Payment, *domain.ResolvedBooking, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentCols = `id, booking_id, method, reference_number, evidence_url, status, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Method, &p.ReferenceNumber, &p.EvidenceURL, &p.Status, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, bookingID int64, method domain.PaymentMethod, referenceNumber, evidenceURL *string) (*domain.Payment, error) {
	const q = `
		INSERT INTO payments (booking_id, method, reference_number, evidence_url, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + paymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, bookingID, method, referenceNumber, evidenceURL))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: payment already submitted", errdefs.ErrConflict)
	}
	return p, err
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPayment(r.pool.QueryRow(ctx, q, id))
}

// Resolve writes the payment status and cascades the parent booking to the
// matching review state in one transaction. Confirming a payment approves
// the booking with no separate approval call.
func (r *paymentRepository) Resolve(ctx context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.Payment, *domain.ResolvedBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	p, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, fmt.Errorf("%w: payment not found", errdefs.ErrNotFound)
	}

	var rb domain.ResolvedBooking
	err = tx.QueryRow(ctx, resolveLookup, p.BookingID).Scan(
		&rb.ID, &rb.LearnerID, &rb.CourseID, &rb.Status, &rb.CreatedAt, &rb.CancelledAt,
		&rb.CancellationAllowedUntil, &rb.HasManualCancelRequest,
		&rb.LearnerName, &rb.LearnerEmail, &rb.CourseNameEn,
	)
	if err != nil {
		return nil, nil, err
	}

	bookingTarget := outcome.BookingStatus()
	if err := domain.CheckResolve(rb.Status, outcome, strict); err != nil {
		return nil, nil, err
	}

	p, err = scanPayment(tx.QueryRow(ctx, `
		UPDATE payments SET status = $2 WHERE id = $1
		RETURNING `+paymentCols, id, outcome.PaymentStatus()))
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, rb.ID, bookingTarget); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	rb.Status = bookingTarget
	return p, &rb, nil
}
