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

type BookingRepository interface {
	Create(ctx context.Context, learnerID, courseID int64, allowedUntil time.Time) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByLearner(ctx context.Context, learnerID int64) ([]domain.BookingDetail, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error)
	Cancel(ctx context.Context, id, learnerID int64, now time.Time) (*domain.Booking, error)
	Resolve(ctx context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.ResolvedBooking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, learner_id, course_id, status, created_at, cancelled_at,
cancellation_allowed_until, has_manual_cancel_request`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.LearnerID, &b.CourseID, &b.Status, &b.CreatedAt, &b.CancelledAt,
		&b.CancellationAllowedUntil, &b.HasManualCancelRequest,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, learnerID, courseID int64, allowedUntil time.Time) (*domain.Booking, error) {
	const q = `
		INSERT INTO bookings (learner_id, course_id, status, cancellation_allowed_until)
		VALUES ($1, $2, 'pending_approval', $3)
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, learnerID, courseID, allowedUntil))
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, id))
}

const bookingDetailQuery = `
	SELECT b.id, b.learner_id, b.course_id, b.status, b.created_at, b.cancelled_at,
		b.cancellation_allowed_until, b.has_manual_cancel_request,
		l.full_name, l.email,
		c.id, c.name_en, c.name_ar, c.description_en, c.description_ar,
		c.price, c.category, c.level, c.duration, c.instructor_id,
		i.id, i.name, i.bio, i.skills, i.photo_url,
		p.id, p.booking_id, p.method, p.reference_number, p.evidence_url, p.status, p.created_at
	FROM bookings b
	JOIN learners l ON l.id = b.learner_id
	JOIN courses c ON c.id = b.course_id
	JOIN instructors i ON i.id = c.instructor_id
	LEFT JOIN payments p ON p.booking_id = b.id`

func scanBookingDetail(rows pgx.Rows) (*domain.BookingDetail, error) {
	var (
		d domain.BookingDetail

		pID        *int64
		pBookingID *int64
		pMethod    *string
		pRefNum    *string
		pEvidence  *string
		pStatus    *string
		pCreatedAt *time.Time
	)
	err := rows.Scan(
		&d.ID, &d.LearnerID, &d.CourseID, &d.Status, &d.CreatedAt, &d.CancelledAt,
		&d.CancellationAllowedUntil, &d.HasManualCancelRequest,
		&d.LearnerName, &d.LearnerEmail,
		&d.Course.ID, &d.Course.NameEn, &d.Course.NameAr, &d.Course.DescriptionEn, &d.Course.DescriptionAr,
		&d.Course.Price, &d.Course.Category, &d.Course.Level, &d.Course.Duration, &d.Course.InstructorID,
		&d.Course.Instructor.ID, &d.Course.Instructor.Name, &d.Course.Instructor.Bio,
		&d.Course.Instructor.Skills, &d.Course.Instructor.PhotoURL,
		&pID, &pBookingID, &pMethod, &pRefNum, &pEvidence, &pStatus, &pCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pID != nil {
		d.Payment = &domain.Payment{
			ID:              *pID,
			BookingID:       *pBookingID,
			Method:          domain.PaymentMethod(*pMethod),
			ReferenceNumber: pRefNum,
			EvidenceURL:     pEvidence,
			Status:          domain.PaymentStatus(*pStatus),
			CreatedAt:       *pCreatedAt,
		}
	}

	return &d, nil
}

func (r *bookingRepository) ListByLearner(ctx context.Context, learnerID int64) ([]domain.BookingDetail, error) {
	const q = bookingDetailQuery + ` WHERE b.learner_id = $1 ORDER BY b.created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *bookingRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = bookingDetailQuery + ` ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]domain.BookingDetail, error) {
	details := []domain.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

// Cancel runs the learner cancellation state machine in one transaction.
// Within the window the booking moves to cancelled; after it, the status is
// left untouched and the manual-cancel flag is raised for staff.
func (r *bookingRepository) Cancel(ctx context.Context, id, learnerID int64, now time.Time) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}
	if err := b.ApplyCancel(learnerID, now); err != nil {
		return nil, err
	}

	b, err = scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status = $2, cancelled_at = $3, has_manual_cancel_request = $4
		WHERE id = $1
		RETURNING `+bookingCols, id, b.Status, b.CancelledAt, b.HasManualCancelRequest))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

const resolveLookup = `
	SELECT b.id, b.learner_id, b.course_id, b.status, b.created_at, b.cancelled_at,
		b.cancellation_allowed_until, b.has_manual_cancel_request,
		l.full_name, l.email, c.name_en
	FROM bookings b
	JOIN learners l ON l.id = b.learner_id
	JOIN courses c ON c.id = b.course_id
	WHERE b.id = $1
	FOR UPDATE OF b`

// Resolve applies a staff outcome to the booking and, when one is attached,
// its payment, atomically. Re-applying the same outcome is a no-op success;
// in strict mode switching a terminal booking to a different outcome is a
// conflict.
func (r *bookingRepository) Resolve(ctx context.Context, id int64, outcome domain.Outcome, strict bool) (*domain.ResolvedBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var rb domain.ResolvedBooking
	err = tx.QueryRow(ctx, resolveLookup, id).Scan(
		&rb.ID, &rb.LearnerID, &rb.CourseID, &rb.Status, &rb.CreatedAt, &rb.CancelledAt,
		&rb.CancellationAllowedUntil, &rb.HasManualCancelRequest,
		&rb.LearnerName, &rb.LearnerEmail, &rb.CourseNameEn,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	target := outcome.BookingStatus()
	if err := domain.CheckResolve(rb.Status, outcome, strict); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, target); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE payments SET status = $2 WHERE booking_id = $1`, id, outcome.PaymentStatus()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	rb.Status = target
	return &rb, nil
}
