package domain

import (
	"fmt"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type BookingStatus string

const (
	BookingPendingApproval BookingStatus = "pending_approval"
	BookingApproved        BookingStatus = "approved"
	BookingRejected        BookingStatus = "rejected"
	BookingCancelled       BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPendingApproval, BookingApproved, BookingRejected, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further review transition applies.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingApproved || s == BookingRejected || s == BookingCancelled
}

type Booking struct {
	ID        int64         `json:"id"`
	LearnerID int64         `json:"learner_id"`
	CourseID  int64         `json:"course_id"`
	Status    BookingStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	// Fixed at creation, never extended.
	CancellationAllowedUntil time.Time `json:"cancellation_allowed_until"`
	HasManualCancelRequest   bool      `json:"has_manual_cancel_request"`
}

// BookingDetail is the read model joining a booking with its course, payment
// and owning learner.
type BookingDetail struct {
	Booking
	LearnerName  string      `json:"learner_name,omitempty"`
	LearnerEmail string      `json:"learner_email,omitempty"`
	Course       CourseRead  `json:"course"`
	Payment      *Payment    `json:"payment,omitempty"`
}

type CreateBookingRequest struct {
	CourseID int64 `json:"course_id"`
}

// Outcome is the single target a staff resolution applies to both a booking
// and its payment, so the two cascades cannot diverge.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

func (o Outcome) BookingStatus() BookingStatus {
	if o == OutcomeApproved {
		return BookingApproved
	}
	return BookingRejected
}

func (o Outcome) PaymentStatus() PaymentStatus {
	if o == OutcomeApproved {
		return PaymentVerified
	}
	return PaymentRejected
}

// ResolvedBooking carries the context the notifier needs after a staff
// resolution.
type ResolvedBooking struct {
	Booking
	LearnerName  string
	LearnerEmail string
	CourseNameEn string
}

// ApplyCancel runs the learner cancellation rules against the booking.
// Within the window it cancels outright; after it, the status stays put and
// only the manual-cancel flag is raised, so a late cancellation never happens
// silently. Ownership failures are reported as NotFound on purpose.
func (b *Booking) ApplyCancel(learnerID int64, now time.Time) error {
	if b.LearnerID != learnerID {
		return fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}
	if b.Status == BookingCancelled {
		return fmt.Errorf("%w: booking already cancelled", errdefs.ErrConflict)
	}

	if !now.After(b.CancellationAllowedUntil) {
		b.Status = BookingCancelled
		b.CancelledAt = &now
	} else {
		b.HasManualCancelRequest = true
	}
	return nil
}

// CheckResolve guards a staff resolution. Re-applying the same outcome stays
// idempotent; under the strict policy, flipping a terminal booking to a
// different outcome is a conflict.
func CheckResolve(status BookingStatus, outcome Outcome, strict bool) error {
	if strict && status.IsTerminal() && status != outcome.BookingStatus() {
		return fmt.Errorf("%w: booking already %s", errdefs.ErrConflict, status)
	}
	return nil
}
