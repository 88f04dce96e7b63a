package service

import (
	"context"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
	"github.com/academyhq/academy-bookings/pkg/config"
	"github.com/academyhq/academy-bookings/pkg/events"
	"github.com/academyhq/academy-bookings/pkg/logger"
)

// ApprovalService is the staff-facing facade over the booking and payment
// lifecycles. It owns no state; the repositories keep each resolution in a
// single transaction.
type ApprovalService interface {
	ListBookings(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error)
	ApproveBooking(ctx context.Context, bookingID int64) (*domain.ResolvedBooking, error)
	RejectBooking(ctx context.Context, bookingID int64) (*domain.ResolvedBooking, error)
	ConfirmPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
	RejectPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
}

type approvalService struct {
	bookingRepo postgres.BookingRepository
	paymentRepo postgres.PaymentRepository
	eventBus    events.Publisher
	config      *config.Config
}

func NewApprovalService(
	bookingRepo postgres.BookingRepository,
	paymentRepo postgres.PaymentRepository,
	eventBus events.Publisher,
	config *config.Config,
) ApprovalService {
	return &approvalService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *approvalService) ListBookings(ctx context.Context, limit, offset int) ([]domain.BookingDetail, error) {
	return s.bookingRepo.ListAll(ctx, limit, offset)
}

func (s *approvalService) ApproveBooking(ctx context.Context, bookingID int64) (*domain.ResolvedBooking, error) {
	return s.resolveBooking(ctx, bookingID, domain.OutcomeApproved)
}

func (s *approvalService) RejectBooking(ctx context.Context, bookingID int64) (*domain.ResolvedBooking, error) {
	return s.resolveBooking(ctx, bookingID, domain.OutcomeRejected)
}

func (s *approvalService) resolveBooking(ctx context.Context, bookingID int64, outcome domain.Outcome) (*domain.ResolvedBooking, error) {
	resolved, err := s.bookingRepo.Resolve(ctx, bookingID, outcome, s.config.Booking.StrictTransitions)
	if err != nil {
		return nil, err
	}

	s.publishResolved(ctx, resolved, outcome)
	return resolved, nil
}

// ConfirmPayment verifies the payment and approves the parent booking in one
// step; no separate booking approval call is needed.
func (s *approvalService) ConfirmPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.resolvePayment(ctx, paymentID, domain.OutcomeApproved)
}

func (s *approvalService) RejectPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.resolvePayment(ctx, paymentID, domain.OutcomeRejected)
}

func (s *approvalService) resolvePayment(ctx context.Context, paymentID int64, outcome domain.Outcome) (*domain.Payment, error) {
	payment, resolved, err := s.paymentRepo.Resolve(ctx, paymentID, outcome, s.config.Booking.StrictTransitions)
	if err != nil {
		return nil, err
	}

	s.publishResolved(ctx, resolved, outcome)
	return payment, nil
}

func (s *approvalService) publishResolved(ctx context.Context, resolved *domain.ResolvedBooking, outcome domain.Outcome) {
	event := events.BookingResolvedEvent{
		BookingID:    resolved.ID,
		Outcome:      string(outcome),
		LearnerName:  resolved.LearnerName,
		LearnerEmail: resolved.LearnerEmail,
		CourseNameEn: resolved.CourseNameEn,
		ResolvedAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingResolved, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking resolved event", "error", err, "booking_id", resolved.ID)
	}
}
