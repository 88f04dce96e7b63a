package service

import (
	"context"
	"fmt"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/platform/blob"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
	"github.com/academyhq/academy-bookings/pkg/events"
	"github.com/academyhq/academy-bookings/pkg/logger"
)

type PaymentService interface {
	Submit(ctx context.Context, bookingID, learnerID int64, req *domain.SubmitPaymentRequest) (*domain.Payment, error)
}

type paymentService struct {
	paymentRepo postgres.PaymentRepository
	bookingRepo postgres.BookingRepository
	blobStore   blob.Store
	eventBus    events.Publisher
}

func NewPaymentService(
	paymentRepo postgres.PaymentRepository,
	bookingRepo postgres.BookingRepository,
	blobStore blob.Store,
	eventBus events.Publisher,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		blobStore:   blobStore,
		eventBus:    eventBus,
	}
}

func (s *paymentService) Submit(ctx context.Context, bookingID, learnerID int64, req *domain.SubmitPaymentRequest) (*domain.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	if booking == nil || booking.LearnerID != learnerID {
		return nil, fmt.Errorf("%w: booking not found", errdefs.ErrNotFound)
	}

	var evidenceURL *string
	if len(req.Evidence) > 0 {
		url, err := s.blobStore.Store(ctx, req.Evidence, req.EvidenceName)
		if err != nil {
			return nil, fmt.Errorf("failed to store payment evidence: %w", err)
		}
		evidenceURL = &url
	}

	var referenceNumber *string
	if req.ReferenceNumber != "" {
		referenceNumber = &req.ReferenceNumber
	}

	method, _ := domain.ParsePaymentMethod(req.Method)
	payment, err := s.paymentRepo.Create(ctx, bookingID, method, referenceNumber, evidenceURL)
	if err != nil {
		return nil, err
	}

	event := events.PaymentSubmittedEvent{
		PaymentID:   payment.ID,
		BookingID:   payment.BookingID,
		Method:      string(payment.Method),
		SubmittedAt: payment.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.PaymentSubmitted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment submitted event", "error", err, "payment_id", payment.ID)
	}

	return payment, nil
}
