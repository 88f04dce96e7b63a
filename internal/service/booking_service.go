package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
	"github.com/academyhq/academy-bookings/pkg/config"
	"github.com/academyhq/academy-bookings/pkg/events"
	"github.com/academyhq/academy-bookings/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, learnerID, courseID int64) (*domain.Booking, error)
	ListMine(ctx context.Context, learnerID int64) ([]domain.BookingDetail, error)
	Cancel(ctx context.Context, bookingID, learnerID int64) (*domain.Booking, error)
}

type bookingService struct {
	bookingRepo postgres.BookingRepository
	courseRepo  postgres.CourseRepository
	eventBus    events.Publisher
	config      *config.Config
}

func NewBookingService(
	bookingRepo postgres.BookingRepository,
	courseRepo postgres.CourseRepository,
	eventBus events.Publisher,
	config *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		courseRepo:  courseRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *bookingService) Create(ctx context.Context, learnerID, courseID int64) (*domain.Booking, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course not found", errdefs.ErrNotFound)
	}

	allowedUntil := time.Now().Add(s.config.Booking.CancellationWindow)
	booking, err := s.bookingRepo.Create(ctx, learnerID, courseID, allowedUntil)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	event := events.BookingCreatedEvent{
		BookingID:    booking.ID,
		LearnerID:    booking.LearnerID,
		CourseID:     booking.CourseID,
		CourseNameEn: course.NameEn,
		CreatedAt:    booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, learnerID int64) ([]domain.BookingDetail, error) {
	return s.bookingRepo.ListByLearner(ctx, learnerID)
}

// Cancel is unconditional inside the window. After it, the booking keeps its
// status and only the manual-cancel flag is raised; staff resolve those
// out-of-band.
func (s *bookingService) Cancel(ctx context.Context, bookingID, learnerID int64) (*domain.Booking, error) {
	return s.bookingRepo.Cancel(ctx, bookingID, learnerID, time.Now())
}
