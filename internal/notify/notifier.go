// Package notify turns booking resolution events into learner emails. It
// subscribes off the request path so a slow or failing mail provider never
// blocks a staff action.
package notify

import (
	"encoding/json"

	"github.com/academyhq/academy-bookings/internal/mailer"
	"github.com/academyhq/academy-bookings/pkg/events"
	"github.com/academyhq/academy-bookings/pkg/logger"
)

type Notifier struct {
	bus    events.Subscriber
	mailer mailer.Service
}

func NewNotifier(bus events.Subscriber, m mailer.Service) *Notifier {
	return &Notifier{bus: bus, mailer: m}
}

// Start subscribes to resolution events. The queue group keeps delivery to a
// single instance when several API processes run.
func (n *Notifier) Start() error {
	return n.bus.QueueSubscribe(events.BookingResolved, "notifier", n.handleBookingResolved)
}

func (n *Notifier) handleBookingResolved(msg *events.Message) {
	var evt events.BookingResolvedEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		logger.Error("Failed to decode booking resolved event", "error", err)
		return
	}

	if evt.LearnerEmail == "" {
		logger.Warn("Booking resolved event has no learner email", "booking_id", evt.BookingID)
		return
	}

	if err := n.mailer.SendBookingResolved(evt.LearnerEmail, evt.LearnerName, evt.CourseNameEn, evt.Outcome); err != nil {
		// Notification failures are logged and dropped, never retried into
		// the booking flow.
		logger.Error("Failed to send booking resolved email",
			"booking_id", evt.BookingID,
			"to", evt.LearnerEmail,
			"error", err,
		)
		return
	}

	logger.Info("Booking resolved email sent", "booking_id", evt.BookingID, "outcome", evt.Outcome)
}
