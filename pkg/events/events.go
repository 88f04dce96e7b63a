package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/academyhq/academy-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	BookingCreated   = "booking.created"
	BookingResolved  = "booking.resolved"
	PaymentSubmitted = "payment.submitted"
)

// Event payloads
type BookingCreatedEvent struct {
	BookingID    int64     `json:"booking_id"`
	LearnerID    int64     `json:"learner_id"`
	CourseID     int64     `json:"course_id"`
	CourseNameEn string    `json:"course_name_en"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingResolvedEvent covers every path that lands a booking in a terminal
// review state: staff approve/reject and payment confirm/reject cascades.
type BookingResolvedEvent struct {
	BookingID    int64     `json:"booking_id"`
	Outcome      string    `json:"outcome"`
	LearnerName  string    `json:"learner_name"`
	LearnerEmail string    `json:"learner_email"`
	CourseNameEn string    `json:"course_name_en"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

type PaymentSubmittedEvent struct {
	PaymentID   int64     `json:"payment_id"`
	BookingID   int64     `json:"booking_id"`
	Method      string    `json:"method"`
	SubmittedAt time.Time `json:"submitted_at"`
}
