package mailer

import (
	"github.com/academyhq/academy-bookings/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingResolved(toEmail, toName, courseName, outcome string) error {
	logger.Info("[DEV MAIL] Booking resolved",
		"to", toEmail,
		"name", toName,
		"course", courseName,
		"outcome", outcome,
	)
	return nil
}
