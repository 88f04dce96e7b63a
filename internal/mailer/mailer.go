package mailer

import "github.com/academyhq/academy-bookings/pkg/config"

type Service interface {
	SendBookingResolved(toEmail, toName, courseName, outcome string) error
}

// NewFromConfig picks the mailer variant: dev logger, MailerSend when an API
// key is present, plain SMTP otherwise.
func NewFromConfig(cfg config.EmailConfig) Service {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
}
