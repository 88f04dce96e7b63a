package domain

import (
	"fmt"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodWallet       PaymentMethod = "wallet"
	MethodOther        PaymentMethod = "other"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case MethodBankTransfer, MethodWallet, MethodOther:
		return PaymentMethod(s), true
	default:
		return "", false
	}
}

// Payment is evidence of payment for exactly one booking. At most one exists
// per booking; a second submission is a conflict.
type Payment struct {
	ID              int64         `json:"id"`
	BookingID       int64         `json:"booking_id"`
	Method          PaymentMethod `json:"method"`
	ReferenceNumber *string       `json:"reference_number,omitempty"`
	EvidenceURL     *string       `json:"evidence_url,omitempty"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

type SubmitPaymentRequest struct {
	Method          string
	ReferenceNumber string
	Evidence        []byte
	EvidenceName    string
}

func (r *SubmitPaymentRequest) Validate() error {
	if _, ok := ParsePaymentMethod(r.Method); !ok {
		return fmt.Errorf("%w: unknown payment method %q", errdefs.ErrValidation, r.Method)
	}
	return nil
}
