package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/pkg/events"
)

type paymentFixture struct {
	svc   PaymentService
	store *memStore
	blob  *fakeBlobStore
	bus   *fakeBus
}

func newPaymentFixture() *paymentFixture {
	store := newMemStore()
	blob := &fakeBlobStore{url: "/uploads/payment_test.png"}
	bus := &fakeBus{}
	return &paymentFixture{
		svc:   NewPaymentService(&fakePaymentRepo{store: store}, &fakeBookingRepo{store: store}, blob, bus),
		store: store,
		blob:  blob,
		bus:   bus,
	}
}

func submitReq() *domain.SubmitPaymentRequest {
	return &domain.SubmitPaymentRequest{
		Method:          "bank_transfer",
		ReferenceNumber: "TRX-123",
		Evidence:        []byte{0x89, 0x50, 0x4e, 0x47},
		EvidenceName:    "receipt.png",
	}
}

func TestSubmitPaymentStoresEvidence(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))

	payment, err := fx.svc.Submit(context.Background(), b.ID, 7, submitReq())
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.Equal(t, domain.MethodBankTransfer, payment.Method)
	require.NotNil(t, payment.ReferenceNumber)
	assert.Equal(t, "TRX-123", *payment.ReferenceNumber)
	require.NotNil(t, payment.EvidenceURL)
	assert.Equal(t, "/uploads/payment_test.png", *payment.EvidenceURL)

	assert.Equal(t, "receipt.png", fx.blob.name)
	assert.Equal(t, []string{events.PaymentSubmitted}, fx.bus.subjects())
}

func TestSubmitPaymentWithoutEvidence(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))

	req := submitReq()
	req.Evidence = nil
	req.ReferenceNumber = ""

	payment, err := fx.svc.Submit(context.Background(), b.ID, 7, req)
	require.NoError(t, err)
	assert.Nil(t, payment.EvidenceURL)
	assert.Nil(t, payment.ReferenceNumber)
}

func TestSubmitPaymentBlobFailureAborts(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))
	fx.blob.err = errors.New("disk full")

	_, err := fx.svc.Submit(context.Background(), b.ID, 7, submitReq())
	require.Error(t, err)

	assert.Empty(t, fx.store.payments)
	assert.Empty(t, fx.bus.published)
}

func TestSubmitPaymentTwiceIsConflict(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))

	_, err := fx.svc.Submit(context.Background(), b.ID, 7, submitReq())
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), b.ID, 7, submitReq())
	require.ErrorIs(t, err, errdefs.ErrConflict)
}

func TestSubmitPaymentNotOwnerIsNotFound(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))

	_, err := fx.svc.Submit(context.Background(), b.ID, 8, submitReq())
	require.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestSubmitPaymentUnknownBooking(t *testing.T) {
	fx := newPaymentFixture()

	_, err := fx.svc.Submit(context.Background(), 404, 7, submitReq())
	require.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestSubmitPaymentUnknownMethod(t *testing.T) {
	fx := newPaymentFixture()
	b := fx.store.addBooking(7, 10, domain.BookingPendingApproval, time.Now().Add(24*time.Hour))

	req := submitReq()
	req.Method = "paypal"

	_, err := fx.svc.Submit(context.Background(), b.ID, 7, req)
	require.ErrorIs(t, err, errdefs.ErrValidation)
}
