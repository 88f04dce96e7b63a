package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/http/middleware"
	"github.com/academyhq/academy-bookings/internal/service"
)

const maxEvidenceBytes = 5 << 20

// LearnerHandler covers everything a signed-in learner can do with their own
// bookings.
type LearnerHandler struct {
	bookings service.BookingService
	payments service.PaymentService
}

func NewLearnerHandler(bookings service.BookingService, payments service.PaymentService) *LearnerHandler {
	return &LearnerHandler{bookings: bookings, payments: payments}
}

func (h *LearnerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.createBooking)
	r.Get("/", h.listBookings)
	r.Post("/{bookingID}/cancel", h.cancelBooking)
	r.Post("/{bookingID}/payment", h.submitPayment)
	return r
}

func (h *LearnerHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CourseID <= 0 {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errdefs.ErrValidation))
		return
	}

	booking, err := h.bookings.Create(r.Context(), claims.Sub, req.CourseID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (h *LearnerHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	details, err := h.bookings.ListMine(r.Context(), claims.Sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (h *LearnerHandler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, err := urlID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.bookings.Cancel(r.Context(), id, claims.Sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// submitPayment accepts a multipart form: method and reference_number fields
// plus an optional screenshot file as evidence.
func (h *LearnerHandler) submitPayment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, err := urlID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceBytes)
	if err := r.ParseMultipartForm(maxEvidenceBytes); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid multipart form", errdefs.ErrValidation))
		return
	}

	req := &domain.SubmitPaymentRequest{
		Method:          r.FormValue("method"),
		ReferenceNumber: r.FormValue("reference_number"),
	}

	if file, header, err := r.FormFile("screenshot"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: unreadable screenshot upload", errdefs.ErrValidation))
			return
		}
		req.Evidence = data
		req.EvidenceName = header.Filename
	}

	payment, err := h.payments.Submit(r.Context(), id, claims.Sub, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}
