package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/service"
)

// AdminHandler is the staff surface: booking review, payment review, and
// catalog management.
type AdminHandler struct {
	approvals service.ApprovalService
	catalog   service.CatalogService
}

func NewAdminHandler(approvals service.ApprovalService, catalog service.CatalogService) *AdminHandler {
	return &AdminHandler{approvals: approvals, catalog: catalog}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/bookings", h.listBookings)
	r.Post("/bookings/{bookingID}/approve", h.approveBooking)
	r.Post("/bookings/{bookingID}/reject", h.rejectBooking)

	r.Post("/payments/{paymentID}/confirm", h.confirmPayment)
	r.Post("/payments/{paymentID}/reject", h.rejectPayment)

	r.Post("/courses", h.createCourse)
	r.Put("/courses/{courseID}", h.updateCourse)
	r.Delete("/courses/{courseID}", h.deleteCourse)

	r.Get("/instructors", h.listInstructors)
	r.Post("/instructors", h.createInstructor)
	r.Put("/instructors/{instructorID}", h.updateInstructor)
	r.Delete("/instructors/{instructorID}", h.deleteInstructor)

	return r
}

func (h *AdminHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	details, err := h.approvals.ListBookings(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *AdminHandler) approveBooking(w http.ResponseWriter, r *http.Request) {
	h.resolveBooking(w, r, h.approvals.ApproveBooking)
}

func (h *AdminHandler) rejectBooking(w http.ResponseWriter, r *http.Request) {
	h.resolveBooking(w, r, h.approvals.RejectBooking)
}

func (h *AdminHandler) resolveBooking(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, id int64) (*domain.ResolvedBooking, error)) {
	id, err := urlID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	resolved, err := resolve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved.Booking)
}

func (h *AdminHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	h.resolvePayment(w, r, h.approvals.ConfirmPayment)
}

func (h *AdminHandler) rejectPayment(w http.ResponseWriter, r *http.Request) {
	h.resolvePayment(w, r, h.approvals.RejectPayment)
}

func (h *AdminHandler) resolvePayment(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, id int64) (*domain.Payment, error)) {
	id, err := urlID(r, "paymentID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	payment, err := resolve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *AdminHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var input domain.CourseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errdefs.ErrValidation))
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *AdminHandler) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input domain.CourseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errdefs.ErrValidation))
		return
	}

	course, err := h.catalog.UpdateCourse(r.Context(), id, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *AdminHandler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteCourse(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) listInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.catalog.ListInstructors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructors)
}

func (h *AdminHandler) createInstructor(w http.ResponseWriter, r *http.Request) {
	var input domain.InstructorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errdefs.ErrValidation))
		return
	}

	instructor, err := h.catalog.CreateInstructor(r.Context(), &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, instructor)
}

func (h *AdminHandler) updateInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "instructorID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input domain.InstructorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", errdefs.ErrValidation))
		return
	}

	instructor, err := h.catalog.UpdateInstructor(r.Context(), id, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructor)
}

func (h *AdminHandler) deleteInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "instructorID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteInstructor(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
