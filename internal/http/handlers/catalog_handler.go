package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/academyhq/academy-bookings/internal/service"
)

// CatalogHandler serves the public, unauthenticated course catalog.
type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listCourses)
	r.Get("/{courseID}", h.getCourse)
	return r
}

func (h *CatalogHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CatalogHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "courseID")
	if err != nil {
		writeError(w, r, err)
		return
	}

	course, err := h.catalog.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}
