package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/scheduling"
	"github.com/daylane/booking-api/internal/tenant"
)

// resolveSlug loads the tenant behind a public booking page. Inactive salons
// look exactly like missing ones.
func (s *Server) resolveSlug(w http.ResponseWriter, r *http.Request) (*tenant.Tenant, bool) {
	t, err := s.tenants.ResolveActiveSlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return t, true
}

func (s *Server) handlePublicInfo(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveSlug(w, r)
	if !ok {
		return
	}

	services, err := s.catalog.ListActiveServices(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	staff, err := s.catalog.ListActiveStaff(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	info := publicInfoResponse{
		Name:     t.Name,
		Slug:     t.Slug,
		Locale:   t.Locale,
		Currency: t.Currency,
		Services: make([]serviceResponse, 0, len(services)),
		Staff:    make([]staffResponse, 0, len(staff)),
	}
	for i := range services {
		info.Services = append(info.Services, toServiceResponse(&services[i]))
	}
	for i := range staff {
		info.Staff = append(info.Staff, toStaffResponse(&staff[i]))
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handlePublicListAppointments(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveSlug(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "date query parameter is required")
		return
	}

	var staffID *uuid.UUID
	if raw := r.URL.Query().Get("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "staff_id must be a UUID")
			return
		}
		staffID = &id
	}

	slots, err := s.scheduler.ListForDate(r.Context(), t.ID, date, staffID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]publicSlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, publicSlotResponse{
			ID:           slot.ID,
			StaffID:      slot.StaffID,
			StartAt:      slot.StartAt,
			EndAt:        slot.EndAt,
			ServiceName:  slot.ServiceName,
			CustomerName: slot.CustomerName,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePublicBook is the unauthenticated booking path. It runs the same
// validation and the same gates as the authenticated one.
func (s *Server) handlePublicBook(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveSlug(w, r)
	if !ok {
		return
	}

	var req appointmentCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a, err := s.scheduler.Book(r.Context(), t, scheduling.BookingRequest{
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		StartAt:       req.StartAt,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
}
