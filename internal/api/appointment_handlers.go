package api

import (
	"net/http"

	"github.com/daylane/booking-api/internal/scheduling"
)

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	details, err := s.scheduler.List(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]appointmentDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toDetailResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

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

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	appointmentID, ok := pathUUID(w, r, "appointmentID")
	if !ok {
		return
	}

	var req appointmentUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := scheduling.UpdatePatch{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status := scheduling.Status(*req.Status)
		patch.Status = &status
	}

	a, err := s.scheduler.Update(r.Context(), t.ID, appointmentID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(a))
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	appointmentID, ok := pathUUID(w, r, "appointmentID")
	if !ok {
		return
	}

	if err := s.scheduler.Delete(r.Context(), t.ID, appointmentID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	ov, err := s.scheduler.DashboardOverview(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	next := make([]appointmentDetailResponse, 0, len(ov.NextAppointments))
	for _, d := range ov.NextAppointments {
		next = append(next, toDetailResponse(d))
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		AppointmentsToday:     ov.AppointmentsToday,
		AppointmentsThisMonth: ov.AppointmentsThisMonth,
		ActiveStaff:           ov.ActiveStaff,
		TotalCustomers:        ov.TotalCustomers,
		NextAppointments:      next,
		Plan:                  ov.Plan,
		TrialEnd:              ov.TrialEnd,
		TenantName:            ov.TenantName,
		TenantSlug:            ov.TenantSlug,
	})
}
