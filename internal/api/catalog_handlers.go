package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/catalog"
)

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	staff, err := s.catalog.ListStaff(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]staffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, toStaffResponse(&staff[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	var req staffCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st, err := s.catalog.CreateStaff(r.Context(), t.ID, t.Plan, catalog.StaffCreateInput{
		Name:         req.Name,
		WorkingHours: req.WorkingHours,
		ColorTag:     req.ColorTag,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(st))
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	staffID, ok := pathUUID(w, r, "staffID")
	if !ok {
		return
	}

	var req staffUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st, err := s.catalog.UpdateStaff(r.Context(), t.ID, staffID, catalog.StaffPatch{
		Name:         req.Name,
		WorkingHours: req.WorkingHours,
		ColorTag:     req.ColorTag,
		Active:       req.Active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(st))
}

func (s *Server) handleSetWorkingHours(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	staffID, ok := pathUUID(w, r, "staffID")
	if !ok {
		return
	}

	var schedule catalog.WeeklySchedule
	if !decodeAndValidate(w, r, &schedule) {
		return
	}

	st, err := s.catalog.SetWorkingHours(r.Context(), t.ID, staffID, schedule)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(st))
}

func (s *Server) handleListClosures(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	staffID, ok := pathUUID(w, r, "staffID")
	if !ok {
		return
	}

	closures, err := s.catalog.ListClosures(r.Context(), t.ID, staffID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]closureResponse, 0, len(closures))
	for i := range closures {
		out = append(out, toClosureResponse(&closures[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddClosure(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	staffID, ok := pathUUID(w, r, "staffID")
	if !ok {
		return
	}

	var req closureCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	allDay := true
	if req.AllDay != nil {
		allDay = *req.AllDay
	}

	c, err := s.catalog.AddClosure(r.Context(), t.ID, staffID, catalog.ClosureCreateInput{
		Date:      req.Date,
		Reason:    req.Reason,
		AllDay:    allDay,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClosureResponse(c))
}

func (s *Server) handleDeleteClosure(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	staffID, ok := pathUUID(w, r, "staffID")
	if !ok {
		return
	}
	closureID, ok := pathUUID(w, r, "closureID")
	if !ok {
		return
	}

	if err := s.catalog.DeleteClosure(r.Context(), t.ID, staffID, closureID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListAllClosures(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	closures, err := s.catalog.ListAllClosures(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]closureResponse, 0, len(closures))
	for i := range closures {
		out = append(out, toClosureResponse(&closures[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	services, err := s.catalog.ListServices(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]serviceResponse, 0, len(services))
	for i := range services {
		out = append(out, toServiceResponse(&services[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	var req serviceCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	svc, err := s.catalog.CreateService(r.Context(), t.ID, catalog.ServiceCreateInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCHF:        req.PriceCHF,
		BufferMinutes:   req.BufferMinutes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toServiceResponse(svc))
}
