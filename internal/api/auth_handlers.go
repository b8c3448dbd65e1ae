package api

import (
	"net/http"

	"github.com/daylane/booking-api/internal/tenant"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, token, err := s.tenants.Register(r.Context(), tenant.RegisterInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, Tenant: toTenantResponse(t)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t, token, err := s.tenants.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, Tenant: toTenantResponse(t)})
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	updated, err := s.tenants.CancelSubscription(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTenantResponse(updated))
}
