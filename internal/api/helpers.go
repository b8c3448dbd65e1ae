package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/auth"
	"github.com/daylane/booking-api/internal/billing"
	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/scheduling"
	"github.com/daylane/booking-api/internal/tenant"
)

// ErrorResponse is the uniform error body for every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeServiceError maps domain sentinel errors onto the wire taxonomy.
// Anything unmapped is an internal error and gets logged with its cause.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", "a salon with this slug or email already exists")
	case errors.Is(err, tenant.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "auth_error", "invalid email or password")
	case errors.Is(err, tenant.ErrNothingToCancel):
		writeError(w, http.StatusBadRequest, "policy_error", "no active subscription to cancel")
	case errors.Is(err, tenant.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "not_found", "salon not found")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")

	case errors.Is(err, catalog.ErrStaffLimitReached):
		writeError(w, http.StatusUnprocessableEntity, "quota_exceeded", "staff limit for current plan reached")
	case errors.Is(err, catalog.ErrStaffNotFound):
		writeError(w, http.StatusNotFound, "not_found", "staff member not found")
	case errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "not_found", "service not found")
	case errors.Is(err, catalog.ErrClosureNotFound):
		writeError(w, http.StatusNotFound, "not_found", "closure not found")
	case errors.Is(err, catalog.ErrEmptyUpdate), errors.Is(err, catalog.ErrBadClosureDate), errors.Is(err, catalog.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, scheduling.ErrTimeConflict), errors.Is(err, scheduling.ErrBookingContended):
		writeError(w, http.StatusConflict, "booking_conflict", "this time slot is already taken")
	case errors.Is(err, scheduling.ErrQuotaExceeded):
		writeError(w, http.StatusUnprocessableEntity, "quota_exceeded", "monthly appointment limit reached")
	case errors.Is(err, scheduling.ErrTrialExpired):
		writeError(w, http.StatusPaymentRequired, "trial_expired", "trial period has expired, please upgrade")
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "not_found", "appointment not found")
	case errors.Is(err, scheduling.ErrEmptyUpdate), errors.Is(err, scheduling.ErrBadDate):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, billing.ErrUnknownPackage), errors.Is(err, billing.ErrAlreadyOnPlan):
		writeError(w, http.StatusBadRequest, "policy_error", err.Error())
	case errors.Is(err, billing.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "not_found", "payment session not found")
	case errors.Is(err, billing.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_error", "payment provider unavailable")
	case errors.Is(err, billing.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "upstream_error", "invalid webhook signature")

	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate parses a JSON body into dst and runs struct validation.
// It writes the 400 itself and reports whether the caller may proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}
