package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daylane/booking-api/internal/billing"
)

const maxWebhookBody = 1 << 16

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	var req checkoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tx, url, err := s.billing.CreateCheckout(r.Context(), t, req.PackageID, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{SessionID: tx.SessionID, CheckoutURL: url})
}

func (s *Server) handleCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)
	sessionID := chi.URLParam(r, "sessionID")

	tx, err := s.billing.GetStatus(r.Context(), t.ID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentStatusResponse(tx))
}

func toPaymentStatusResponse(tx *billing.Transaction) paymentStatusResponse {
	resp := paymentStatusResponse{
		SessionID:     tx.SessionID,
		PaymentStatus: string(tx.PaymentStatus),
		SessionStatus: string(tx.SessionStatus),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	}
	if tx.PlanUpgradeTo != nil {
		p := string(*tx.PlanUpgradeTo)
		resp.PlanUpgradeTo = &p
	}
	return resp
}

// handleStripeWebhook is provider-authenticated via signature, never via a
// tenant session.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "unreadable webhook body")
		return
	}

	if err := s.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
