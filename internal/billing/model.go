package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/daylane/booking-api/internal/plan"
)

// PaymentStatus tracks the money side of a checkout.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

// SessionStatus tracks the checkout session lifecycle on the provider side.
type SessionStatus string

const (
	SessionInitiated SessionStatus = "initiated"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionExpired   SessionStatus = "expired"
)

// Transaction is the local record of one checkout session. SessionID is the
// provider's session identifier and is unique; everything the system later
// decides about the payment hangs off this row, never off the provider's
// redirect flow.
type Transaction struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	SessionID     string
	PaymentID     *string
	Amount        float64
	Currency      string
	PlanUpgradeTo *plan.Type
	PaymentStatus PaymentStatus
	SessionStatus SessionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Paid reports whether the transaction has reached its terminal success
// state.
func (t *Transaction) Paid() bool {
	return t.PaymentStatus == PaymentPaid
}
