package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrAlreadyPaid         = errors.New("transaction already settled")
)

// Repository persists payment transactions.
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error

	// GetBySession scopes by tenant; webhooks use GetBySessionAnyTenant
	// because the provider does not authenticate as a tenant.
	GetBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (*Transaction, error)
	GetBySessionAnyTenant(ctx context.Context, sessionID string) (*Transaction, error)

	// MarkPaid settles a pending transaction. It succeeds at most once per
	// session: a second call returns ErrAlreadyPaid, which is how the
	// caller knows it lost the race and must not apply the upgrade again.
	MarkPaid(ctx context.Context, sessionID string, paymentID *string) error

	// MarkClosed records a terminal non-success state (cancelled or
	// expired session). It never downgrades a paid transaction.
	MarkClosed(ctx context.Context, sessionID string, paymentStatus PaymentStatus, sessionStatus SessionStatus) error
}
