package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const transactionColumns = `id, tenant_id, session_id, payment_id, amount, currency,
	plan_upgrade_to, payment_status, status, created_at, updated_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var tx Transaction
	err := row.Scan(
		&tx.ID, &tx.TenantID, &tx.SessionID, &tx.PaymentID, &tx.Amount, &tx.Currency,
		&tx.PlanUpgradeTo, &tx.PaymentStatus, &tx.SessionStatus, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &tx, nil
}

func (r *PgRepository) Create(ctx context.Context, tx *Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_transactions
			(id, tenant_id, session_id, payment_id, amount, currency,
			 plan_upgrade_to, payment_status, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		tx.ID, tx.TenantID, tx.SessionID, tx.PaymentID, tx.Amount, tx.Currency,
		tx.PlanUpgradeTo, tx.PaymentStatus, tx.SessionStatus, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PgRepository) GetBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (*Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM payment_transactions
		 WHERE tenant_id = $1 AND session_id = $2`,
		tenantID, sessionID,
	)
	return scanTransaction(row)
}

func (r *PgRepository) GetBySessionAnyTenant(ctx context.Context, sessionID string) (*Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM payment_transactions WHERE session_id = $1`,
		sessionID,
	)
	return scanTransaction(row)
}

func (r *PgRepository) MarkPaid(ctx context.Context, sessionID string, paymentID *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_transactions
		SET payment_status = 'paid',
		    status = 'completed',
		    payment_id = COALESCE($2, payment_id),
		    updated_at = now()
		WHERE session_id = $1 AND payment_status <> 'paid'`,
		sessionID, paymentID,
	)
	if err != nil {
		return fmt.Errorf("mark transaction paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetBySessionAnyTenant(ctx, sessionID); err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}

func (r *PgRepository) MarkClosed(ctx context.Context, sessionID string, paymentStatus PaymentStatus, sessionStatus SessionStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_transactions
		SET payment_status = $2, status = $3, updated_at = now()
		WHERE session_id = $1 AND payment_status <> 'paid'`,
		sessionID, paymentStatus, sessionStatus,
	)
	if err != nil {
		return fmt.Errorf("close transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetBySessionAnyTenant(ctx, sessionID); err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}
