package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daylane/booking-api/internal/plan"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	var phone *string

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Email,
		&phone,
		&t.PasswordHash,
		&t.Locale,
		&t.Currency,
		&t.Plan,
		&t.TrialStart,
		&t.TrialEnd,
		&t.Active,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	t.Phone = phone
	return &t, nil
}

const tenantColumns = `id, name, slug, email, phone, password_hash, locale, currency, plan, trial_start, trial_end, active, created_at`

func (r *PgRepository) Create(ctx context.Context, t *Tenant) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, email, phone, password_hash, locale, currency, plan, trial_start, trial_end, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
	`, t.ID, t.Name, t.Slug, t.Email, t.Phone, t.PasswordHash, t.Locale, t.Currency, t.Plan, t.TrialStart, t.TrialEnd, t.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE id = $1
	`, id)
	return scanTenant(row)
}

func (r *PgRepository) GetByEmail(ctx context.Context, email string) (*Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE email = $1
	`, email)
	return scanTenant(row)
}

func (r *PgRepository) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE slug = $1
	`, slug)
	return scanTenant(row)
}

func (r *PgRepository) UpdatePlan(ctx context.Context, id uuid.UUID, p plan.Type) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants
		SET plan = $2
		WHERE id = $1
	`, id, p)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (r *PgRepository) ResetToTrial(ctx context.Context, id uuid.UUID, trialStart, trialEnd time.Time) (plan.Type, error) {
	// Conditional on a paid plan so that concurrent cancellations settle to
	// exactly one winner.
	row := r.pool.QueryRow(ctx, `
		UPDATE tenants t
		SET plan = 'trial',
		    trial_start = $2,
		    trial_end = $3
		FROM (SELECT id, plan FROM tenants WHERE id = $1 FOR UPDATE) old
		WHERE t.id = old.id
		  AND old.plan <> 'trial'
		RETURNING old.plan
	`, id, trialStart, trialEnd)

	var previous plan.Type
	if err := row.Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTenantNotFound
		}
		return "", err
	}
	return previous, nil
}

func (r *PgRepository) InsertCancellation(ctx context.Context, c Cancellation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscription_cancellations (id, tenant_id, previous_plan, cancelled_at, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.TenantID, c.PreviousPlan, c.CancelledAt, c.Reason)
	return err
}
