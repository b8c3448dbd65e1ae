package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// exclusionViolation is raised by the appointments_no_overlap constraint.
const exclusionViolation = "23P01"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.ServiceID,
		&a.StaffID,
		&a.StartAt,
		&a.EndAt,
		&a.CustomerName,
		&a.CustomerEmail,
		&a.CustomerPhone,
		&a.Notes,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail

	err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.ServiceID,
		&d.StaffID,
		&d.StartAt,
		&d.EndAt,
		&d.CustomerName,
		&d.CustomerEmail,
		&d.CustomerPhone,
		&d.Notes,
		&d.Status,
		&d.CreatedAt,
		&d.ServiceName,
		&d.PriceCHF,
		&d.DurationMinutes,
		&d.StaffName,
		&d.StaffColor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &d, nil
}

const appointmentColumns = `id, tenant_id, service_id, staff_id, start_at, end_at, customer_name, customer_email, customer_phone, notes, status, created_at`

const detailQuery = `
	SELECT a.id, a.tenant_id, a.service_id, a.staff_id, a.start_at, a.end_at,
	       a.customer_name, a.customer_email, a.customer_phone, a.notes, a.status, a.created_at,
	       s.name, s.price_chf, s.duration_minutes,
	       st.name, st.color_tag
	FROM appointments a
	LEFT JOIN services s ON s.id = a.service_id AND s.tenant_id = a.tenant_id
	LEFT JOIN staff st ON st.id = a.staff_id AND st.tenant_id = a.tenant_id
`

func (r *PgRepository) CreateConfirmed(ctx context.Context, a *Appointment, monthStart, monthEnd time.Time, ceiling int) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, tenant_id, service_id, staff_id, start_at, end_at, customer_name, customer_email, customer_phone, notes, status, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'confirmed', now()
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE tenant_id = $2
			  AND staff_id = $4
			  AND status = 'confirmed'
			  AND start_at < $6
			  AND end_at > $5
		)
		AND (
			SELECT count(*) FROM appointments
			WHERE tenant_id = $2
			  AND status = 'confirmed'
			  AND start_at >= $11
			  AND start_at < $12
		) < $13
	`, a.ID, a.TenantID, a.ServiceID, a.StaffID, a.StartAt, a.EndAt,
		a.CustomerName, a.CustomerEmail, a.CustomerPhone, a.Notes,
		monthStart, monthEnd, ceiling)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			return ErrNotAdmitted
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAdmitted
	}
	return nil
}

func (r *PgRepository) HasOverlap(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE tenant_id = $1
			  AND staff_id = $2
			  AND status = 'confirmed'
			  AND start_at < $4
			  AND end_at > $3
		)
	`, tenantID, staffID, start, end).Scan(&exists)
	return exists, err
}

func (r *PgRepository) CountConfirmedInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE tenant_id = $1
		  AND status = 'confirmed'
		  AND start_at >= $2
		  AND start_at < $3
	`, tenantID, from, to).Scan(&count)
	return count, err
}

func (r *PgRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	return scanAppointment(row)
}

func (r *PgRepository) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET customer_name = $3,
		    customer_email = $4,
		    customer_phone = $5,
		    notes = $6,
		    status = $7
		WHERE id = $1 AND tenant_id = $2
	`, a.ID, a.TenantID, a.CustomerName, a.CustomerEmail, a.CustomerPhone, a.Notes, a.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			return ErrNotAdmitted
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListDetails(ctx context.Context, tenantID uuid.UUID) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`
		WHERE a.tenant_id = $1
		ORDER BY a.start_at
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) ListDayDetails(ctx context.Context, tenantID uuid.UUID, dayStart, dayEnd time.Time, staffID *uuid.UUID) ([]Detail, error) {
	query := detailQuery + `
		WHERE a.tenant_id = $1
		  AND a.start_at >= $2
		  AND a.start_at < $3
	`
	args := []any{tenantID, dayStart, dayEnd}
	if staffID != nil {
		query += ` AND a.staff_id = $4`
		args = append(args, *staffID)
	}
	query += ` ORDER BY a.start_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]Detail, error) {
	var result []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) CountDistinctCustomers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT customer_email)
		FROM appointments
		WHERE tenant_id = $1
		  AND customer_email IS NOT NULL
		  AND customer_email <> ''
	`, tenantID).Scan(&count)
	return count, err
}
