package catalog

import (
	"context"
	"errors"

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

// Helpers

func scanStaff(row pgx.Row) (*Staff, error) {
	var st Staff

	err := row.Scan(
		&st.ID,
		&st.TenantID,
		&st.Name,
		&st.Active,
		&st.ColorTag,
		&st.Timezone,
		&st.WorkingHours,
		&st.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	return &st, nil
}

func scanClosure(row pgx.Row) (*SpecialClosure, error) {
	var c SpecialClosure

	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.StaffID,
		&c.Date,
		&c.Reason,
		&c.AllDay,
		&c.StartTime,
		&c.EndTime,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClosureNotFound
		}
		return nil, err
	}

	return &c, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.Description,
		&s.DurationMinutes,
		&s.PriceCHF,
		&s.BufferMinutes,
		&s.Active,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &s, nil
}

const staffColumns = `id, tenant_id, name, active, color_tag, timezone, working_hours, created_at`

// Staff

func (r *PgRepository) CreateStaff(ctx context.Context, st *Staff) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, tenant_id, name, active, color_tag, timezone, working_hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`, st.ID, st.TenantID, st.Name, st.Active, st.ColorTag, st.Timezone, st.WorkingHours)
	return err
}

func (r *PgRepository) GetStaff(ctx context.Context, tenantID, staffID uuid.UUID) (*Staff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE id = $1 AND tenant_id = $2
	`, staffID, tenantID)
	return scanStaff(row)
}

func (r *PgRepository) ListStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error) {
	return r.listStaff(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
}

func (r *PgRepository) ListActiveStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error) {
	return r.listStaff(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE tenant_id = $1 AND active
		ORDER BY created_at
	`, tenantID)
}

func (r *PgRepository) listStaff(ctx context.Context, query string, tenantID uuid.UUID) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *st)
	}

	return result, rows.Err()
}

func (r *PgRepository) CountActiveStaff(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM staff
		WHERE tenant_id = $1 AND active
	`, tenantID).Scan(&count)
	return count, err
}

func (r *PgRepository) UpdateStaff(ctx context.Context, st *Staff) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET name = $3,
		    active = $4,
		    color_tag = $5,
		    timezone = $6,
		    working_hours = $7
		WHERE id = $1 AND tenant_id = $2
	`, st.ID, st.TenantID, st.Name, st.Active, st.ColorTag, st.Timezone, st.WorkingHours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaffNotFound
	}
	return nil
}

// Closures

const closureColumns = `id, tenant_id, staff_id, to_char(date, 'YYYY-MM-DD'), reason, all_day, start_time, end_time, created_at`

func (r *PgRepository) CreateClosure(ctx context.Context, c *SpecialClosure) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO special_closures (id, tenant_id, staff_id, date, reason, all_day, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, c.ID, c.TenantID, c.StaffID, c.Date, c.Reason, c.AllDay, c.StartTime, c.EndTime)
	return err
}

func (r *PgRepository) ListClosures(ctx context.Context, tenantID, staffID uuid.UUID) ([]SpecialClosure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+closureColumns+`
		FROM special_closures
		WHERE tenant_id = $1 AND staff_id = $2
		ORDER BY date
	`, tenantID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectClosures(rows)
}

func (r *PgRepository) ListAllClosures(ctx context.Context, tenantID uuid.UUID) ([]SpecialClosure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+closureColumns+`
		FROM special_closures
		WHERE tenant_id = $1
		ORDER BY date
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectClosures(rows)
}

func collectClosures(rows pgx.Rows) ([]SpecialClosure, error) {
	var result []SpecialClosure
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *PgRepository) DeleteClosure(ctx context.Context, tenantID, staffID, closureID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM special_closures
		WHERE id = $1 AND staff_id = $2 AND tenant_id = $3
	`, closureID, staffID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClosureNotFound
	}
	return nil
}

// Services

const serviceColumns = `id, tenant_id, name, description, duration_minutes, price_chf, buffer_minutes, active, created_at`

func (r *PgRepository) CreateService(ctx context.Context, svc *Service) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, tenant_id, name, description, duration_minutes, price_chf, buffer_minutes, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, svc.ID, svc.TenantID, svc.Name, svc.Description, svc.DurationMinutes, svc.PriceCHF, svc.BufferMinutes, svc.Active)
	return err
}

func (r *PgRepository) GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*Service, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1 AND tenant_id = $2
	`, serviceID, tenantID)
	return scanService(row)
}

func (r *PgRepository) ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	return r.listServices(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
}

func (r *PgRepository) ListActiveServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error) {
	return r.listServices(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE tenant_id = $1 AND active
		ORDER BY created_at
	`, tenantID)
}

func (r *PgRepository) listServices(ctx context.Context, query string, tenantID uuid.UUID) ([]Service, error) {
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	return result, rows.Err()
}
