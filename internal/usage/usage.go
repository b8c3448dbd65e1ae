// Package usage records periodic per-tenant usage snapshots. The worker in
// cmd/usage-worker runs Collector.SnapshotAll on an interval; the dashboard
// and plan gates read live counts, snapshots exist for reporting and for
// spotting tenants close to their ceilings.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/plan"
)

type Snapshot struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Year             int
	Month            int
	StaffCount       int
	AppointmentCount int
	CreatedAt        time.Time
}

type Collector struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewCollector(pool *pgxpool.Pool) *Collector {
	return &Collector{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// SnapshotAll upserts one row per active tenant for the current calendar
// month. Re-running within the same month refreshes the counts in place.
func (c *Collector) SnapshotAll(ctx context.Context) (int, error) {
	now := c.now()
	monthStart, monthEnd := plan.MonthWindow(now)

	tag, err := c.pool.Exec(ctx, `
		INSERT INTO usage_snapshots
			(id, tenant_id, year, month, staff_count, monthly_appointment_count, created_at)
		SELECT
			gen_random_uuid(),
			t.id,
			$1,
			$2,
			(SELECT count(*) FROM staff s WHERE s.tenant_id = t.id AND s.active),
			(SELECT count(*) FROM appointments a
			 WHERE a.tenant_id = t.id AND a.status = 'confirmed'
			   AND a.start_at >= $3 AND a.start_at < $4),
			now()
		FROM tenants t
		WHERE t.active
		ON CONFLICT (tenant_id, year, month) DO UPDATE SET
			staff_count = EXCLUDED.staff_count,
			monthly_appointment_count = EXCLUDED.monthly_appointment_count,
			created_at = now()`,
		now.Year(), int(now.Month()), monthStart, monthEnd,
	)
	if err != nil {
		return 0, fmt.Errorf("snapshot tenants: %w", err)
	}

	n := int(tag.RowsAffected())
	log.Info().Int("tenants", n).Int("year", now.Year()).Int("month", int(now.Month())).Msg("usage snapshots written")
	return n, nil
}

// ListForTenant returns a tenant's snapshots, newest first.
func (c *Collector) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]Snapshot, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, tenant_id, year, month, staff_count, monthly_appointment_count, created_at
		FROM usage_snapshots
		WHERE tenant_id = $1
		ORDER BY year DESC, month DESC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Year, &s.Month, &s.StaffCount, &s.AppointmentCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
