package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daylane/booking-api/internal/auth"
	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/db"
	"github.com/daylane/booking-api/internal/plan"
)

const demoPassword = "demo-password-123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedSalons(context.Background(), pool); err != nil {
		log.Fatalf("seed salons: %v", err)
	}

	log.Println("seed complete")
	log.Printf("demo login: owner@salon-bern.example / %s", demoPassword)
}

type salonSpec struct {
	name  string
	slug  string
	email string
	plan  plan.Type
	staff int
}

func seedSalons(ctx context.Context, pool *pgxpool.Pool) error {
	salons := []salonSpec{
		{name: "Salon Bern", slug: "salon-bern", email: "owner@salon-bern.example", plan: plan.Pro, staff: 3},
		{name: "Coiffeur Zürich", slug: "coiffeur-zuerich", email: "owner@coiffeur-zuerich.example", plan: plan.Starter, staff: 2},
		{name: "Hair Basel", slug: "hair-basel", email: "owner@hair-basel.example", plan: plan.Trial, staff: 1},
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	for _, s := range salons {
		if err := seedSalon(ctx, pool, s, hash); err != nil {
			return fmt.Errorf("salon %s: %w", s.slug, err)
		}
		log.Printf("seeded salon %s (%s plan, %d staff)", s.slug, s.plan, s.staff)
	}
	return nil
}

func seedSalon(ctx context.Context, pool *pgxpool.Pool, spec salonSpec, passwordHash string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	trialEnd := now.Add(14 * 24 * time.Hour)
	tenantID := uuid.New()

	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, email, phone, password_hash, plan, trial_start, trial_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO NOTHING`,
		tenantID, spec.name, spec.slug, spec.email, gofakeit.Phone(), passwordHash, spec.plan, now, trialEnd,
	)
	if err != nil {
		return err
	}

	schedule, err := json.Marshal(catalog.DefaultWeeklySchedule())
	if err != nil {
		return err
	}

	colors := []string{"#3B82F6", "#10B981", "#F59E0B"}
	staffIDs := make([]uuid.UUID, 0, spec.staff)
	for i := 0; i < spec.staff; i++ {
		id := uuid.New()
		staffIDs = append(staffIDs, id)
		_, err = tx.Exec(ctx, `
			INSERT INTO staff (id, tenant_id, name, color_tag, working_hours)
			VALUES ($1, $2, $3, $4, $5)`,
			id, tenantID, gofakeit.Name(), colors[i%len(colors)], schedule,
		)
		if err != nil {
			return err
		}
	}

	services := []struct {
		name    string
		minutes int
		price   float64
		buffer  int
	}{
		{"Haircut", 30, 45.00, 10},
		{"Coloring", 90, 120.00, 15},
		{"Beard Trim", 15, 25.00, 5},
	}
	serviceIDs := make([]uuid.UUID, 0, len(services))
	for _, svc := range services {
		id := uuid.New()
		serviceIDs = append(serviceIDs, id)
		_, err = tx.Exec(ctx, `
			INSERT INTO services (id, tenant_id, name, duration_minutes, price_chf, buffer_minutes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, tenantID, svc.name, svc.minutes, svc.price, svc.buffer,
		)
		if err != nil {
			return err
		}
	}

	// Two-hour spacing per staff member keeps even the longest service
	// clear of the overlap constraint.
	day := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	for d := 0; d < 5; d++ {
		for hour := 0; hour < 4; hour++ {
			for _, staffID := range staffIDs {
				start := day.Add(time.Duration(d)*24*time.Hour + time.Duration(hour)*2*time.Hour)
				svcIdx := gofakeit.Number(0, len(serviceIDs)-1)
				end := start.Add(time.Duration(services[svcIdx].minutes+services[svcIdx].buffer) * time.Minute)

				_, err = tx.Exec(ctx, `
					INSERT INTO appointments
						(id, tenant_id, service_id, staff_id, start_at, end_at, customer_name, customer_email)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					uuid.New(), tenantID, serviceIDs[svcIdx], staffID, start, end, gofakeit.Name(), gofakeit.Email(),
				)
				if err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit(ctx)
}
