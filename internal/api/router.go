package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/daylane/booking-api/internal/auth"
	"github.com/daylane/booking-api/internal/billing"
	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/scheduling"
	"github.com/daylane/booking-api/internal/tenant"
	"github.com/daylane/booking-api/internal/usage"
)

// UsageReader is the slice of the usage collector the dashboard reads.
type UsageReader interface {
	ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]usage.Snapshot, error)
}

// Server holds the wired application services and exposes the HTTP surface.
type Server struct {
	tokens      *auth.TokenManager
	tenants     *tenant.Service
	catalog     *catalog.Manager
	scheduler   *scheduling.Service
	billing     *billing.Service
	usage       UsageReader
	pool        *pgxpool.Pool
	rdb         *redis.Client
	corsOrigins []string
}

func NewServer(
	tokens *auth.TokenManager,
	tenants *tenant.Service,
	cat *catalog.Manager,
	scheduler *scheduling.Service,
	bill *billing.Service,
	usageReader UsageReader,
	pool *pgxpool.Pool,
	rdb *redis.Client,
	corsOrigins []string,
) *Server {
	return &Server{
		tokens:      tokens,
		tenants:     tenants,
		catalog:     cat,
		scheduler:   scheduler,
		billing:     bill,
		usage:       usageReader,
		pool:        pool,
		rdb:         rdb,
		corsOrigins: corsOrigins,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Route("/public/{slug}", func(r chi.Router) {
		r.Get("/info", s.handlePublicInfo)
		r.Get("/appointments", s.handlePublicListAppointments)
		r.Post("/appointments", s.handlePublicBook)
	})

	r.Post("/webhook/stripe", s.handleStripeWebhook)

	// everything below requires a tenant bearer token
	r.Group(func(r chi.Router) {
		r.Use(s.requireTenant)

		r.Post("/auth/cancel-subscription", s.handleCancelSubscription)
		r.Get("/dashboard/overview", s.handleOverview)
		r.Get("/dashboard/usage", s.handleUsageHistory)

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", s.handleListStaff)
			r.Post("/", s.handleCreateStaff)
			r.Put("/{staffID}", s.handleUpdateStaff)
			r.Put("/{staffID}/working-hours", s.handleSetWorkingHours)
			r.Get("/{staffID}/closures", s.handleListClosures)
			r.Post("/{staffID}/closures", s.handleAddClosure)
			r.Delete("/{staffID}/closures/{closureID}", s.handleDeleteClosure)
		})
		r.Get("/closures", s.handleListAllClosures)

		r.Get("/services", s.handleListServices)
		r.Post("/services", s.handleCreateService)

		r.Get("/appointments", s.handleListAppointments)
		r.Post("/appointments", s.handleCreateAppointment)
		r.Put("/appointments/{appointmentID}", s.handleUpdateAppointment)
		r.Delete("/appointments/{appointmentID}", s.handleDeleteAppointment)

		r.Post("/payments/checkout/session", s.handleCreateCheckout)
		r.Get("/payments/checkout/status/{sessionID}", s.handleCheckoutStatus)
	})

	return r
}
