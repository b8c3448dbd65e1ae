package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrStaffNotFound   = errors.New("staff member not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrClosureNotFound = errors.New("closure not found")
)

// Repository contains all DB interactions needed by the catalog. Every query
// is scoped by tenant id; a record owned by another tenant behaves exactly
// like a missing one.
type Repository interface {
	CreateStaff(ctx context.Context, st *Staff) error
	GetStaff(ctx context.Context, tenantID, staffID uuid.UUID) (*Staff, error)
	ListStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error)
	ListActiveStaff(ctx context.Context, tenantID uuid.UUID) ([]Staff, error)
	CountActiveStaff(ctx context.Context, tenantID uuid.UUID) (int, error)
	UpdateStaff(ctx context.Context, st *Staff) error

	CreateClosure(ctx context.Context, c *SpecialClosure) error
	ListClosures(ctx context.Context, tenantID, staffID uuid.UUID) ([]SpecialClosure, error)
	ListAllClosures(ctx context.Context, tenantID uuid.UUID) ([]SpecialClosure, error)
	DeleteClosure(ctx context.Context, tenantID, staffID, closureID uuid.UUID) error

	CreateService(ctx context.Context, svc *Service) error
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error)
	ListActiveServices(ctx context.Context, tenantID uuid.UUID) ([]Service, error)
}
