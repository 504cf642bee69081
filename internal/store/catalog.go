package store

import (
	"context"

	"barberbook/backend/internal/domain"
)

// ServiceCatalog is read-only from the scheduler's point of view; the
// catalog is administered elsewhere. A snapshot is read once per request.
type ServiceCatalog interface {
	FindByID(ctx context.Context, id string) (domain.Service, error)
}
