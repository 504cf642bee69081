package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type ServiceCatalogRepo struct {
	db *bun.DB
}

func NewServiceCatalogRepo(db *bun.DB) *ServiceCatalogRepo {
	return &ServiceCatalogRepo{db: db}
}

func (r *ServiceCatalogRepo) FindByID(ctx context.Context, id string) (domain.Service, error) {
	var svc domain.Service
	err := r.db.NewSelect().
		Model(&svc).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, store.ErrNotFound
		}
		return domain.Service{}, err
	}
	return svc, nil
}
