package location

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, location *model.Location) error
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindAll(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error)
	Update(ctx context.Context, location *model.Location) error
	Delete(ctx context.Context, id string) error

	IsCodeUnique(ctx context.Context, code, excludeID string) (bool, error)
}

// ReferenceChecker counts inventory items stocked at a location. The
// inventory repository implements it.
type ReferenceChecker interface {
	CountByLocation(ctx context.Context, locationID string) (int, error)
}
