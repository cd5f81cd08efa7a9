package location

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.Location, error)
	GetLocation(ctx context.Context, id string) (*model.Location, error)
	ListLocations(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error)
	UpdateLocation(ctx context.Context, input *dto.UpdateLocationInput) (*model.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}
