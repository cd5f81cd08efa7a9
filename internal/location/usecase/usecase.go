package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type locationUseCase struct {
	repo   location.Repository
	refs   location.ReferenceChecker
	logger logger.ZapLogger
}

// NewLocationUseCase wires the registry. refs may be nil until the inventory
// repository exists; deletes are then unguarded.
func NewLocationUseCase(repo location.Repository, refs location.ReferenceChecker, log logger.ZapLogger) location.UseCase {
	return &locationUseCase{
		repo:   repo,
		refs:   refs,
		logger: log,
	}
}

func (uc *locationUseCase) CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.Location, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if err := uc.ensureCodeUnique(ctx, input.Code, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loc := &model.Location{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Code:      input.Code,
		Type:      model.LocationType(input.Type),
		Capacity:  input.Capacity,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}

	uc.logger.Info("location created", zap.String("location_id", loc.ID), zap.String("code", loc.Code))
	return loc, nil
}

func (uc *locationUseCase) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	loc, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperror.NotFound("location %s not found", id)
	}
	return loc, nil
}

func (uc *locationUseCase) ListLocations(ctx context.Context, filters *dto.LocationFilters) ([]model.Location, int, error) {
	if filters == nil {
		filters = &dto.LocationFilters{}
	}
	if filters.Type != "" && !model.LocationType(filters.Type).Valid() {
		return nil, 0, apperror.Validation("unknown location type %q", filters.Type)
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *locationUseCase) UpdateLocation(ctx context.Context, input *dto.UpdateLocationInput) (*model.Location, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	loc, err := uc.GetLocation(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Code != loc.Code {
		if err := uc.ensureCodeUnique(ctx, input.Code, loc.ID); err != nil {
			return nil, err
		}
	}

	loc.Name = input.Name
	loc.Code = input.Code
	loc.Type = model.LocationType(input.Type)
	loc.Capacity = input.Capacity
	loc.IsActive = input.IsActive
	loc.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (uc *locationUseCase) DeleteLocation(ctx context.Context, id string) error {
	if _, err := uc.GetLocation(ctx, id); err != nil {
		return err
	}

	if uc.refs != nil {
		n, err := uc.refs.CountByLocation(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict("location %s still holds %d inventory items", id, n)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("location deleted", zap.String("location_id", id))
	return nil
}

func (uc *locationUseCase) ensureCodeUnique(ctx context.Context, code, excludeID string) error {
	unique, err := uc.repo.IsCodeUnique(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperror.DuplicateKey("location code %q already exists", code)
	}
	return nil
}
