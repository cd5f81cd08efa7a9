package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// MemoryRepository keeps locations in process. It backs tests and the
// STORE_DRIVER=memory mode.
type MemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]model.Location
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{locations: make(map[string]model.Location)}
}

func (r *MemoryRepository) Create(ctx context.Context, l *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codeTaken(l.Code, "") {
		return apperror.DuplicateKey("location code %q already exists", l.Code)
	}
	r.locations[l.ID] = *l
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.LocationFilters) ([]model.Location, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Location{}
	keyword := strings.ToLower(f.Keyword)
	for _, l := range r.locations {
		if f.Type != "" && string(l.Type) != f.Type {
			continue
		}
		if f.IsActive != nil && l.IsActive != *f.IsActive {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(l.Name), keyword) &&
			!strings.Contains(strings.ToLower(l.Code), keyword) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	total := len(out)
	return paginate(out, f.Page, f.PageSize), total, nil
}

func (r *MemoryRepository) Update(ctx context.Context, l *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[l.ID]; !ok {
		return apperror.NotFound("location %s not found", l.ID)
	}
	if r.codeTaken(l.Code, l.ID) {
		return apperror.DuplicateKey("location code %q already exists", l.Code)
	}
	r.locations[l.ID] = *l
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, id)
	return nil
}

func (r *MemoryRepository) IsCodeUnique(ctx context.Context, code, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.codeTaken(code, excludeID), nil
}

func (r *MemoryRepository) codeTaken(code, excludeID string) bool {
	for id, l := range r.locations {
		if id != excludeID && l.Code == code {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	start := (max(page, 1) - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}
