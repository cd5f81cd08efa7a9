package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// MemoryRepository is the in-process store. A single RWMutex covers items and
// ledger so every apply is one critical section and every snapshot one read.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  map[string]model.InventoryItem
	byKey  map[string]string // productID|locationID -> item id
	ledger map[string][]model.Transaction
}

var _ inventory.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:  make(map[string]model.InventoryItem),
		byKey:  make(map[string]string),
		ledger: make(map[string][]model.Transaction),
	}
}

func pairKey(productID, locationID string) string {
	return productID + "|" + locationID
}

func (r *MemoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(item.ProductID, item.LocationID)
	if _, ok := r.byKey[key]; ok {
		return duplicatePair(item.ProductID, item.LocationID)
	}
	if err := ctx.Err(); err != nil {
		return apperror.Persistence(err, "create inventory item")
	}
	r.items[item.ID] = *item
	r.byKey[key] = item.ID
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	item.RefreshStatus()
	return &item, nil
}

func (r *MemoryRepository) FindByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryItem, error) {
	r.mu.RLock()
	id, ok := r.byKey[pairKey(productID, locationID)]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	if f == nil {
		f = &dto.InventoryFilters{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.InventoryItem{}
	for _, item := range r.items {
		item.RefreshStatus()
		if matches(&item, f) {
			out = append(out, item)
		}
	}
	sortItems(out)

	total := len(out)
	return paginate(out, f.Page, f.PageSize), total, nil
}

func matches(item *model.InventoryItem, f *dto.InventoryFilters) bool {
	if f.LocationID != "" && item.LocationID != f.LocationID {
		return false
	}
	if f.ProductID != "" && item.ProductID != f.ProductID {
		return false
	}
	if f.Status != "" && string(item.Status) != f.Status {
		return false
	}
	if f.LowStockOnly && item.Status == model.StatusInStock {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(item.ProductID), kw) &&
			!strings.Contains(strings.ToLower(item.LocationID), kw) {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) UpdateMetadata(ctx context.Context, item *model.InventoryItem, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ID]
	if !ok {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	if stored.Version != expectedVersion {
		return inventory.ErrVersionConflict
	}
	if err := ctx.Err(); err != nil {
		return apperror.Persistence(err, "update inventory item")
	}

	stored.MinStock = item.MinStock
	stored.MaxStock = item.MaxStock
	stored.SafeStock = item.SafeStock
	stored.AverageCost = item.AverageCost
	stored.Version = item.Version
	stored.UpdatedAt = item.UpdatedAt
	r.items[item.ID] = stored
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil
	}
	delete(r.items, id)
	delete(r.byKey, pairKey(item.ProductID, item.LocationID))
	return nil
}

func (r *MemoryRepository) CountByLocation(ctx context.Context, locationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, item := range r.items {
		if item.LocationID == locationID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) ApplyTransaction(ctx context.Context, item *model.InventoryItem, txn *model.Transaction, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ID]
	if !ok {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	if stored.Version != expectedVersion {
		return inventory.ErrVersionConflict
	}
	// last chance to abandon the unit before anything becomes visible
	if err := ctx.Err(); err != nil {
		return apperror.Persistence(err, "apply inventory transaction")
	}

	txn.Sequence = int64(len(r.ledger[item.ID])) + 1
	r.items[item.ID] = *item
	r.ledger[item.ID] = append(r.ledger[item.ID], *txn)
	return nil
}

func (r *MemoryRepository) ListByItem(ctx context.Context, itemID string, dr *model.DateRange) ([]model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Transaction{}
	for _, t := range r.ledger[itemID] {
		if dr.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListByRange(ctx context.Context, dr *model.DateRange) ([]model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Transaction{}
	for _, txns := range r.ledger {
		for _, t := range txns {
			if dr.Contains(t.CreatedAt) {
				out = append(out, t)
			}
		}
	}
	sortTransactions(out)
	return out, nil
}

func (r *MemoryRepository) Snapshot(ctx context.Context) ([]model.InventoryItem, []model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.InventoryItem, 0, len(r.items))
	txns := []model.Transaction{}
	for id, item := range r.items {
		item.RefreshStatus()
		items = append(items, item)
		txns = append(txns, r.ledger[id]...)
	}
	sortItems(items)
	sortTransactions(txns)
	return items, txns, nil
}

func (r *MemoryRepository) Restore(ctx context.Context, items []model.InventoryItem, txns []model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := len(r.items) + len(r.ledger); existing > 0 {
		return apperror.Conflict("restore requires an empty inventory, found %d existing rows", existing)
	}

	byKey := make(map[string]string, len(items))
	for _, item := range items {
		key := pairKey(item.ProductID, item.LocationID)
		if _, ok := byKey[key]; ok {
			return duplicatePair(item.ProductID, item.LocationID)
		}
		byKey[key] = item.ID
	}

	ledger := make(map[string][]model.Transaction, len(items))
	for _, t := range txns {
		ledger[t.InventoryItemID] = append(ledger[t.InventoryItemID], t)
	}
	for id := range ledger {
		sort.SliceStable(ledger[id], func(i, j int) bool { return ledger[id][i].Sequence < ledger[id][j].Sequence })
	}

	for _, item := range items {
		r.items[item.ID] = item
	}
	r.byKey = byKey
	r.ledger = ledger
	return nil
}

func duplicatePair(productID, locationID string) error {
	return apperror.DuplicateKey("inventory item for product %s at location %s already exists", productID, locationID)
}

func sortItems(items []model.InventoryItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		return a.ID < b.ID
	})
}

// sortTransactions orders by creation time, then item, then sequence so that
// entries of one item keep their ledger order even with equal timestamps.
func sortTransactions(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.InventoryItemID != b.InventoryItemID {
			return a.InventoryItemID < b.InventoryItemID
		}
		return a.Sequence < b.Sequence
	})
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
