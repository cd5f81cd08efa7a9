package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// ErrVersionConflict is returned by ApplyTransaction and UpdateMetadata when
// the stored version no longer matches the caller's snapshot.
var ErrVersionConflict = apperror.New(apperror.KindConflict, "inventory item version conflict", nil)

// Repository is the persistence contract for items and their ledger. Find
// methods return (nil, nil) for a missing row.
type Repository interface {
	// Inventory Items
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryItem, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error)
	UpdateMetadata(ctx context.Context, item *model.InventoryItem, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	CountByLocation(ctx context.Context, locationID string) (int, error)

	// ApplyTransaction stores item and appends txn as one unit, provided the
	// stored version still equals expectedVersion. It assigns txn.Sequence.
	ApplyTransaction(ctx context.Context, item *model.InventoryItem, txn *model.Transaction, expectedVersion int64) error

	// Ledger
	ListByItem(ctx context.Context, itemID string, r *model.DateRange) ([]model.Transaction, error)
	ListByRange(ctx context.Context, r *model.DateRange) ([]model.Transaction, error)

	// Snapshot reads every item and the ledger of those items at one point
	// in time. Restore loads a snapshot into an empty store.
	Snapshot(ctx context.Context) ([]model.InventoryItem, []model.Transaction, error)
	Restore(ctx context.Context, items []model.InventoryItem, txns []model.Transaction) error
}

// ReservationChecker reports outstanding reservations held against an item by
// order collaborators.
type ReservationChecker interface {
	HasReservations(ctx context.Context, itemID string) (bool, error)
}

// EventPublisher announces stock changes to downstream consumers.
type EventPublisher interface {
	PublishStockChanged(ctx context.Context, event *model.StockChangedEvent) error
}
