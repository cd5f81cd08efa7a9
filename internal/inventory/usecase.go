package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	// Items
	CreateInventoryItem(ctx context.Context, input *dto.CreateItemInput) (*model.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error)
	FindInventoryItem(ctx context.Context, productID, locationID string) (*model.InventoryItem, error)
	ListInventoryItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error)
	UpdateInventoryItem(ctx context.Context, input *dto.UpdateItemInput) (*model.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
	BatchDeleteInventoryItems(ctx context.Context, ids []string) []model.BatchResult

	// Operations
	ApplyOperation(ctx context.Context, input *dto.ApplyOperationInput) (*dto.OperationResult, error)
	Receive(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error)
	Sell(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error)
	WriteOff(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error)
	Adjust(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error)
	StockCount(ctx context.Context, input *dto.StockCountInput) (*dto.OperationResult, error)
	Transfer(ctx context.Context, input *dto.TransferInput) (*dto.TransferResult, error)
	BatchApply(ctx context.Context, inputs []dto.ApplyOperationInput) []model.BatchResult

	// Ledger and derived views
	ListTransactions(ctx context.Context, itemID string, r *model.DateRange) ([]model.Transaction, error)
	VerifyLedger(ctx context.Context, itemID string) (*dto.LedgerReport, error)
	GetStatistics(ctx context.Context, filters *dto.StatisticsFilters) (*model.Statistics, error)
	ListAlerts(ctx context.Context, filters alert.Filters) ([]model.Alert, error)

	// Export
	Export(ctx context.Context) (*model.Snapshot, error)
	Restore(ctx context.Context, snapshot *model.Snapshot) error
}
