package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// DeriveStatus is the single threshold rule for stock health.
func DeriveStatus(currentStock, minStock int64) Status {
	switch {
	case currentStock <= 0:
		return StatusOutOfStock
	case currentStock <= minStock:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

type OperationType string

const (
	OperationStockIn     OperationType = "STOCK_IN"
	OperationStockOut    OperationType = "STOCK_OUT"
	OperationAdjustment  OperationType = "ADJUSTMENT"
	OperationTransferIn  OperationType = "TRANSFER_IN"
	OperationTransferOut OperationType = "TRANSFER_OUT"
)

func (o OperationType) Valid() bool {
	switch o {
	case OperationStockIn, OperationStockOut, OperationAdjustment, OperationTransferIn, OperationTransferOut:
		return true
	}
	return false
}

// Signed reports whether the operation takes a signed quantity. Only
// ADJUSTMENT does; every other type takes an unsigned magnitude.
func (o OperationType) Signed() bool {
	return o == OperationAdjustment
}

// Delta converts a requested quantity into the signed stock change.
func (o OperationType) Delta(quantity int64) int64 {
	switch o {
	case OperationStockOut, OperationTransferOut:
		return -quantity
	default:
		return quantity
	}
}

// Inbound reports whether the operation carries a receiving unit price that
// feeds the weighted average cost.
func (o OperationType) Inbound() bool {
	return o == OperationStockIn || o == OperationTransferIn
}

// InventoryItem is the current-stock record for one product at one location.
// Monetary values are integral cents.
type InventoryItem struct {
	ID           string    `db:"id" json:"id"`
	ProductID    string    `db:"product_id" json:"productId"`
	LocationID   string    `db:"location_id" json:"locationId"`
	InitialStock int64     `db:"initial_stock" json:"initialStock"`
	CurrentStock int64     `db:"current_stock" json:"currentStock"`
	MinStock     int64     `db:"min_stock" json:"minStock"`
	MaxStock     *int64    `db:"max_stock" json:"maxStock,omitempty"`
	SafeStock    int64     `db:"safe_stock" json:"safeStock"`
	AverageCost  int64     `db:"average_cost" json:"averageCost"`
	Status       Status    `db:"-" json:"status"`
	Version      int64     `db:"version" json:"version"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// RefreshStatus recomputes Status from the quantities. Repositories call it on
// every load so the field never drifts from CurrentStock.
func (i *InventoryItem) RefreshStatus() {
	i.Status = DeriveStatus(i.CurrentStock, i.MinStock)
}

// StockValue is CurrentStock × AverageCost in cents. The product of two
// int64 values may not fit an int64, so it is returned as a decimal.
func (i *InventoryItem) StockValue() decimal.Decimal {
	return decimal.NewFromInt(i.CurrentStock).Mul(decimal.NewFromInt(i.AverageCost))
}

// Transaction is one immutable ledger entry. Quantity is always the positive
// magnitude; QuantityChange carries the signed effect on stock.
type Transaction struct {
	ID               string        `db:"id" json:"id"`
	InventoryItemID  string        `db:"inventory_item_id" json:"inventoryItemId"`
	OperationType    OperationType `db:"operation_type" json:"operationType"`
	Quantity         int64         `db:"quantity" json:"quantity"`
	QuantityChange   int64         `db:"quantity_change" json:"quantityChange"`
	QuantityBefore   int64         `db:"quantity_before" json:"quantityBefore"`
	ResultingBalance int64         `db:"resulting_balance" json:"resultingBalance"`
	UnitPrice        *int64        `db:"unit_price" json:"unitPrice,omitempty"`
	Reason           string        `db:"reason" json:"reason"`
	Reference        *string       `db:"reference" json:"reference,omitempty"`
	CreatedBy        *string       `db:"created_by" json:"createdBy,omitempty"`
	Sequence         int64         `db:"sequence" json:"sequence"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
}

// Replay folds the ledger over initialStock and returns the resulting balance.
func Replay(initialStock int64, txns []Transaction) int64 {
	balance := initialStock
	for _, t := range txns {
		balance += t.QuantityChange
	}
	return balance
}

// DateRange bounds a ledger query; nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}
