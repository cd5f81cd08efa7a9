package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type InventoryFilters struct {
	Keyword      string `json:"keyword" form:"keyword"` // matches product or location id
	Status       string `json:"status" form:"status"`
	LocationID   string `json:"locationId" form:"locationId"`
	ProductID    string `json:"productId" form:"productId"`
	LowStockOnly bool   `json:"lowStockOnly" form:"lowStockOnly"` // LOW_STOCK or OUT_OF_STOCK
	Page         int    `json:"page" form:"page"`
	PageSize     int    `json:"pageSize" form:"pageSize"`
}

type StatisticsFilters struct {
	LocationID string     `json:"locationId" form:"locationId"`
	From       *time.Time `json:"from" form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `json:"to" form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (f *StatisticsFilters) Range() *model.DateRange {
	if f == nil || (f.From == nil && f.To == nil) {
		return nil
	}
	return &model.DateRange{From: f.From, To: f.To}
}

type OperationResult struct {
	Item        *model.InventoryItem `json:"item"`
	Transaction *model.Transaction   `json:"transaction"`
	Alerts      []model.Alert        `json:"alerts"`
}

type TransferResult struct {
	Reference string           `json:"reference"`
	Source    *OperationResult `json:"source"`
	Target    *OperationResult `json:"target"`
}

// LedgerReport compares an item's stored balance with its replayed ledger.
type LedgerReport struct {
	ItemID           string `json:"itemId"`
	InitialStock     int64  `json:"initialStock"`
	CurrentStock     int64  `json:"currentStock"`
	ReplayedStock    int64  `json:"replayedStock"`
	TransactionCount int    `json:"transactionCount"`
	Consistent       bool   `json:"consistent"`
}

type AlertFilters struct {
	Severity   string `json:"severity" form:"severity"`
	AlertType  string `json:"alertType" form:"alertType"`
	LocationID string `json:"locationId" form:"locationId"`
}

type TransactionFilters struct {
	ItemID string     `json:"itemId" form:"-"`
	From   *time.Time `json:"from" form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To     *time.Time `json:"to" form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (f *TransactionFilters) Range() *model.DateRange {
	if f.From == nil && f.To == nil {
		return nil
	}
	return &model.DateRange{From: f.From, To: f.To}
}
