package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type CreateItemInput struct {
	ProductID    string `json:"productId" validate:"required"`
	LocationID   string `json:"locationId" validate:"required"`
	InitialStock int64  `json:"initialStock" validate:"gte=0"`
	MinStock     int64  `json:"minStock" validate:"gte=0"`
	MaxStock     *int64 `json:"maxStock" validate:"omitempty,gte=0"`
	SafeStock    int64  `json:"safeStock" validate:"gte=0"`
	AverageCost  int64  `json:"averageCost" validate:"gte=0"`
}

// UpdateItemInput carries metadata only. CurrentStock exists so a request
// that tries to set it can be recognised and rejected.
type UpdateItemInput struct {
	ID            string `json:"id" validate:"required"`
	MinStock      *int64 `json:"minStock" validate:"omitempty,gte=0"`
	MaxStock      *int64 `json:"maxStock" validate:"omitempty,gte=0"`
	ClearMaxStock bool   `json:"clearMaxStock"` // removes the max-stock bound
	SafeStock     *int64 `json:"safeStock" validate:"omitempty,gte=0"`
	AverageCost   *int64 `json:"averageCost" validate:"omitempty,gte=0"`
	CurrentStock  *int64 `json:"currentStock,omitempty"`
}

// ApplyOperationInput is one request to the operation processor. Quantity is
// a positive magnitude, except for ADJUSTMENT where it is a signed delta.
type ApplyOperationInput struct {
	ItemID        string              `json:"itemId" validate:"required"`
	OperationType model.OperationType `json:"operationType" validate:"required"`
	Quantity      int64               `json:"quantity" validate:"ne=0"`
	UnitPrice     *int64              `json:"unitPrice" validate:"omitempty,gte=0"`
	Reason        string              `json:"reason" validate:"max=500"`
	Reference     string              `json:"reference" validate:"max=120"`
}

// StockInput feeds the single-purpose commands (receive, sell, write-off,
// adjust); the operation type is implied by the command.
type StockInput struct {
	ItemID    string `json:"itemId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice *int64 `json:"unitPrice"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

type StockCountInput struct {
	ItemID          string `json:"itemId" validate:"required"`
	CountedQuantity int64  `json:"countedQuantity" validate:"gte=0"`
	Reason          string `json:"reason" validate:"max=500"`
}

type TransferInput struct {
	ProductID      string `json:"productId" validate:"required"`
	FromLocationID string `json:"fromLocationId" validate:"required"`
	ToLocationID   string `json:"toLocationId" validate:"required,nefield=FromLocationID"`
	Quantity       int64  `json:"quantity" validate:"gt=0"`
	Reason         string `json:"reason" validate:"max=500"`
	Reference      string `json:"reference" validate:"max=120"`
}

type BatchDeleteInput struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type BatchApplyInput struct {
	Operations []ApplyOperationInput `json:"operations" validate:"required,min=1"`
}
