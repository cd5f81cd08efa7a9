package model

import "github.com/shopspring/decimal"

type Statistics struct {
	TotalItems       int             `json:"totalItems"`
	TotalQuantity    int64           `json:"totalQuantity"`
	TotalValue       decimal.Decimal `json:"totalValue"` // cents
	InStock          int             `json:"inStock"`
	LowStock         int             `json:"lowStock"`
	OutOfStock       int             `json:"outOfStock"`
	BelowSafeStock   int             `json:"belowSafeStock"`
	Inbound          int64           `json:"inbound"`
	Outbound         int64           `json:"outbound"`
	TransactionCount int             `json:"transactionCount"`
}
