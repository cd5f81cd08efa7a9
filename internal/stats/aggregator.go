// Package stats rolls up inventory items and an optional ledger window into
// summary figures. Everything here is a pure function of its inputs.
package stats

import "github.com/fekuna/omnipos-inventory-service/internal/model"

func Compute(items []model.InventoryItem, txns []model.Transaction) model.Statistics {
	var s model.Statistics

	for i := range items {
		it := &items[i]
		s.TotalItems++
		s.TotalQuantity += it.CurrentStock
		s.TotalValue = s.TotalValue.Add(it.StockValue())

		switch model.DeriveStatus(it.CurrentStock, it.MinStock) {
		case model.StatusOutOfStock:
			s.OutOfStock++
		case model.StatusLowStock:
			s.LowStock++
		default:
			s.InStock++
		}
		if it.CurrentStock <= it.SafeStock {
			s.BelowSafeStock++
		}
	}

	for _, t := range txns {
		s.TransactionCount++
		if t.QuantityChange > 0 {
			s.Inbound += t.QuantityChange
		} else {
			s.Outbound -= t.QuantityChange
		}
	}

	return s
}
