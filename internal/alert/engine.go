// Package alert derives stock alerts from inventory items. Alerts are always
// recomputed from the item, never patched incrementally.
package alert

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// ExpiryProvider reports lot expiry alerts for an item. Lot tracking lives
// outside the inventory core, so the default provider reports nothing.
type ExpiryProvider interface {
	ExpiringAlerts(ctx context.Context, item *model.InventoryItem) ([]model.Alert, error)
}

type noExpiry struct{}

func (noExpiry) ExpiringAlerts(context.Context, *model.InventoryItem) ([]model.Alert, error) {
	return nil, nil
}

type Filters struct {
	Severity   model.AlertSeverity
	AlertType  model.AlertType
	LocationID string
}

type Engine struct {
	expiry ExpiryProvider
}

func NewEngine(expiry ExpiryProvider) *Engine {
	if expiry == nil {
		expiry = noExpiry{}
	}
	return &Engine{expiry: expiry}
}

// Derive returns the stock-level alerts for one item.
func Derive(item *model.InventoryItem) []model.Alert {
	base := model.Alert{
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		LocationID:      item.LocationID,
		CurrentStock:    item.CurrentStock,
	}

	switch model.DeriveStatus(item.CurrentStock, item.MinStock) {
	case model.StatusOutOfStock:
		a := base
		a.AlertType = model.AlertOutOfStock
		a.Severity = model.SeverityCritical
		a.Message = "out of stock"
		return []model.Alert{a}
	case model.StatusLowStock:
		a := base
		a.AlertType = model.AlertLowStock
		a.Severity = model.SeverityHigh
		a.Threshold = item.MinStock
		a.Message = fmt.Sprintf("stock %d at or below minimum %d", item.CurrentStock, item.MinStock)
		return []model.Alert{a}
	}

	var alerts []model.Alert
	if item.SafeStock > item.MinStock && item.CurrentStock <= item.SafeStock {
		a := base
		a.AlertType = model.AlertBelowSafeStock
		a.Severity = model.SeverityMedium
		a.Threshold = item.SafeStock
		a.Message = fmt.Sprintf("stock %d at or below reorder point %d", item.CurrentStock, item.SafeStock)
		alerts = append(alerts, a)
	}
	if item.MaxStock != nil && item.CurrentStock > *item.MaxStock {
		a := base
		a.AlertType = model.AlertOverStock
		a.Severity = model.SeverityMedium
		a.Threshold = *item.MaxStock
		a.Message = fmt.Sprintf("stock %d above maximum %d", item.CurrentStock, *item.MaxStock)
		alerts = append(alerts, a)
	}
	return alerts
}

// Derive combines the stock-level alerts with the expiry hook.
func (e *Engine) Derive(ctx context.Context, item *model.InventoryItem) ([]model.Alert, error) {
	alerts := Derive(item)
	expiring, err := e.expiry.ExpiringAlerts(ctx, item)
	if err != nil {
		return nil, err
	}
	return append(alerts, expiring...), nil
}

// DeriveAll recomputes alerts for every item, most severe first.
func (e *Engine) DeriveAll(ctx context.Context, items []model.InventoryItem, f Filters) ([]model.Alert, error) {
	out := []model.Alert{}
	for i := range items {
		alerts, err := e.Derive(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, Filter(alerts, f)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) < severityRank(out[j].Severity)
	})
	return out, nil
}

func Filter(alerts []model.Alert, f Filters) []model.Alert {
	out := alerts[:0:0]
	for _, a := range alerts {
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.AlertType != "" && a.AlertType != f.AlertType {
			continue
		}
		if f.LocationID != "" && a.LocationID != f.LocationID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func severityRank(s model.AlertSeverity) int {
	switch s {
	case model.SeverityCritical:
		return 0
	case model.SeverityHigh:
		return 1
	default:
		return 2
	}
}
