package usecase

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Export returns a point-in-time snapshot: every exported item reflects
// exactly the transactions exported with it.
func (uc *inventoryUseCase) Export(ctx context.Context) (snap *model.Snapshot, err error) {
	ctx, span := uc.startSpan(ctx, "inventory.Export")
	defer func() { endSpan(span, err) }()

	items, txns, err := uc.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("inventory.items", len(items)),
		attribute.Int("inventory.transactions", len(txns)),
	)

	return &model.Snapshot{
		Type:         model.ExportType,
		GeneratedAt:  uc.now(),
		Items:        items,
		Transactions: txns,
	}, nil
}

// Restore loads a snapshot into an empty store after checking that every
// item's ledger replays to its current stock.
func (uc *inventoryUseCase) Restore(ctx context.Context, snap *model.Snapshot) (err error) {
	ctx, span := uc.startSpan(ctx, "inventory.Restore")
	defer func() { endSpan(span, err) }()

	if snap == nil || snap.Type != model.ExportType {
		return apperror.Validation("not an inventory export")
	}

	ledgers := make(map[string][]model.Transaction, len(snap.Items))
	items := make(map[string]*model.InventoryItem, len(snap.Items))
	for i := range snap.Items {
		it := &snap.Items[i]
		if _, dup := items[it.ID]; dup {
			return apperror.Validation("item %s appears twice in the export", it.ID)
		}
		if it.CurrentStock < 0 {
			return apperror.Validation("item %s has negative stock", it.ID)
		}
		items[it.ID] = it
	}

	seen := make(map[string]struct{}, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if _, ok := items[t.InventoryItemID]; !ok {
			return apperror.Validation("transaction %s references unknown item %s", t.ID, t.InventoryItemID)
		}
		if _, dup := seen[t.ID]; dup {
			return apperror.Validation("transaction %s appears twice in the export", t.ID)
		}
		seen[t.ID] = struct{}{}
		ledgers[t.InventoryItemID] = append(ledgers[t.InventoryItemID], t)
	}

	for id, it := range items {
		if replayed := model.Replay(it.InitialStock, ledgers[id]); replayed != it.CurrentStock {
			return apperror.Validation("item %s ledger replays to %d but current stock is %d", id, replayed, it.CurrentStock)
		}
		it.RefreshStatus()
	}

	if err := uc.repo.Restore(ctx, snap.Items, snap.Transactions); err != nil {
		return err
	}
	uc.logger.Info("inventory restored from export",
		zap.Int("items", len(snap.Items)),
		zap.Int("transactions", len(snap.Transactions)),
	)
	return nil
}
