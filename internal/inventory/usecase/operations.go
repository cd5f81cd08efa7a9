package usecase

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func validateOperation(input *dto.ApplyOperationInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	if !input.OperationType.Valid() {
		return apperror.Validation("unknown operation type %q", input.OperationType)
	}
	if !input.OperationType.Signed() && input.Quantity <= 0 {
		return apperror.Validation("quantity must be a positive integer for %s", input.OperationType)
	}
	if input.Quantity == math.MinInt64 {
		return apperror.Validation("quantity %d is out of range", input.Quantity)
	}
	return nil
}

// planner builds the operation from the item as loaded under its lock.
type planner func(item *model.InventoryItem) (*dto.ApplyOperationInput, error)

// ApplyOperation is the only path that changes currentStock.
func (uc *inventoryUseCase) ApplyOperation(ctx context.Context, input *dto.ApplyOperationInput) (*dto.OperationResult, error) {
	if err := validateOperation(input); err != nil {
		return nil, err
	}
	return uc.apply(ctx, input.ItemID, func(*model.InventoryItem) (*dto.ApplyOperationInput, error) {
		return input, nil
	})
}

func (uc *inventoryUseCase) apply(ctx context.Context, itemID string, plan planner) (result *dto.OperationResult, err error) {
	ctx, span := uc.startSpan(ctx, "inventory.ApplyOperation", attribute.String("inventory.item_id", itemID))
	defer func() { endSpan(span, err) }()

	unlock, err := uc.locker.Lock(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		item *model.InventoryItem
		txn  *model.Transaction
	)
	for attempt := 1; ; attempt++ {
		item, txn, err = uc.applyOnce(ctx, itemID, plan)
		if err == nil {
			break
		}
		if !errors.Is(err, inventory.ErrVersionConflict) {
			return nil, err
		}
		if attempt == maxApplyAttempts {
			return nil, apperror.Conflict("inventory item %s was modified concurrently, retries exhausted", itemID)
		}
		uc.logger.Warn("version conflict, retrying against fresh balance",
			zap.String("item_id", itemID),
			zap.Int("attempt", attempt),
		)
	}

	span.SetAttributes(
		attribute.String("inventory.operation", string(txn.OperationType)),
		attribute.Int64("inventory.quantity_change", txn.QuantityChange),
	)
	uc.logger.Info("inventory operation applied",
		zap.String("item_id", item.ID),
		zap.String("operation", string(txn.OperationType)),
		zap.Int64("quantity", txn.Quantity),
		zap.Int64("resulting_balance", txn.ResultingBalance),
	)

	alerts, alertErr := uc.alerts.Derive(ctx, item)
	if alertErr != nil {
		uc.logger.Warn("failed to derive alerts", zap.String("item_id", item.ID), zap.Error(alertErr))
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	uc.publish(ctx, item, txn, alerts)

	return &dto.OperationResult{Item: item, Transaction: txn, Alerts: alerts}, nil
}

func (uc *inventoryUseCase) applyOnce(ctx context.Context, itemID string, plan planner) (*model.InventoryItem, *model.Transaction, error) {
	item, err := uc.GetInventoryItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	input, err := plan(item)
	if err != nil {
		return nil, nil, err
	}

	before := item.CurrentStock
	delta := input.OperationType.Delta(input.Quantity)
	if delta > 0 && before > math.MaxInt64-delta {
		return nil, nil, apperror.Validation("quantity %d would overflow the stock of item %s (%d held)", delta, item.ID, before)
	}
	newStock := before + delta
	if newStock < 0 {
		return nil, nil, apperror.InsufficientStock("insufficient stock for item %s: %d available, %d requested", item.ID, before, -delta)
	}

	if input.OperationType.Inbound() && input.UnitPrice != nil {
		item.AverageCost = weightedAverageCost(before, item.AverageCost, input.Quantity, *input.UnitPrice)
	}

	expected := item.Version
	now := uc.now()
	item.CurrentStock = newStock
	item.Version++
	item.UpdatedAt = now
	item.RefreshStatus()

	txn := &model.Transaction{
		ID:               uuid.New().String(),
		InventoryItemID:  item.ID,
		OperationType:    input.OperationType,
		Quantity:         abs(input.Quantity),
		QuantityChange:   delta,
		QuantityBefore:   before,
		ResultingBalance: newStock,
		UnitPrice:        input.UnitPrice,
		Reason:           input.Reason,
		Reference:        optional(input.Reference),
		CreatedBy:        optional(auth.GetOperatorID(ctx)),
		CreatedAt:        now,
	}

	if err := uc.repo.ApplyTransaction(ctx, item, txn, expected); err != nil {
		return nil, nil, err
	}
	return item, txn, nil
}

// weightedAverageCost blends received units into the running average,
// rounding half up to whole cents.
func weightedAverageCost(stock, avgCost, received, unitPrice int64) int64 {
	total := stock + received
	if total <= 0 {
		return unitPrice
	}
	value := decimal.NewFromInt(stock).Mul(decimal.NewFromInt(avgCost)).
		Add(decimal.NewFromInt(received).Mul(decimal.NewFromInt(unitPrice)))
	return value.Div(decimal.NewFromInt(total)).Round(0).IntPart()
}

func (uc *inventoryUseCase) publish(ctx context.Context, item *model.InventoryItem, txn *model.Transaction, alerts []model.Alert) {
	event := &model.StockChangedEvent{
		EventID:   uuid.New().String(),
		EventType: model.EventStockChanged,
		Item:      *item,
		Txn:       *txn,
		Alerts:    alerts,
		Timestamp: txn.CreatedAt,
	}
	if err := uc.publisher.PublishStockChanged(ctx, event); err != nil {
		uc.logger.Error("failed to publish stock changed event",
			zap.String("item_id", item.ID),
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
	}
}

func (uc *inventoryUseCase) Receive(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error) {
	return uc.ApplyOperation(ctx, stockOperation(input, model.OperationStockIn, input.Reason))
}

func (uc *inventoryUseCase) Sell(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error) {
	return uc.ApplyOperation(ctx, stockOperation(input, model.OperationStockOut, input.Reason))
}

func (uc *inventoryUseCase) WriteOff(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error) {
	reason := "write-off"
	if r := strings.TrimSpace(input.Reason); r != "" {
		reason += ": " + r
	}
	op := stockOperation(input, model.OperationStockOut, reason)
	op.UnitPrice = nil
	return uc.ApplyOperation(ctx, op)
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.StockInput) (*dto.OperationResult, error) {
	op := stockOperation(input, model.OperationAdjustment, input.Reason)
	op.UnitPrice = nil
	return uc.ApplyOperation(ctx, op)
}

func stockOperation(input *dto.StockInput, op model.OperationType, reason string) *dto.ApplyOperationInput {
	return &dto.ApplyOperationInput{
		ItemID:        input.ItemID,
		OperationType: op,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		Reason:        reason,
		Reference:     input.Reference,
	}
}

// StockCount records a physical count as an ADJUSTMENT of the difference
// against the balance held under the item lock.
func (uc *inventoryUseCase) StockCount(ctx context.Context, input *dto.StockCountInput) (*dto.OperationResult, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	reason := "stock count"
	if r := strings.TrimSpace(input.Reason); r != "" {
		reason += ": " + r
	}
	return uc.apply(ctx, input.ItemID, func(item *model.InventoryItem) (*dto.ApplyOperationInput, error) {
		delta := input.CountedQuantity - item.CurrentStock
		if delta == 0 {
			return nil, apperror.Validation("counted quantity %d matches current stock, nothing to record", input.CountedQuantity)
		}
		return &dto.ApplyOperationInput{
			ItemID:        item.ID,
			OperationType: model.OperationAdjustment,
			Quantity:      delta,
			Reason:        reason,
		}, nil
	})
}

// Transfer moves stock between two locations of the same product as a
// TRANSFER_OUT followed by a TRANSFER_IN sharing one reference. A failed
// inbound leg is compensated on the source.
func (uc *inventoryUseCase) Transfer(ctx context.Context, input *dto.TransferInput) (result *dto.TransferResult, err error) {
	ctx, span := uc.startSpan(ctx, "inventory.Transfer",
		attribute.String("inventory.product_id", input.ProductID),
		attribute.String("inventory.from_location", input.FromLocationID),
		attribute.String("inventory.to_location", input.ToLocationID),
		attribute.Int64("inventory.quantity", input.Quantity),
	)
	defer func() { endSpan(span, err) }()

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	source, err := uc.FindInventoryItem(ctx, input.ProductID, input.FromLocationID)
	if err != nil {
		return nil, err
	}
	// a missing target is created only once the outbound leg has succeeded,
	// so a rejected transfer leaves no item behind
	target, err := uc.repo.FindByProductLocation(ctx, input.ProductID, input.ToLocationID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		if _, err := uc.activeLocation(ctx, input.ToLocationID); err != nil {
			return nil, err
		}
	}

	ref := input.Reference
	if ref == "" {
		ref = "transfer:" + uuid.New().String()
	}
	reason := input.Reason
	if reason == "" {
		reason = "transfer"
	}

	out, err := uc.ApplyOperation(ctx, &dto.ApplyOperationInput{
		ItemID:        source.ID,
		OperationType: model.OperationTransferOut,
		Quantity:      input.Quantity,
		Reason:        reason,
		Reference:     ref,
	})
	if err != nil {
		return nil, err
	}

	if target == nil {
		target, err = uc.ensureTransferTarget(ctx, out.Item, input.ToLocationID)
		if err != nil {
			uc.compensateTransfer(ctx, source.ID, input.Quantity, ref, err)
			return nil, err
		}
	}

	cost := out.Item.AverageCost
	in, err := uc.ApplyOperation(ctx, &dto.ApplyOperationInput{
		ItemID:        target.ID,
		OperationType: model.OperationTransferIn,
		Quantity:      input.Quantity,
		UnitPrice:     &cost,
		Reason:        reason,
		Reference:     ref,
	})
	if err != nil {
		uc.compensateTransfer(ctx, source.ID, input.Quantity, ref, err)
		return nil, err
	}

	return &dto.TransferResult{Reference: ref, Source: out, Target: in}, nil
}

func (uc *inventoryUseCase) ensureTransferTarget(ctx context.Context, source *model.InventoryItem, toLocationID string) (*model.InventoryItem, error) {
	target, err := uc.repo.FindByProductLocation(ctx, source.ProductID, toLocationID)
	if err != nil || target != nil {
		return target, err
	}

	target, err = uc.CreateInventoryItem(ctx, &dto.CreateItemInput{
		ProductID:  source.ProductID,
		LocationID: toLocationID,
		MinStock:   source.MinStock,
		MaxStock:   source.MaxStock,
		SafeStock:  source.SafeStock,
	})
	if errors.Is(err, apperror.ErrDuplicateKey) {
		// created concurrently by another transfer
		return uc.FindInventoryItem(ctx, source.ProductID, toLocationID)
	}
	return target, err
}

func (uc *inventoryUseCase) compensateTransfer(ctx context.Context, sourceID string, quantity int64, ref string, cause error) {
	// the caller's ctx may be what failed the inbound leg
	ctx = context.WithoutCancel(ctx)
	_, err := uc.ApplyOperation(ctx, &dto.ApplyOperationInput{
		ItemID:        sourceID,
		OperationType: model.OperationTransferIn,
		Quantity:      quantity,
		Reason:        "transfer compensation",
		Reference:     ref,
	})
	if err != nil {
		uc.logger.Error("transfer compensation failed, source ledger needs manual correction",
			zap.String("item_id", sourceID),
			zap.String("reference", ref),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	uc.logger.Warn("transfer inbound leg failed, source restored",
		zap.String("item_id", sourceID),
		zap.String("reference", ref),
		zap.Error(cause),
	)
}

// BatchApply runs every operation independently and reports each outcome.
func (uc *inventoryUseCase) BatchApply(ctx context.Context, inputs []dto.ApplyOperationInput) []model.BatchResult {
	results := make([]model.BatchResult, 0, len(inputs))
	for i := range inputs {
		_, err := uc.ApplyOperation(ctx, &inputs[i])
		results = append(results, batchResult(inputs[i].ItemID, err))
	}
	return results
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
