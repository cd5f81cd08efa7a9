package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	"github.com/fekuna/omnipos-inventory-service/internal/lock"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stats"
	"github.com/fekuna/omnipos-inventory-service/internal/tracing"
	"github.com/fekuna/omnipos-inventory-service/internal/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxApplyAttempts bounds optimistic retries after a version conflict.
const maxApplyAttempts = 3

type inventoryUseCase struct {
	repo         inventory.Repository
	locations    location.Repository
	locker       lock.Locker
	alerts       *alert.Engine
	publisher    inventory.EventPublisher
	reservations inventory.ReservationChecker
	tracer       trace.Tracer
	now          func() time.Time
	logger       logger.ZapLogger
}

type Option func(*inventoryUseCase)

func WithPublisher(p inventory.EventPublisher) Option {
	return func(uc *inventoryUseCase) { uc.publisher = p }
}

func WithReservationChecker(c inventory.ReservationChecker) Option {
	return func(uc *inventoryUseCase) { uc.reservations = c }
}

func WithAlertEngine(e *alert.Engine) Option {
	return func(uc *inventoryUseCase) { uc.alerts = e }
}

func WithTracer(t trace.Tracer) Option {
	return func(uc *inventoryUseCase) { uc.tracer = t }
}

func WithClock(now func() time.Time) Option {
	return func(uc *inventoryUseCase) { uc.now = now }
}

func NewInventoryUseCase(repo inventory.Repository, locations location.Repository, locker lock.Locker, log logger.ZapLogger, opts ...Option) inventory.UseCase {
	uc := &inventoryUseCase{
		repo:         repo,
		locations:    locations,
		locker:       locker,
		alerts:       alert.NewEngine(nil),
		publisher:    nopPublisher{},
		reservations: noReservations{},
		tracer:       tracing.Tracer(),
		now:          func() time.Time { return time.Now().UTC() },
		logger:       log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type nopPublisher struct{}

func (nopPublisher) PublishStockChanged(context.Context, *model.StockChangedEvent) error { return nil }

type noReservations struct{}

func (noReservations) HasReservations(context.Context, string) (bool, error) { return false, nil }

func (uc *inventoryUseCase) CreateInventoryItem(ctx context.Context, input *dto.CreateItemInput) (*model.InventoryItem, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.MaxStock != nil && *input.MaxStock < input.MinStock {
		return nil, apperror.Validation("maxStock %d must be >= minStock %d", *input.MaxStock, input.MinStock)
	}

	if _, err := uc.activeLocation(ctx, input.LocationID); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByProductLocation(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.DuplicateKey("inventory item for product %s at location %s already exists", input.ProductID, input.LocationID)
	}

	now := uc.now()
	item := &model.InventoryItem{
		ID:           uuid.New().String(),
		ProductID:    input.ProductID,
		LocationID:   input.LocationID,
		InitialStock: input.InitialStock,
		CurrentStock: input.InitialStock,
		MinStock:     input.MinStock,
		MaxStock:     input.MaxStock,
		SafeStock:    input.SafeStock,
		AverageCost:  input.AverageCost,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	item.RefreshStatus()

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	uc.logger.Info("inventory item created",
		zap.String("item_id", item.ID),
		zap.String("product_id", item.ProductID),
		zap.String("location_id", item.LocationID),
		zap.Int64("initial_stock", item.InitialStock),
	)
	return item, nil
}

// activeLocation resolves a location that may receive new inventory items.
func (uc *inventoryUseCase) activeLocation(ctx context.Context, id string) (*model.Location, error) {
	loc, err := uc.locations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperror.NotFound("location %s not found", id)
	}
	if !loc.IsActive {
		return nil, apperror.Validation("location %s is inactive", loc.Code)
	}
	return loc, nil
}

func (uc *inventoryUseCase) GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("inventory item %s not found", id)
	}
	return item, nil
}

func (uc *inventoryUseCase) FindInventoryItem(ctx context.Context, productID, locationID string) (*model.InventoryItem, error) {
	item, err := uc.repo.FindByProductLocation(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("no inventory item for product %s at location %s", productID, locationID)
	}
	return item, nil
}

func (uc *inventoryUseCase) ListInventoryItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error) {
	if filters == nil {
		filters = &dto.InventoryFilters{}
	}
	if filters.Status != "" && !model.Status(filters.Status).Valid() {
		return nil, 0, apperror.Validation("unknown status %q", filters.Status)
	}
	if filters.Page < 0 || filters.PageSize < 0 {
		return nil, 0, apperror.Validation("page and pageSize must be >= 0")
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *inventoryUseCase) UpdateInventoryItem(ctx context.Context, input *dto.UpdateItemInput) (*model.InventoryItem, error) {
	if input.CurrentStock != nil {
		return nil, apperror.InvalidOperation("currentStock can only change through stock operations")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.ClearMaxStock && input.MaxStock != nil {
		return nil, apperror.Validation("maxStock and clearMaxStock are mutually exclusive")
	}

	unlock, err := uc.locker.Lock(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	item, err := uc.GetInventoryItem(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.MinStock != nil {
		item.MinStock = *input.MinStock
	}
	switch {
	case input.ClearMaxStock:
		item.MaxStock = nil
	case input.MaxStock != nil:
		item.MaxStock = input.MaxStock
	}
	if input.SafeStock != nil {
		item.SafeStock = *input.SafeStock
	}
	if input.AverageCost != nil {
		item.AverageCost = *input.AverageCost
	}
	if item.MaxStock != nil && *item.MaxStock < item.MinStock {
		return nil, apperror.Validation("maxStock %d must be >= minStock %d", *item.MaxStock, item.MinStock)
	}

	expected := item.Version
	item.Version++
	item.UpdatedAt = uc.now()
	item.RefreshStatus()

	if err := uc.repo.UpdateMetadata(ctx, item, expected); err != nil {
		if errors.Is(err, inventory.ErrVersionConflict) {
			return nil, apperror.Conflict("inventory item %s was modified concurrently", item.ID)
		}
		return nil, err
	}
	return item, nil
}

func (uc *inventoryUseCase) DeleteInventoryItem(ctx context.Context, id string) error {
	unlock, err := uc.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := uc.GetInventoryItem(ctx, id); err != nil {
		return err
	}

	reserved, err := uc.reservations.HasReservations(ctx, id)
	if err != nil {
		return err
	}
	if reserved {
		return apperror.Conflict("inventory item %s has outstanding reservations", id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("inventory item deleted", zap.String("item_id", id))
	return nil
}

func (uc *inventoryUseCase) BatchDeleteInventoryItems(ctx context.Context, ids []string) []model.BatchResult {
	results := make([]model.BatchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, batchResult(id, uc.DeleteInventoryItem(ctx, id)))
	}
	return results
}

func batchResult(id string, err error) model.BatchResult {
	if err == nil {
		return model.BatchResult{ID: id, Success: true}
	}
	return model.BatchResult{
		ID:      id,
		Success: false,
		Error: &model.BatchError{
			Code:    string(apperror.KindOf(err)),
			Message: apperror.MessageOf(err),
		},
	}
}

func (uc *inventoryUseCase) ListTransactions(ctx context.Context, itemID string, r *model.DateRange) ([]model.Transaction, error) {
	if r != nil && r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, apperror.Validation("date range end precedes its start")
	}
	txns, err := uc.repo.ListByItem(ctx, itemID, r)
	if err != nil {
		return nil, err
	}
	// the ledger outlives a deleted item, so only an unknown item with no
	// history at all is missing
	if len(txns) == 0 {
		if _, err := uc.GetInventoryItem(ctx, itemID); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

func (uc *inventoryUseCase) VerifyLedger(ctx context.Context, itemID string) (*dto.LedgerReport, error) {
	item, err := uc.GetInventoryItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	txns, err := uc.repo.ListByItem(ctx, itemID, nil)
	if err != nil {
		return nil, err
	}

	replayed := model.Replay(item.InitialStock, txns)
	report := &dto.LedgerReport{
		ItemID:           item.ID,
		InitialStock:     item.InitialStock,
		CurrentStock:     item.CurrentStock,
		ReplayedStock:    replayed,
		TransactionCount: len(txns),
		Consistent:       replayed == item.CurrentStock,
	}
	if !report.Consistent {
		uc.logger.Error("ledger drift detected",
			zap.String("item_id", item.ID),
			zap.Int64("current_stock", item.CurrentStock),
			zap.Int64("replayed_stock", replayed),
		)
	}
	return report, nil
}

func (uc *inventoryUseCase) GetStatistics(ctx context.Context, filters *dto.StatisticsFilters) (*model.Statistics, error) {
	if filters == nil {
		filters = &dto.StatisticsFilters{}
	}
	items, _, err := uc.repo.FindAll(ctx, &dto.InventoryFilters{LocationID: filters.LocationID})
	if err != nil {
		return nil, err
	}
	txns, err := uc.repo.ListByRange(ctx, filters.Range())
	if err != nil {
		return nil, err
	}

	// ledger figures cover the same items as the stock figures: rows retained
	// from deleted items never count, with or without a location filter
	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}
	scoped := txns[:0:0]
	for _, t := range txns {
		if _, ok := ids[t.InventoryItemID]; ok {
			scoped = append(scoped, t)
		}
	}
	txns = scoped

	s := stats.Compute(items, txns)
	return &s, nil
}

func (uc *inventoryUseCase) ListAlerts(ctx context.Context, filters alert.Filters) ([]model.Alert, error) {
	items, _, err := uc.repo.FindAll(ctx, &dto.InventoryFilters{LocationID: filters.LocationID})
	if err != nil {
		return nil, err
	}
	return uc.alerts.DeriveAll(ctx, items, filters)
}

func (uc *inventoryUseCase) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return uc.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprint(apperror.KindOf(err)))
	}
	span.End()
}
