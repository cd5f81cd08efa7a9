package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"github.com/fekuna/omnipos-inventory-service/internal/validation"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "omnipos.inventory.v1.InventoryService"

// InventoryServer is the gRPC surface of the stock tracking core.
type InventoryServer interface {
	CreateInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListInventoryItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BatchDeleteInventoryItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	ApplyOperation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Receive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WriteOff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Adjust(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StockCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BatchApply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	VerifyLedger(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListAlerts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Restore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var _ InventoryServer = (*InventoryHandler)(nil)

type InventoryHandler struct {
	uc      inventory.UseCase
	catalog product.Resolver
	logger  logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, catalog product.Resolver, log logger.ZapLogger) *InventoryHandler {
	if catalog == nil {
		catalog = product.NopResolver{}
	}
	return &InventoryHandler{
		uc:      uc,
		catalog: catalog,
		logger:  log,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

type itemResponse struct {
	Item *model.InventoryItem `json:"item"`
}

type listItemsResponse struct {
	Items    []model.InventoryItem       `json:"items"`
	Total    int                         `json:"total"`
	Products map[string]model.ProductRef `json:"products,omitempty"`
}

type batchResponse struct {
	Results []model.BatchResult `json:"results"`
}

type transactionsResponse struct {
	Transactions []model.Transaction `json:"transactions"`
}

type alertsResponse struct {
	Alerts   []model.Alert               `json:"alerts"`
	Products map[string]model.ProductRef `json:"products,omitempty"`
}

type restoreResponse struct {
	Items        int `json:"items"`
	Transactions int `json:"transactions"`
}

func toAlertFilters(f *dto.AlertFilters) alert.Filters {
	return alert.Filters{
		Severity:   model.AlertSeverity(f.Severity),
		AlertType:  model.AlertType(f.AlertType),
		LocationID: f.LocationID,
	}
}

// products resolves catalog entries for display. A catalog outage degrades the
// response instead of failing it.
func (h *InventoryHandler) products(ctx context.Context, ids []string) map[string]model.ProductRef {
	if len(ids) == 0 {
		return nil
	}
	refs, err := h.catalog.BatchGet(ctx, ids)
	if err != nil {
		h.logger.Warn("failed to resolve products", zap.Int("count", len(ids)), zap.Error(err))
		return nil
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

func (h *InventoryHandler) listItems(ctx context.Context, filters *dto.InventoryFilters) (*listItemsResponse, error) {
	items, total, err := h.uc.ListInventoryItems(ctx, filters)
	if err != nil {
		return nil, err
	}
	ids := product.UniqueIDs(items, func(i model.InventoryItem) string { return i.ProductID })
	return &listItemsResponse{Items: items, Total: total, Products: h.products(ctx, ids)}, nil
}

func (h *InventoryHandler) listAlerts(ctx context.Context, filters *dto.AlertFilters) (*alertsResponse, error) {
	alerts, err := h.uc.ListAlerts(ctx, toAlertFilters(filters))
	if err != nil {
		return nil, err
	}
	ids := product.UniqueIDs(alerts, func(a model.Alert) string { return a.ProductID })
	return &alertsResponse{Alerts: alerts, Products: h.products(ctx, ids)}, nil
}

func (h *InventoryHandler) CreateInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateItemInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	item, err := h.uc.CreateInventoryItem(ctx, &input)
	if err != nil {
		h.logger.Error("failed to create inventory item",
			zap.String("product_id", input.ProductID),
			zap.String("location_id", input.LocationID),
			zap.Error(err),
		)
	}
	return rpc.Reply(itemResponse{Item: item}, err)
}

func (h *InventoryHandler) GetInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return rpc.Reply(nil, err)
	}
	item, err := h.uc.GetInventoryItem(ctx, in.ID)
	return rpc.Reply(itemResponse{Item: item}, err)
}

func (h *InventoryHandler) ListInventoryItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var filters dto.InventoryFilters
	if err := rpc.Decode(req, &filters); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.listItems(ctx, &filters))
}

func (h *InventoryHandler) UpdateInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.UpdateItemInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	item, err := h.uc.UpdateInventoryItem(ctx, &input)
	if err != nil {
		h.logger.Error("failed to update inventory item", zap.String("item_id", input.ID), zap.Error(err))
	}
	return rpc.Reply(itemResponse{Item: item}, err)
}

func (h *InventoryHandler) DeleteInventoryItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(struct{}{}, h.uc.DeleteInventoryItem(ctx, in.ID))
}

func (h *InventoryHandler) BatchDeleteInventoryItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.BatchDeleteInput
	if err := decodeValid(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(batchResponse{Results: h.uc.BatchDeleteInventoryItems(ctx, input.IDs)}, nil)
}

func (h *InventoryHandler) ApplyOperation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.ApplyOperationInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.uc.ApplyOperation(ctx, &input))
}

func (h *InventoryHandler) stockCommand(ctx context.Context, req *structpb.Struct, call stockCall) (*structpb.Struct, error) {
	var input dto.StockInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(call(ctx, &input))
}

func (h *InventoryHandler) Receive(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.stockCommand(ctx, req, h.uc.Receive)
}

func (h *InventoryHandler) Sell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.stockCommand(ctx, req, h.uc.Sell)
}

func (h *InventoryHandler) WriteOff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.stockCommand(ctx, req, h.uc.WriteOff)
}

func (h *InventoryHandler) Adjust(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.stockCommand(ctx, req, h.uc.Adjust)
}

func (h *InventoryHandler) StockCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.StockCountInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.uc.StockCount(ctx, &input))
}

func (h *InventoryHandler) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.TransferInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	res, err := h.uc.Transfer(ctx, &input)
	if err != nil {
		h.logger.Error("transfer failed",
			zap.String("product_id", input.ProductID),
			zap.String("from_location_id", input.FromLocationID),
			zap.String("to_location_id", input.ToLocationID),
			zap.Error(err),
		)
	}
	return rpc.Reply(res, err)
}

func (h *InventoryHandler) BatchApply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.BatchApplyInput
	if err := decodeValid(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(batchResponse{Results: h.uc.BatchApply(ctx, input.Operations)}, nil)
}

func (h *InventoryHandler) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var filters dto.TransactionFilters
	if err := rpc.Decode(req, &filters); err != nil {
		return rpc.Reply(nil, err)
	}
	txns, err := h.uc.ListTransactions(ctx, filters.ItemID, filters.Range())
	return rpc.Reply(transactionsResponse{Transactions: txns}, err)
}

func (h *InventoryHandler) VerifyLedger(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.uc.VerifyLedger(ctx, in.ID))
}

func (h *InventoryHandler) GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var filters dto.StatisticsFilters
	if err := rpc.Decode(req, &filters); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.uc.GetStatistics(ctx, &filters))
}

func (h *InventoryHandler) ListAlerts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var filters dto.AlertFilters
	if err := rpc.Decode(req, &filters); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(h.listAlerts(ctx, &filters))
}

func (h *InventoryHandler) Export(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return rpc.Reply(h.uc.Export(ctx))
}

func (h *InventoryHandler) Restore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var snap model.Snapshot
	if err := rpc.Decode(req, &snap); err != nil {
		return rpc.Reply(nil, err)
	}
	if err := h.uc.Restore(ctx, &snap); err != nil {
		h.logger.Error("restore failed", zap.Error(err))
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(restoreResponse{Items: len(snap.Items), Transactions: len(snap.Transactions)}, nil)
}

func decodeValid(req *structpb.Struct, v any) error {
	if err := rpc.Decode(req, v); err != nil {
		return err
	}
	return validation.Struct(v)
}

func method(name string, call func(InventoryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: rpc.Unary("/"+ServiceName+"/"+name, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return call(srv.(InventoryServer), ctx, req)
		}),
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreateInventoryItem", InventoryServer.CreateInventoryItem),
		method("GetInventoryItem", InventoryServer.GetInventoryItem),
		method("ListInventoryItems", InventoryServer.ListInventoryItems),
		method("UpdateInventoryItem", InventoryServer.UpdateInventoryItem),
		method("DeleteInventoryItem", InventoryServer.DeleteInventoryItem),
		method("BatchDeleteInventoryItems", InventoryServer.BatchDeleteInventoryItems),
		method("ApplyOperation", InventoryServer.ApplyOperation),
		method("Receive", InventoryServer.Receive),
		method("Sell", InventoryServer.Sell),
		method("WriteOff", InventoryServer.WriteOff),
		method("Adjust", InventoryServer.Adjust),
		method("StockCount", InventoryServer.StockCount),
		method("Transfer", InventoryServer.Transfer),
		method("BatchApply", InventoryServer.BatchApply),
		method("ListTransactions", InventoryServer.ListTransactions),
		method("VerifyLedger", InventoryServer.VerifyLedger),
		method("GetStatistics", InventoryServer.GetStatistics),
		method("ListAlerts", InventoryServer.ListAlerts),
		method("Export", InventoryServer.Export),
		method("Restore", InventoryServer.Restore),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/inventory.proto",
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}
