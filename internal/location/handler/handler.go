package handler

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/location"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "omnipos.inventory.v1.LocationService"

// LocationServer is the gRPC surface of the location registry.
type LocationServer interface {
	CreateLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListLocations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var _ LocationServer = (*LocationHandler)(nil)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{
		uc:     uc,
		logger: log,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

type locationResponse struct {
	Location *model.Location `json:"location"`
}

type listResponse struct {
	Locations []model.Location `json:"locations"`
	Total     int              `json:"total"`
}

func (h *LocationHandler) CreateLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateLocationInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	loc, err := h.uc.CreateLocation(ctx, &input)
	if err != nil {
		h.logger.Error("failed to create location", zap.Error(err))
	}
	return rpc.Reply(locationResponse{Location: loc}, err)
}

func (h *LocationHandler) GetLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return rpc.Reply(nil, err)
	}
	loc, err := h.uc.GetLocation(ctx, in.ID)
	return rpc.Reply(locationResponse{Location: loc}, err)
}

func (h *LocationHandler) ListLocations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var filters dto.LocationFilters
	if err := rpc.Decode(req, &filters); err != nil {
		return rpc.Reply(nil, err)
	}
	locs, total, err := h.uc.ListLocations(ctx, &filters)
	return rpc.Reply(listResponse{Locations: locs, Total: total}, err)
}

func (h *LocationHandler) UpdateLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.UpdateLocationInput
	if err := rpc.Decode(req, &input); err != nil {
		return rpc.Reply(nil, err)
	}
	loc, err := h.uc.UpdateLocation(ctx, &input)
	if err != nil {
		h.logger.Error("failed to update location", zap.String("location_id", input.ID), zap.Error(err))
	}
	return rpc.Reply(locationResponse{Location: loc}, err)
}

func (h *LocationHandler) DeleteLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return rpc.Reply(nil, err)
	}
	return rpc.Reply(struct{}{}, h.uc.DeleteLocation(ctx, in.ID))
}

func method(name string, call func(LocationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: rpc.Unary("/"+ServiceName+"/"+name, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			return call(srv.(LocationServer), ctx, req)
		}),
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LocationServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreateLocation", LocationServer.CreateLocation),
		method("GetLocation", LocationServer.GetLocation),
		method("ListLocations", LocationServer.ListLocations),
		method("UpdateLocation", LocationServer.UpdateLocation),
		method("DeleteLocation", LocationServer.DeleteLocation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/location.proto",
}

func RegisterLocationServer(s grpc.ServiceRegistrar, srv LocationServer) {
	s.RegisterService(&ServiceDesc, srv)
}
