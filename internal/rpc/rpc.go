// Package rpc carries the glue for services registered without generated
// stubs: payloads travel as google.protobuf.Struct and are mapped to Go DTOs
// through their JSON form.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Method is the shape every hand-registered handler method implements.
type Method func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// Unary adapts a Method into a grpc.MethodHandler, honouring interceptors the
// same way generated code does.
func Unary(fullMethod string, call Method) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Decode maps a Struct request onto v. Malformed payloads are validation errors.
func Decode(req *structpb.Struct, v any) error {
	if req == nil {
		req = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(req)
	if err != nil {
		return apperror.New(apperror.KindValidation, "malformed request", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperror.New(apperror.KindValidation, "malformed request", err)
	}
	return nil
}

// Encode maps v into a Struct response. v must marshal to a JSON object.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reply encodes v, or converts err into a gRPC status error.
func Reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, apperror.GRPCStatus(err)
	}
	out, encErr := Encode(v)
	if encErr != nil {
		return nil, apperror.GRPCStatus(encErr)
	}
	return out, nil
}
