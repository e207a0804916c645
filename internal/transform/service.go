package transform

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"panelcomp/internal/logging"
	"panelcomp/unit"
)

// ServiceName is the fully-qualified gRPC service of remote units.
const ServiceName = "panelcomp.v1.UnitService"

const (
	describeMethod = "/" + ServiceName + "/Describe"
	applyMethod    = "/" + ServiceName + "/Apply"
)

var ErrBadMessage = errors.New("transform: malformed message")

// UnitServer is the server side of UnitService.
//
//	Describe {unit}          -> {unit, kind}
//	Apply    {unit, fit, x}  -> {rows}
type UnitServer interface {
	Describe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Apply(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var UnitServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UnitServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Describe", Handler: describeHandler},
		{MethodName: "Apply", Handler: applyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/proto/v1/unit.proto",
}

func RegisterUnitServer(s grpc.ServiceRegistrar, srv UnitServer) {
	s.RegisterService(&UnitServiceDesc, srv)
}

func describeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UnitServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: describeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UnitServer).Describe(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func applyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UnitServer).Apply(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: applyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UnitServer).Apply(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// UnitService serves the units of the unit registry. It keeps no state:
// every Apply works on a fresh unit that is dropped when the call returns.
type UnitService struct{}

func NewUnitService() *UnitService { return &UnitService{} }

func (s *UnitService) Describe(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "unit")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	u, err := unit.New(name)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return structpb.NewStruct(map[string]any{
		"unit": name,
		"kind": u.Kind().String(),
	})
}

func (s *UnitService) Apply(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "unit")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	fit, err := matrixField(req, "fit")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	x, err := matrixField(req, "x")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	u, err := unit.New(name)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := u.Fit(fit); err != nil {
		logging.For("unit_service").Debug("fit failed", "unit", name, "err", err)
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	out, err := u.Transform(x)
	if err != nil {
		logging.For("unit_service").Debug("transform failed", "unit", name, "err", err)
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"rows": encodeMatrix(out)}}, nil
}
