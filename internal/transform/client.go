package transform

// Client wraps a unit provider (over gRPC or in-process) and exposes a uniform API.
// The engine can swap transport implementations behind this interface.
import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"panelcomp/unit"
)

type Client interface {
	Describe(ctx context.Context, name string) (unit.Kind, error)
	Apply(ctx context.Context, name string, fit, x *mat.Dense) (*mat.Dense, error)
	Close() error
}

func describeRequest(name string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{"unit": structpb.NewStringValue(name)}}
}

func applyRequest(name string, fit, x *mat.Dense) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"unit": structpb.NewStringValue(name),
		"fit":  encodeMatrix(fit),
		"x":    encodeMatrix(x),
	}}
}

func describeKind(resp *structpb.Struct) (unit.Kind, error) {
	s, err := stringField(resp, "kind")
	if err != nil {
		return 0, err
	}
	return unit.ParseKind(s)
}

// GRPCClient calls a UnitService over gRPC.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient creates a lazy connection to target; nothing is dialled
// until the first call. Without options the connection is insecure.
func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

func (c *GRPCClient) Describe(ctx context.Context, name string) (unit.Kind, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, describeMethod, describeRequest(name), resp); err != nil {
		return 0, fmt.Errorf("transform: describe %q: %w", name, err)
	}
	return describeKind(resp)
}

func (c *GRPCClient) Apply(ctx context.Context, name string, fit, x *mat.Dense) (*mat.Dense, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, applyMethod, applyRequest(name, fit, x), resp); err != nil {
		return nil, fmt.Errorf("transform: apply %q: %w", name, err)
	}
	return matrixField(resp, "rows")
}

// Health asks the standard health service about UnitService.
func (c *GRPCClient) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// InProcessClient adapts a UnitServer compiled into the engine. Requests go
// through the same message encoding as the gRPC path.
type InProcessClient struct {
	impl UnitServer
}

func NewInProcessClient(impl UnitServer) *InProcessClient { return &InProcessClient{impl: impl} }

func (c *InProcessClient) Describe(ctx context.Context, name string) (unit.Kind, error) {
	resp, err := c.impl.Describe(ctx, describeRequest(name))
	if err != nil {
		return 0, fmt.Errorf("transform: describe %q: %w", name, err)
	}
	return describeKind(resp)
}

func (c *InProcessClient) Apply(ctx context.Context, name string, fit, x *mat.Dense) (*mat.Dense, error) {
	resp, err := c.impl.Apply(ctx, applyRequest(name, fit, x))
	if err != nil {
		return nil, fmt.Errorf("transform: apply %q: %w", name, err)
	}
	return matrixField(resp, "rows")
}

func (c *InProcessClient) Close() error { return nil }
