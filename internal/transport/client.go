package transport

import (
	"context"
	"fmt"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"panelcomp/internal/transform"
)

func Dial(port int) (*transform.GRPCClient, error) {
	return transform.NewGRPCClient(fmt.Sprintf("localhost:%d", port))
}

// WaitHealthy polls the health service until UnitService reports SERVING
// or ctx ends.
func WaitHealthy(ctx context.Context, c *transform.GRPCClient, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		st, err := c.Health(ctx)
		if err == nil && st == healthpb.HealthCheckResponse_SERVING {
			return nil
		}
		select {
		case <-ctx.Done():
			if err == nil {
				err = fmt.Errorf("status %v", st)
			}
			return fmt.Errorf("transport: not healthy: %w (last: %v)", ctx.Err(), err)
		case <-t.C:
		}
	}
}
