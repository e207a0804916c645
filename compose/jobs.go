package compose

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// normalizeJobs follows the scikit convention: 0 means one job, -1 all
// CPUs, -2 all but one, and so on, never below one.
func normalizeJobs(n int) int {
	if n == 0 {
		return 1
	}
	if n < 0 {
		n = runtime.NumCPU() + 1 + n
	}
	return max(n, 1)
}

// fanOut runs task for 0..n-1 with at most jobs in flight. Tasks own their
// slot i and write results there, so reassembly order never depends on
// completion order. The first error cancels the rest.
func fanOut(ctx context.Context, jobs, n int, task func(ctx context.Context, i int) error) error {
	if jobs <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := task(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	return g.Wait()
}
