package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/salesdash/salesdash/pkg/tasks"
)

// WarmLocal computes every plan entry in-process with at most concurrency
// sections in flight. It stops at the first failure.
func WarmLocal(ctx context.Context, warmer tasks.Warmer, plan []tasks.WarmPayload, concurrency int) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var warmed atomic.Int64

	for _, payload := range plan {
		g.Go(func() error {
			req, err := payload.Request(warmer.Table())
			if err != nil {
				return fmt.Errorf("%s: %w", payload.UniqueID(), err)
			}

			if err := warmer.Warm(gctx, req); err != nil {
				return fmt.Errorf("%s: %w", payload.UniqueID(), err)
			}

			warmed.Add(1)

			return nil
		})
	}

	err := g.Wait()

	return int(warmed.Load()), err
}
