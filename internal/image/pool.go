package image

import (
	"context"

	"github.com/dmorgan81/promobot/internal/log"
	"golang.org/x/sync/errgroup"
)

// SubmitAll submits every request with at most workers in flight and
// returns results in input order. workers <= 1 submits sequentially.
func (d *Dispatcher) SubmitAll(ctx context.Context, reqs []Request, workers int) []Result {
	log.FromContextOrDiscard(ctx).Info("submitting batch", "requests", len(reqs), "workers", max(workers, 1))

	results := make([]Result, len(reqs))
	var group errgroup.Group
	group.SetLimit(max(workers, 1))
	for i, req := range reqs {
		i, req := i, req
		group.Go(func() error {
			artifacts, err := d.Submit(ctx, req)
			results[i] = Result{Request: req, Artifacts: artifacts, Err: err}
			return nil
		})
	}
	_ = group.Wait()
	return results
}
