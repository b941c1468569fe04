package notify

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// FanOut runs per-recipient work with bounded concurrency, paced by a shared token bucket.
type FanOut struct {
	limit   int
	limiter *rate.Limiter
}

// NewFanOut allows maxConcurrency sends in flight at perSecond sends per second. A
// non-positive perSecond disables pacing.
func NewFanOut(maxConcurrency int, perSecond float64, burst int) *FanOut {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if burst < 1 {
		burst = 1
	}
	r := rate.Inf
	if perSecond > 0 {
		r = rate.Limit(perSecond)
	}
	return &FanOut{limit: maxConcurrency, limiter: rate.NewLimiter(r, burst)}
}

// Run calls fn for every index in [0, n) and waits for all of them. Once started the calls are
// not cancelled by ctx, so every recipient runs to completion or failure.
func (f *FanOut) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			// Wait only fails for a burst below one, which NewFanOut prevents.
			_ = f.limiter.Wait(ctx)
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
