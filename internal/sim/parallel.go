package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs several scenes concurrently. Each run gets its own
// Simulator from the factory so metrics are never shared.
type Ensemble struct {
	factory func() *Simulator
	limit   int
}

func NewEnsemble(factory func() *Simulator, limit int) *Ensemble {
	return &Ensemble{factory: factory, limit: limit}
}

// Run returns results in scene order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context, scenes []Scene, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(scenes))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, scene := range scenes {
		g.Go(func() error {
			res, err := e.factory().Run(ctx, scene, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
