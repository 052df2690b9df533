package collate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll processes dirs with at most Options.Parallel directories in flight.
// A failed directory does not stop the others. Outcomes are index-aligned
// with dirs.
func (c *Collator) RunAll(ctx context.Context, dirs []string) []Outcome {
	outcomes := make([]Outcome, len(dirs))
	var g errgroup.Group
	g.SetLimit(c.opts.Parallel)
	for i, dir := range dirs {
		g.Go(func() error {
			outcomes[i] = c.Run(ctx, dir)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
