package browse

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/compomics/ols-dialog/pkg/model"
)

// DefaultProbeLimit bounds concurrent child lookups during a probe.
const DefaultProbeLimit = 4

// ChildrenFunc fetches the direct children of a term.
type ChildrenFunc func(ctx context.Context, termID string) ([]model.Term, error)

// Probe asks for the children of each ID and reports which have any. The
// first failure cancels the remaining lookups and is returned.
func Probe(ctx context.Context, ids []string, children ChildrenFunc, limit int) (map[string]bool, error) {
	if limit <= 0 {
		limit = DefaultProbeLimit
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		g.Go(func() error {
			terms, err := children(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			result[id] = len(terms) > 0
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyProbe records probe results on the tree.
func (t *Tree) ApplyProbe(result map[string]bool) {
	for id, has := range result {
		t.SetProbe(id, has)
	}
}
