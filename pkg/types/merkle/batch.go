// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package merkle

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchRoots computes the roots of independent trees in parallel. The result
// is in the same order as trees.
func (h Hasher) BatchRoots(ctx context.Context, trees [][]Node) ([]Node, error) {
	roots := make([]Node, len(trees))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, nodes := range trees {
		i, nodes := i, nodes
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			roots[i] = h.Root(nodes)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return roots, nil
}
