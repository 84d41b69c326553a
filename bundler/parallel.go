package bundler

import (
	"context"
	"fmt"
	"runtime"

	"github.com/erraggy/oasweave/parser"
	"golang.org/x/sync/errgroup"
)

// BundleAll bundles independent file sets concurrently. Results are returned
// in input order. Each file set is owned by exactly one worker; the first Go
// error (invalid options or cancellation) cancels the remaining work.
func BundleAll(ctx context.Context, sets []*parser.FileSet, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, fs := range sets {
		g.Go(func() error {
			res, err := Bundle(gctx, fs, opts...)
			if err != nil {
				return fmt.Errorf("bundler: file set %d: %w", i, err)
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
