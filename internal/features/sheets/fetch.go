package sheets

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FetchAll fetches every ref concurrently and returns the rows in the order of refs.
// The first failure cancels the remaining fetches and is returned as is.
func FetchAll(ctx context.Context, reader Reader, refs []RangeRef) ([][]RawRow, error) {
	results := make([][]RawRow, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			rows, err := reader.FetchRange(gctx, ref)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
