package manifest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadFiles reads manifests concurrently and merges their entities in argument order
func LoadFiles(ctx context.Context, paths ...string) (*Manifest, error) {
	manifests := make([]*Manifest, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			m, err := Load(path)
			if err != nil {
				return err
			}
			manifests[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Manifest{}
	for _, m := range manifests {
		merged.Entities = append(merged.Entities, m.Entities...)
	}
	return merged, nil
}
