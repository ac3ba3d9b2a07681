package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/MegaGrindStone/skyqa"
	"golang.org/x/sync/errgroup"
)

// Seeder is implemented by stores that can be loaded with objects.
type Seeder interface {
	Upsert(ctx context.Context, obj skyqa.SkyObject) error
}

// Seed validates objects and upserts them into seeder, with at most concurrency writes in flight.
// Nothing is written when an object is invalid or names collide.
func Seed(ctx context.Context, seeder Seeder, objects []skyqa.SkyObject, concurrency int) error {
	seen := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		if err := obj.Validate(); err != nil {
			return fmt.Errorf("invalid object: %w", err)
		}
		key := string(objectKey(obj.Name))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate object name %q", obj.Name)
		}
		seen[key] = struct{}{}
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, obj := range objects {
		eg.Go(func() error {
			if err := seeder.Upsert(ctx, obj); err != nil {
				return fmt.Errorf("failed to upsert %q: %w", obj.Name, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func sortNames(names []string) {
	sort.Strings(names)
}
