// Package orphans finds stored derivatives that no product references any
// more, for example after a crash between writing a pair and committing the
// record.
package orphans

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"darlingdetails/pkg/media"

	"github.com/rs/zerolog"
)

type lister interface {
	List(ctx context.Context, area string) ([]string, error)
}

type remover interface {
	Remove(ctx context.Context, area, name string) error
}

// Find lists both derivative areas and returns every entry that is not one of
// the pair belonging to a referenced image name. The result is sorted by area
// then name.
func Find(ctx context.Context, store lister, resolver media.Resolver, referenced []string) ([]media.Ref, error) {
	keep := make(map[media.Ref]struct{}, 2*len(referenced))
	for _, name := range referenced {
		for _, ref := range resolver.Locate(name) {
			keep[ref] = struct{}{}
		}
	}

	var out []media.Ref
	for _, area := range []string{resolver.DisplayArea, resolver.ThumbnailArea} {
		names, err := store.List(ctx, area)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", area, err)
		}
		for _, name := range names {
			ref := media.Ref{Area: area, Name: name}
			if _, ok := keep[ref]; !ok {
				out = append(out, ref)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Area != out[j].Area {
			return out[i].Area < out[j].Area
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Remove deletes refs one by one. A failed removal is logged and the sweep
// continues; the failures are returned joined.
func Remove(ctx context.Context, store remover, refs []media.Ref, log zerolog.Logger) (int, error) {
	var errs []error
	removed := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := store.Remove(ctx, ref.Area, ref.Name)
		if err != nil && !errors.Is(err, media.ErrNotFound) {
			log.Error().Err(err).Str("area", ref.Area).Str("name", ref.Name).Msg("failed to remove orphan")
			errs = append(errs, err)
			continue
		}
		removed++
		log.Info().Str("area", ref.Area).Str("name", ref.Name).Msg("removed orphan")
	}
	return removed, errors.Join(errs...)
}
