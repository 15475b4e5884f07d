package emote

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"seventvbot/internal/domain"
)

type (
	overrideStore interface {
		FindAll(ctx context.Context) ([]domain.Override, error)
	}

	upserter interface {
		Upsert(e domain.Emote)
	}
)

// Seed fills reg with the top/trending emotes and the persisted overrides,
// fetched concurrently. Overrides are applied last, so an admin-curated
// trigger always beats a ranked one. Returns the number of triggers written.
func (r *Resolver) Seed(ctx context.Context, store overrideStore, reg upserter) (int, error) {
	const errMsg = "Resolver.Seed"

	var (
		top       map[string]domain.Emote
		overrides []domain.Override
		byID      map[string]domain.Emote
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		top, err = r.ResolveTop(gctx)

		return err
	})

	g.Go(func() error {
		var err error

		overrides, err = store.FindAll(gctx)
		if err != nil {
			return errors.Wrap(err, "load overrides")
		}

		ids := make([]string, 0, len(overrides))
		for _, o := range overrides {
			ids = append(ids, o.EmoteID)
		}

		byID, err = r.ResolveByID(gctx, ids)

		return err
	})

	if err := g.Wait(); err != nil {
		return 0, errors.Wrap(err, errMsg)
	}

	merged := make(map[string]domain.Emote, len(top)+len(overrides))
	for name, e := range top {
		merged[name] = e
	}

	for _, o := range overrides {
		e := byID[o.EmoteID]
		merged[o.EmoteName] = domain.Emote{
			ID:       e.ID,
			Name:     o.EmoteName,
			Animated: e.Animated,
		}
	}

	for _, e := range merged {
		reg.Upsert(e)
	}

	return len(merged), nil
}
