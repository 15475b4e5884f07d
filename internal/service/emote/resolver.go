package emote

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"seventvbot/internal/domain"
	"seventvbot/internal/infrastructure/webapi/seventv"
)

const (
	CategoryTop      = "TOP"
	CategoryTrending = "TRENDING_DAY"
)

type (
	provider interface {
		CategoryPages(ctx context.Context, category string, pages, pageOffset, limit int) ([]domain.Emote, error)
		EmotesByName(ctx context.Context, names []string) (map[string][]domain.Emote, error)
		EmotesByID(ctx context.Context, ids []string) (map[string]domain.Emote, error)
		EmotesByChannel(ctx context.Context, channelIDs []string) (map[string][]domain.Emote, error)
	}

	Options struct {
		TopPages        int
		PagesPerRequest int
		PageLimit       int
	}

	Resolver struct {
		api  provider
		opts Options
	}
)

func NewResolver(api provider, opts Options) *Resolver {
	if opts.PagesPerRequest < 1 {
		opts.PagesPerRequest = 1
	}

	return &Resolver{
		api:  api,
		opts: opts,
	}
}

// ResolveTop fetches one trending page and the top pages concurrently and
// merges them by name. The first record seen for a name wins; trending is
// folded in before top.
func (r *Resolver) ResolveTop(ctx context.Context) (map[string]domain.Emote, error) {
	const errMsg = "Resolver.ResolveTop"

	type batch struct {
		category string
		pages    int
		offset   int
	}

	batches := []batch{{category: CategoryTrending, pages: 1}}
	for offset := 0; offset < r.opts.TopPages; offset += r.opts.PagesPerRequest {
		batches = append(batches, batch{
			category: CategoryTop,
			pages:    min(r.opts.PagesPerRequest, r.opts.TopPages-offset),
			offset:   offset,
		})
	}

	results := make([][]domain.Emote, len(batches))
	g, gctx := errgroup.WithContext(ctx)

	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			emotes, err := r.api.CategoryPages(gctx, b.category, b.pages, b.offset, r.opts.PageLimit)
			if err != nil {
				return err
			}
			results[i] = emotes

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	merged := make(map[string]domain.Emote)
	for _, emotes := range results {
		for _, e := range emotes {
			if _, ok := merged[e.Name]; !ok {
				merged[e.Name] = e
			}
		}
	}

	return merged, nil
}

// ResolveByName returns, keyed by name, the first provider result whose name
// equals the requested one exactly.
func (r *Resolver) ResolveByName(ctx context.Context, names []string) (map[string]domain.Emote, error) {
	const errMsg = "Resolver.ResolveByName"

	names = unique(names)
	if len(names) == 0 {
		return map[string]domain.Emote{}, nil
	}

	candidates, err := r.api.EmotesByName(ctx, names)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string]domain.Emote, len(names))

	for _, name := range names {
		e, ok := exactMatch(candidates[name], name)
		if !ok {
			return nil, errors.Wrap(&NotFoundError{Kind: "name", Key: name}, errMsg)
		}
		res[name] = e
	}

	return res, nil
}

// ResolveByID looks ids up in concurrent chunks of seventv.MaxIDsPerQuery.
func (r *Resolver) ResolveByID(ctx context.Context, ids []string) (map[string]domain.Emote, error) {
	const errMsg = "Resolver.ResolveByID"

	ids = unique(ids)
	if len(ids) == 0 {
		return map[string]domain.Emote{}, nil
	}

	chunks := chunk(ids, seventv.MaxIDsPerQuery)
	results := make([]map[string]domain.Emote, len(chunks))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			found, err := r.api.EmotesByID(gctx, c)
			if err != nil {
				return err
			}

			for _, id := range c {
				if _, ok := found[id]; !ok {
					return &NotFoundError{Kind: "id", Key: id}
				}
			}
			results[i] = found

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string]domain.Emote, len(ids))
	for _, found := range results {
		for id, e := range found {
			res[id] = e
		}
	}

	return res, nil
}

// ResolveByChannel merges the emote sets of all channels into one id-keyed map.
func (r *Resolver) ResolveByChannel(ctx context.Context, channelIDs []string) (map[string]domain.Emote, error) {
	const errMsg = "Resolver.ResolveByChannel"

	channelIDs = unique(channelIDs)
	if len(channelIDs) == 0 {
		return map[string]domain.Emote{}, nil
	}

	sets, err := r.api.EmotesByChannel(ctx, channelIDs)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	res := make(map[string]domain.Emote)

	for _, ch := range channelIDs {
		emotes, ok := sets[ch]
		if !ok {
			return nil, errors.Wrap(&NotFoundError{Kind: "channel", Key: ch}, errMsg)
		}

		for _, e := range emotes {
			res[e.ID] = e
		}
	}

	return res, nil
}

func exactMatch(candidates []domain.Emote, name string) (domain.Emote, bool) {
	for _, e := range candidates {
		if e.Name == name {
			return e, true
		}
	}

	return domain.Emote{}, false
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

func chunk(in []string, size int) [][]string {
	var out [][]string

	for size < len(in) {
		in, out = in[size:], append(out, in[:size:size])
	}

	return append(out, in)
}
