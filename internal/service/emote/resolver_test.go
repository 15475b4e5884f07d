package emote

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seventvbot/internal/domain"
	"seventvbot/internal/infrastructure/webapi/seventv"
	"seventvbot/internal/service/registry"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	// idBatches records the ids of every EmotesByID call.
	idBatches [][]string

	pages    map[string][]domain.Emote // "<category>/<page>"
	byName   map[string][]domain.Emote
	byID     map[string]domain.Emote
	channels map[string][]domain.Emote
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls:    map[string]int{},
		pages:    map[string][]domain.Emote{},
		byName:   map[string][]domain.Emote{},
		byID:     map[string]domain.Emote{},
		channels: map[string][]domain.Emote{},
	}
}

func (f *fakeProvider) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeProvider) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *fakeProvider) CategoryPages(_ context.Context, category string, pages, pageOffset, _ int) ([]domain.Emote, error) {
	f.count("category")
	if f.err != nil {
		return nil, f.err
	}

	var res []domain.Emote
	for p := pageOffset + 1; p <= pageOffset+pages; p++ {
		res = append(res, f.pages[fmt.Sprintf("%s/%d", category, p)]...)
	}

	return res, nil
}

func (f *fakeProvider) EmotesByName(_ context.Context, names []string) (map[string][]domain.Emote, error) {
	f.count("name")
	if f.err != nil {
		return nil, f.err
	}

	res := map[string][]domain.Emote{}
	for _, n := range names {
		res[n] = f.byName[n]
	}

	return res, nil
}

func (f *fakeProvider) EmotesByID(_ context.Context, ids []string) (map[string]domain.Emote, error) {
	f.count("id")
	f.mu.Lock()
	f.idBatches = append(f.idBatches, ids)
	f.mu.Unlock()

	if len(ids) > seventv.MaxIDsPerQuery {
		return nil, seventv.ErrTooManyIDs
	}
	if f.err != nil {
		return nil, f.err
	}

	res := map[string]domain.Emote{}
	for _, id := range ids {
		if e, ok := f.byID[id]; ok {
			res[id] = e
		}
	}

	return res, nil
}

func (f *fakeProvider) EmotesByChannel(_ context.Context, channelIDs []string) (map[string][]domain.Emote, error) {
	f.count("channel")
	if f.err != nil {
		return nil, f.err
	}

	res := map[string][]domain.Emote{}
	for _, ch := range channelIDs {
		if emotes, ok := f.channels[ch]; ok {
			res[ch] = emotes
		}
	}

	return res, nil
}

func defaultOptions() Options {
	return Options{TopPages: 5, PagesPerRequest: 1, PageLimit: 300}
}

func TestResolveByIDChunks(t *testing.T) {
	p := newFakeProvider()
	ids := make([]string, 23)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%02d", i)
		p.byID[ids[i]] = domain.Emote{ID: ids[i], Name: "n" + ids[i]}
	}

	res, err := NewResolver(p, defaultOptions()).ResolveByID(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Calls("id"))
	assert.Len(t, res, 23)
	for _, id := range ids {
		assert.Equal(t, id, res[id].ID)
	}

	sizes := make([]int, 0, len(p.idBatches))
	for _, b := range p.idBatches {
		sizes = append(sizes, len(b))
	}
	sort.Ints(sizes)
	assert.Equal(t, []int{3, 10, 10}, sizes)
}

func TestResolveByIDMissing(t *testing.T) {
	p := newFakeProvider()
	p.byID["a"] = domain.Emote{ID: "a", Name: "A"}

	_, err := NewResolver(p, defaultOptions()).ResolveByID(context.Background(), []string{"a", "b"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "b", nf.Key)
}

func TestEmptyInputsShortCircuit(t *testing.T) {
	p := newFakeProvider()
	r := NewResolver(p, defaultOptions())

	res, err := r.ResolveByID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = r.ResolveByChannel(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, res)

	assert.Zero(t, p.Calls("id"))
	assert.Zero(t, p.Calls("channel"))
}

func TestResolveTopTrendingWins(t *testing.T) {
	p := newFakeProvider()
	p.pages["TRENDING_DAY/1"] = []domain.Emote{{ID: "trend", Name: "Pog"}}
	p.pages["TOP/1"] = []domain.Emote{{ID: "top", Name: "Pog"}, {ID: "t1", Name: "KEKW"}}
	p.pages["TOP/3"] = []domain.Emote{{ID: "t3", Name: "KEKW"}, {ID: "t3b", Name: "Clap"}}

	res, err := NewResolver(p, defaultOptions()).ResolveTop(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, p.Calls("category"))
	assert.Equal(t, "trend", res["Pog"].ID)
	assert.Equal(t, "t1", res["KEKW"].ID, "lower page wins among top pages")
	assert.Equal(t, "t3b", res["Clap"].ID)
	assert.Len(t, res, 3)
}

func TestResolveTopBatchesPages(t *testing.T) {
	p := newFakeProvider()
	p.pages["TOP/5"] = []domain.Emote{{ID: "last", Name: "Last"}}

	res, err := NewResolver(p, Options{TopPages: 5, PagesPerRequest: 2, PageLimit: 10}).ResolveTop(context.Background())
	require.NoError(t, err)

	// trending + pages {1,2} {3,4} {5}
	assert.Equal(t, 4, p.Calls("category"))
	assert.Equal(t, "last", res["Last"].ID)
}

func TestResolveTopFailsFast(t *testing.T) {
	p := newFakeProvider()
	p.err = &seventv.HTTPError{Status: 502}

	_, err := NewResolver(p, defaultOptions()).ResolveTop(context.Background())

	var httpErr *seventv.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestResolveByNameExactMatch(t *testing.T) {
	p := newFakeProvider()
	p.byName["peepo"] = []domain.Emote{{ID: "1", Name: "Peepo"}, {ID: "2", Name: "peepo"}}
	p.byName["wave"] = []domain.Emote{{ID: "3", Name: "wave"}}

	res, err := NewResolver(p, defaultOptions()).ResolveByName(context.Background(), []string{"peepo", "wave", "peepo"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Calls("name"))
	assert.Equal(t, map[string]domain.Emote{
		"peepo": {ID: "2", Name: "peepo"},
		"wave":  {ID: "3", Name: "wave"},
	}, res)
}

func TestResolveByNameNearMatchIsNotFound(t *testing.T) {
	p := newFakeProvider()
	p.byName["wave"] = []domain.Emote{{ID: "3", Name: "wave"}}
	p.byName["pog"] = []domain.Emote{{ID: "4", Name: "PogChamp"}}

	_, err := NewResolver(p, defaultOptions()).ResolveByName(context.Background(), []string{"wave", "pog"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "name", nf.Kind)
	assert.Equal(t, "pog", nf.Key)
}

func TestResolveByChannelMergesByID(t *testing.T) {
	p := newFakeProvider()
	p.channels["a"] = []domain.Emote{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}
	p.channels["b"] = []domain.Emote{{ID: "2", Name: "two"}, {ID: "3", Name: "three"}}

	res, err := NewResolver(p, defaultOptions()).ResolveByChannel(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Calls("channel"))
	assert.Len(t, res, 3)
	assert.Equal(t, "three", res["3"].Name)
}

func TestResolveByChannelUnknown(t *testing.T) {
	p := newFakeProvider()

	_, err := NewResolver(p, defaultOptions()).ResolveByChannel(context.Background(), []string{"nobody"})

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

type fakeStore struct {
	overrides []domain.Override
	err       error
}

func (s *fakeStore) FindAll(context.Context) ([]domain.Override, error) {
	return s.overrides, s.err
}

func TestSeedOverridesWin(t *testing.T) {
	p := newFakeProvider()
	p.pages["TRENDING_DAY/1"] = []domain.Emote{{ID: "trend", Name: "Pog"}}
	p.pages["TOP/1"] = []domain.Emote{{ID: "top", Name: "KEKW"}, {ID: "top2", Name: "Pog"}}
	p.byID["curated"] = domain.Emote{ID: "curated", Name: "KEKW_HD", Animated: true}

	store := &fakeStore{overrides: []domain.Override{{GuildID: "g", EmoteName: "KEKW", EmoteID: "curated"}}}
	reg := registry.New()

	n, err := NewResolver(p, defaultOptions()).Seed(context.Background(), store, reg)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, reg.Len())

	kekw, _ := reg.Get("KEKW")
	assert.Equal(t, domain.Emote{ID: "curated", Name: "KEKW", Animated: true}, kekw)

	pog, _ := reg.Get("Pog")
	assert.Equal(t, "trend", pog.ID)
}

func TestSeedWithoutOverrides(t *testing.T) {
	p := newFakeProvider()
	p.pages["TOP/2"] = []domain.Emote{{ID: "x", Name: "x"}}
	reg := registry.New()

	n, err := NewResolver(p, defaultOptions()).Seed(context.Background(), &fakeStore{}, reg)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Zero(t, p.Calls("id"))
}

func TestSeedStoreFailure(t *testing.T) {
	p := newFakeProvider()
	reg := registry.New()

	_, err := NewResolver(p, defaultOptions()).Seed(context.Background(), &fakeStore{err: errors.New("db down")}, reg)

	assert.ErrorContains(t, err, "db down")
	assert.Zero(t, reg.Len())
}
