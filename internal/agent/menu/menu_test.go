package menu

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
)

type fakeStore struct {
	mu      sync.Mutex
	records []model.CatalogRecord
	err     error
	calls   int
}

func (f *fakeStore) LoadCatalog(context.Context) ([]model.CatalogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func sampleRecords() []model.CatalogRecord {
	return []model.CatalogRecord{
		{Name: "Green Dragon Roll", Category: "Rolls", Price: 14, ItemNumber: 1, Embedding: []float32{1, 0, 0}},
		{Name: "Coke", Category: "Drinks", Price: 2.5, ItemNumber: 2, Embedding: []float32{0, 1, 0}},
		{
			Name: "Gyoza", Category: "Appetizers", Price: 6.5, ItemNumber: 3,
			Options: []model.OptionRecord{
				{Name: "Protein", Required: true, Choices: []model.ChoiceRecord{{Name: "Beef"}, {Name: "Vegetable"}}},
				{Name: "Sauce", Choices: []model.ChoiceRecord{{Name: "Ponzu"}, {Name: "Spicy Mayo"}}},
			},
		},
		{Name: "   "},
	}
}

func TestNormalize(t *testing.T) {
	cases := []string{"  Green   Dragon  Roll ", "COKE", "\tbeef\n gyoza", "", "   "}
	for _, s := range cases {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "idempotent for %q", s)
	}
	assert.Equal(t, "green dragon roll", Normalize("  Green   Dragon  Roll "))
	assert.Equal(t, "", Normalize("   "))
}

func TestBuildSnapshot(t *testing.T) {
	records := append(sampleRecords(), model.CatalogRecord{Name: "coke", Category: "Beverages", Price: 3})
	snap := BuildSnapshot(records, time.Unix(0, 0))

	require.Len(t, snap.Lookup, 3)
	coke, ok := snap.Entry("coke")
	require.True(t, ok)
	assert.Equal(t, 3.0, coke.Price, "later record wins")

	gyoza, ok := snap.Entry("gyoza")
	require.True(t, ok)
	require.Len(t, gyoza.Options, 2)
	assert.Equal(t, "protein", gyoza.Options[0].Key)
	assert.Equal(t, []string{"ponzu", "spicy mayo"}, gyoza.Options[1].Choices)

	// the replacement coke record carries no vector
	require.Len(t, snap.Embeddings, 1)
	assert.Equal(t, "green dragon roll", snap.Embeddings[0].Key)
}

func TestCacheServesWithinTTL(t *testing.T) {
	store := &fakeStore{records: sampleRecords()}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cache := NewCache(store, time.Minute, WithClock(clock.Now))

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.calls)

	clock.Advance(time.Second)
	third, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, store.calls)
}

func TestCacheForceRefreshAndInvalidate(t *testing.T) {
	store := &fakeStore{records: sampleRecords()}
	cache := NewCache(store, time.Hour)

	_, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)

	cache.Invalidate()
	_, err = cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
}

func TestCacheColdStartFailureIsFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	cache := NewCache(store, time.Hour)

	snap, err := cache.Get(context.Background(), false)
	assert.Nil(t, snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrCatalogUnavailable)
}

func TestCacheServesStaleSnapshotWhenRefreshFails(t *testing.T) {
	store := &fakeStore{records: sampleRecords()}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cache := NewCache(store, time.Minute, WithClock(clock.Now))

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	store.err = errors.New("timeout")
	clock.Advance(time.Hour)
	stale, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Same(t, first, stale)
}

type ctxStore struct{ fakeStore }

func (c *ctxStore) LoadCatalog(ctx context.Context) ([]model.CatalogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.fakeStore.LoadCatalog(ctx)
}

func TestCacheRefreshIgnoresCallerCancellation(t *testing.T) {
	store := &ctxStore{fakeStore{records: sampleRecords()}}
	cache := NewCache(store, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := cache.Get(ctx, false)
	require.NoError(t, err)
	assert.Len(t, snap.Lookup, 3)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0, 0}, []float32{2, 0, 0}), 1e-12)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.True(t, math.IsNaN(Cosine([]float32{1, 0, 0}, []float32{1})))
	assert.True(t, math.IsNaN(Cosine([]float32{0, 0}, []float32{1, 1})))
}

func TestResolveSkipsMismatchedDimensions(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	emb := &fakeEmbedder{vectors: map[string][]float32{"dragon thing": {1}}}

	m := NewResolver(emb).Resolve(context.Background(), "dragon thing", snap, DefaultCutoff)
	assert.False(t, m.Found())
}

func TestResolveExactMatchSkipsEmbedder(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	emb := &fakeEmbedder{err: errors.New("must not be called")}
	r := NewResolver(emb)

	m := r.Resolve(context.Background(), "Coke", snap, DefaultCutoff)
	assert.Equal(t, "coke", m.Key)
	assert.Equal(t, 1.0, m.Score)
	assert.Equal(t, MatchExact, m.Method)
	assert.Zero(t, emb.calls)
}

func TestResolveEmptyPhrase(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	m := NewResolver(&fakeEmbedder{}).Resolve(context.Background(), "   ", snap, DefaultCutoff)
	assert.False(t, m.Found())
	assert.Zero(t, m.Score)
}

func TestResolveCutoffBoundary(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	query := []float32{0.8, 0.6, 0}
	emb := &fakeEmbedder{vectors: map[string][]float32{"dragon thing": query}}
	r := NewResolver(emb)

	score := Cosine(query, []float32{1, 0, 0})

	m := r.Resolve(context.Background(), "dragon thing", snap, score)
	assert.Equal(t, "green dragon roll", m.Key)
	assert.Equal(t, MatchSimilarity, m.Method)
	assert.InDelta(t, score, m.Score, 1e-12)

	m = r.Resolve(context.Background(), "dragon thing", snap, score+1e-9)
	assert.False(t, m.Found())
}

func TestResolveTieKeepsFirstSeen(t *testing.T) {
	snap := BuildSnapshot([]model.CatalogRecord{
		{Name: "Sprite", Category: "Drinks", Embedding: []float32{1, 1}},
		{Name: "7 Up", Category: "Drinks", Embedding: []float32{2, 2}},
	}, time.Now())
	emb := &fakeEmbedder{vectors: map[string][]float32{"lemon soda": {1, 1}}}

	m := NewResolver(emb).Resolve(context.Background(), "lemon soda", snap, DefaultCutoff)
	assert.Equal(t, "sprite", m.Key)
}

func TestResolveEmbeddingFailureIsNoMatch(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())

	m := NewResolver(&fakeEmbedder{err: errors.New("quota")}).Resolve(context.Background(), "dragon", snap, DefaultCutoff)
	assert.False(t, m.Found())

	m = NewResolver(&fakeEmbedder{}).Resolve(context.Background(), "dragon", snap, DefaultCutoff)
	assert.False(t, m.Found(), "empty vector")
}

func TestDetectOptionsInPhrase(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	gyoza, _ := snap.Entry("gyoza")

	got := DetectOptionsInPhrase("Beef Gyoza with spicy mayo", gyoza)
	assert.Equal(t, model.OptionChoices{{Name: "Protein", Value: "beef"}, {Name: "Sauce", Value: "spicy mayo"}}, got)

	assert.Empty(t, DetectOptionsInPhrase("beefy gyoza", gyoza), "whole words only")
}

func TestReconcileOptions(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	gyoza, _ := snap.Entry("gyoza")

	got := ReconcileOptions(model.OptionChoices{
		{Name: "PROTEIN ", Value: "vegetable"},
		{Name: "dipping sauce", Value: "ponzu"},
		{Name: "extra", Value: "chili"},
	}, gyoza)
	assert.Equal(t, model.OptionChoices{
		{Name: "Protein", Value: "vegetable"},
		{Name: "Sauce", Value: "ponzu"},
		{Name: "extra", Value: "chili"},
	}, got)
}

func TestResolveOptionsSuppliedWins(t *testing.T) {
	snap := BuildSnapshot(sampleRecords(), time.Now())
	gyoza, _ := snap.Entry("gyoza")

	got := ResolveOptions("beef gyoza", model.OptionChoices{{Name: "protein", Value: "vegetable"}}, gyoza)
	assert.Equal(t, model.OptionChoices{{Name: "Protein", Value: "vegetable"}}, got)
}

func TestMissingRequiredIsOrderPreserving(t *testing.T) {
	entry := &model.CatalogEntry{
		Key: "bento",
		Options: []model.OptionGroup{
			{Name: "A", Key: "a", Required: true},
			{Name: "B", Key: "b"},
		},
	}

	g := MissingRequired(model.OrderLineItem{ItemName: "Bento", Key: "bento"}, entry)
	require.NotNil(t, g)
	assert.Equal(t, "A", g.Name)

	assert.Nil(t, MissingRequired(model.OrderLineItem{Options: model.OptionChoices{{Name: "a", Value: "x"}}}, entry))
	assert.Nil(t, MissingRequired(model.OrderLineItem{}, nil))
}
