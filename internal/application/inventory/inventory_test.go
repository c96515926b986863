package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
	"github.com/xiebiao/mtgkiosk/internal/mocks"
)

type fixture struct {
	store     *mocks.Store
	cache     *mocks.Cache
	publisher *mocks.Publisher
	refresher *RefreshCountsUseCase
	update    *UpdateUseCase
}

func newFixture() *fixture {
	store := mocks.NewStore()
	store.AddSets(&set.Set{Code: "neo", Name: "Kamigawa: Neon Dynasty", CardCount: 10})
	store.AddCards(
		&card.Card{ID: "a", Name: "Ambush Gigapede", SetCode: "neo", CollectorNumber: "10",
			Inventory: inventory.Inventory{CollectionRegular: 1, KioskRegular: 3}},
		&card.Card{ID: "b", Name: "Boseiju, Who Endures", SetCode: "neo", CollectorNumber: "266"},
	)
	cache := mocks.NewCache()
	publisher := &mocks.Publisher{}
	invalidator := NewInvalidator(cache)
	refresher := NewRefreshCountsUseCase(store, invalidator)

	return &fixture{
		store:     store,
		cache:     cache,
		publisher: publisher,
		refresher: refresher,
		update:    NewUpdateUseCase(store, store, refresher, invalidator, publisher),
	}
}

func TestUpdate_SetCollection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.cache.Set(ctx, "card:a", []byte(`{}`), 0)
	f.cache.Set(ctx, "collection_stats", []byte(`{}`), 0)
	f.cache.Set(ctx, "all_sets:page=1", []byte(`{}`), 0)
	f.cache.Set(ctx, "kiosk_stats", []byte(`{}`), 0)

	inv, err := f.update.Set(ctx, SetRequest{Bucket: inventory.Collection, CardID: "a", QuantityRegular: 2, QuantityFoil: 1})
	require.NoError(t, err)

	// 另一个桶的计数不受影响
	assert.Equal(t, inventory.Inventory{CollectionRegular: 2, CollectionFoil: 1, KioskRegular: 3}, inv)
	assert.Equal(t, inv, f.store.Inventory("a"))

	// 聚合表同步刷新
	assert.Equal(t, 1, f.store.RefreshCalls)
	n, _ := f.store.AggregateCount("neo")
	assert.Equal(t, int64(3), n)

	assert.False(t, f.cache.Has("card:a"))
	assert.False(t, f.cache.Has("collection_stats"))
	assert.False(t, f.cache.Has("all_sets:page=1"))
	assert.True(t, f.cache.Has("kiosk_stats"))

	require.Equal(t, []string{inventory.EventInventoryChanged}, f.publisher.Keys())
	event := f.publisher.Events[0].Payload.(inventory.ChangedEvent)
	assert.Equal(t, "a", event.CardID)
	assert.Equal(t, 2, event.QuantityRegular)
	assert.Equal(t, 1, event.QuantityFoil)
}

func TestUpdate_SetKiosk(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv, err := f.update.Set(ctx, SetRequest{Bucket: inventory.Kiosk, CardID: "b", QuantityFoil: 4})
	require.NoError(t, err)
	assert.Equal(t, inventory.Inventory{KioskFoil: 4}, inv)
	assert.Equal(t, 0, f.store.RefreshCalls)
}

func TestUpdate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.update.Set(ctx, SetRequest{Bucket: inventory.Collection, CardID: "a", QuantityRegular: -1})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = f.update.Set(ctx, SetRequest{Bucket: "attic", CardID: "a"})
	assert.ErrorIs(t, err, inventory.ErrInvalidBucket)

	_, err = f.update.Set(ctx, SetRequest{Bucket: inventory.Collection, CardID: "missing", QuantityRegular: 1})
	assert.ErrorIs(t, err, card.ErrCardNotFound)

	assert.Empty(t, f.publisher.Events)
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1, KioskRegular: 3}, f.store.Inventory("a"))
}

func TestUpdate_RefreshFailureKeepsChange(t *testing.T) {
	f := newFixture()
	f.store.RefreshErr = errors.New("db busy")

	_, err := f.update.Set(context.Background(), SetRequest{Bucket: inventory.Collection, CardID: "b", QuantityRegular: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Inventory("b").CollectionRegular)
}

func TestUpdate_Clear(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.update.Clear(context.Background(), inventory.Kiosk, "a"))
	assert.Equal(t, inventory.Inventory{CollectionRegular: 1}, f.store.Inventory("a"))
}

func TestRefreshCounts_Manual(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.cache.Set(ctx, "all_sets:page=1", []byte(`{}`), 0)
	f.cache.Set(ctx, "collection_sets:page=1", []byte(`{}`), 0)
	f.cache.Set(ctx, "v2_cards:set_code=neo", []byte(`{}`), 0)
	f.cache.Set(ctx, "collection_stats", []byte(`{}`), 0)
	f.cache.Set(ctx, "kiosk_sets:page=1", []byte(`{}`), 0)
	f.cache.Set(ctx, "collection_set_cards:neo:page=1", []byte(`{}`), 0)
	f.cache.Set(ctx, "set_cards:neo:", []byte(`{}`), 0)

	n, err := f.refresher.Manual(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.False(t, f.cache.Has("all_sets:page=1"))
	assert.False(t, f.cache.Has("collection_sets:page=1"))
	assert.False(t, f.cache.Has("v2_cards:set_code=neo"))
	assert.False(t, f.cache.Has("collection_stats"))
	assert.False(t, f.cache.Has("collection_set_cards:neo:page=1"))
	assert.False(t, f.cache.Has("set_cards:neo:"))
	assert.True(t, f.cache.Has("kiosk_sets:page=1"))
	assert.Contains(t, f.cache.DeletedPatterns, "collection_set_cards:*")

	f.store.RefreshErr = errors.New("boom")
	_, err = f.refresher.Manual(ctx)
	assert.Error(t, err)
}

func TestInvalidator_All(t *testing.T) {
	cache := mocks.NewCache()
	ctx := context.Background()
	for _, k := range []string{"card:x", "keywords:", "all_sets:page=1", "kiosk_stats", "collection_set_cards:neo:", "unrelated"} {
		cache.Set(ctx, k, []byte(`1`), 0)
	}

	NewInvalidator(cache).All(ctx)

	assert.True(t, cache.Has("unrelated"))
	for _, k := range []string{"card:x", "keywords:", "all_sets:page=1", "kiosk_stats", "collection_set_cards:neo:"} {
		assert.False(t, cache.Has(k), k)
	}
	assert.NotContains(t, cache.DeletedPatterns, "sets:*")
}

func TestBucketSetCards(t *testing.T) {
	f := newFixture()
	uc := NewBucketSetCardsUseCase(f.store.Sets(), f.store, appcard.NewListCardsUseCase(f.store))
	ctx := context.Background()

	res, err := uc.Execute(ctx, BucketSetCardsRequest{
		ListCardsRequest: appcard.ListCardsRequest{Bucket: inventory.Kiosk},
		Code:             "NEO",
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a", res.Items[0].ID)
	assert.Equal(t, int64(3), res.Set.CollectionCount)
	assert.Equal(t, 30.0, res.Set.Percentage)

	_, err = uc.Execute(ctx, BucketSetCardsRequest{
		ListCardsRequest: appcard.ListCardsRequest{Bucket: inventory.Kiosk},
		Code:             "zzz",
	})
	assert.ErrorIs(t, err, set.ErrSetNotFound)

	_, err = uc.Execute(ctx, BucketSetCardsRequest{Code: "neo"})
	assert.ErrorIs(t, err, inventory.ErrInvalidBucket)
}
