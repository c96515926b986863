package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/config"
)

func newTestClient(url string, retries int) *Client {
	c := NewClient(config.ScryfallConfig{
		BaseURL:        url,
		RequestsPerSec: 1000,
		MaxRetries:     retries,
		Timeout:        time.Second,
	})
	c.initialBackoff = time.Millisecond
	return c
}

func TestFetchSets_FollowsPages(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"has_more":false,"data":[{"id":"s2","code":"dmu","name":"Dominaria United","released_at":"2022-09-09","set_type":"expansion","card_count":281}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"has_more":true,"next_page":"` + srv.URL + `/sets?page=2","data":[{"id":"s1","code":"neo","name":"Kamigawa: Neon Dynasty","released_at":"2022-02-18","set_type":"expansion","card_count":302}]}`))
	}))
	defer srv.Close()

	sets, err := newTestClient(srv.URL, 0).FetchSets(context.Background())
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "neo", sets[0].Code)
	assert.Equal(t, 302, sets[0].CardCount)
	require.NotNil(t, sets[1].ReleasedAt)
	assert.Equal(t, 2022, sets[1].ReleasedAt.Year())
}

func TestDo_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"type":"default_cards","download_uri":"https://example.test/default.json"}]}`))
	}))
	defer srv.Close()

	uri, err := newTestClient(srv.URL, 3).BulkDataURL(context.Background(), "default_cards")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/default.json", uri)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).FetchSets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_NotFoundAndAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/bulk-data") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":400,"code":"bad_request","details":"nope"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	_, err := c.FetchSets(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.BulkDataURL(context.Background(), "default_cards")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Details)
}

func TestBulkDataURL_UnknownType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"type":"oracle_cards","download_uri":"x"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).BulkDataURL(context.Background(), "default_cards")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	c.initialBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.FetchSets(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

const bulkJSON = `[
  {"id":"a","name":"Opt","set":"dmu","collector_number":"60","rarity":"common","colors":["U"],"prices":{"usd":"0.10","usd_foil":null},"frame_effects":["showcase"]},
  {"id":"b","name":"Fable of the Mirror-Breaker","set":"neo","collector_number":"141","card_faces":[{"name":"Fable","colors":["R"],"image_uris":{"normal":"https://img/fable.jpg"}}]},
  {"name":"no id, skipped"},
  {"id":"c","name":"Island","set":"dmu","collector_number":"262","released_at":"2022-09-09"}
]`

func TestStreamCards(t *testing.T) {
	var batches [][]*card.Card
	total, err := StreamCards(context.Background(), strings.NewReader(bulkJSON), 2, func(_ context.Context, cards []*card.Card) error {
		batches = append(batches, cards)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)

	opt := batches[0][0]
	assert.Equal(t, "dmu", opt.SetCode)
	assert.Equal(t, "0.1", opt.Prices.USD().String())
	assert.True(t, opt.Prices.USDFoil().IsZero())
	assert.Equal(t, card.CategoryShowcase, opt.Category())

	fable := batches[0][1]
	assert.Equal(t, []string{"R"}, fable.Colors)
	assert.Equal(t, "https://img/fable.jpg", fable.ImageURIs["normal"])

	island := batches[1][0]
	require.NotNil(t, island.ReleasedAt)
	assert.Equal(t, 0, island.CollectionRegular)
}

func TestStreamCards_Errors(t *testing.T) {
	noop := func(context.Context, []*card.Card) error { return nil }

	_, err := StreamCards(context.Background(), strings.NewReader(`{"id":"a"}`), 10, noop)
	assert.Error(t, err)

	_, err = StreamCards(context.Background(), strings.NewReader(`[{"id":"a"},{"id":`), 10, noop)
	assert.Error(t, err)

	boom := errors.New("db down")
	n, err := StreamCards(context.Background(), strings.NewReader(bulkJSON), 1, func(context.Context, []*card.Card) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), n)
}
