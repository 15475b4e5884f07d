package seventv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seventvbot/internal/domain"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, time.Second)
}

func reply(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestExecuteSendsQueryAndVariables(t *testing.T) {
	var got request

	api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, `{"data":{"emote_0":null}}`)
	})

	doc, err := IDQuery([]string{"abc"})
	require.NoError(t, err)

	data, err := api.Execute(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, doc.Query, got.Query)
	assert.Equal(t, "abc", got.Variables["v0"])
	assert.JSONEq(t, "null", string(data["emote_0"]))
}

func TestExecuteErrorClassification(t *testing.T) {
	ctx := context.Background()
	doc := CategoryQuery(1, "TOP", 0, 1)

	t.Run("http", func(t *testing.T) {
		api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		})

		_, err := api.Execute(ctx, doc)

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
		assert.Contains(t, httpErr.Body, "slow down")
	})

	t.Run("graph", func(t *testing.T) {
		api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, `{"data":null,"errors":[{"message":"bad filter"},{"message":"rate limited"}]}`)
		})

		_, err := api.Execute(ctx, doc)

		var graphErr *GraphError
		require.ErrorAs(t, err, &graphErr)
		assert.Len(t, graphErr.Details, 2)
		assert.Contains(t, err.Error(), "bad filter; rate limited")
	})

	t.Run("graph errors win over data", func(t *testing.T) {
		api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, `{"data":{"page1":{"items":[]}},"errors":[{"message":"partial"}]}`)
		})

		_, err := api.Execute(ctx, doc)

		var graphErr *GraphError
		assert.ErrorAs(t, err, &graphErr)
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, time.Second).Execute(ctx, doc)

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestCategoryPages(t *testing.T) {
	api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"data":{
			"page2":{"items":[{"id":"a","name":"A","animated":true,"host":{"files":[{"format":"WEBP"}]}}]},
			"page3":{"items":[{"id":"b","name":"B","animated":false}]}
		}}`)
	})

	emotes, err := api.CategoryPages(context.Background(), "TOP", 2, 1, 300)
	require.NoError(t, err)

	assert.Equal(t, []domain.Emote{
		{ID: "a", Name: "A", Animated: true},
		{ID: "b", Name: "B"},
	}, emotes)
}

func TestCategoryPagesMissingAlias(t *testing.T) {
	api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"data":{"page1":{"items":[]}}}`)
	})

	_, err := api.CategoryPages(context.Background(), "TOP", 2, 0, 300)
	assert.ErrorContains(t, err, "page2")
}

func TestEmotesByIDSkipsNull(t *testing.T) {
	api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"data":{"emote_0":{"id":"x1","name":"Foo","animated":false},"emote_1":null}}`)
	})

	res, err := api.EmotesByID(context.Background(), []string{"x1", "gone"})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.Emote{"x1": {ID: "x1", Name: "Foo"}}, res)
}

func TestEmotesByChannel(t *testing.T) {
	api := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"data":{
			"channel_0":{"emote_sets":[{"emotes":[{"data":{"id":"1","name":"one"}},{"data":null}]},{"emotes":[{"data":{"id":"2","name":"two","animated":true}}]}]},
			"channel_1":null
		}}`)
	})

	res, err := api.EmotesByChannel(context.Background(), []string{"c1", "c2"})
	require.NoError(t, err)

	assert.Equal(t, map[string][]domain.Emote{
		"c1": {{ID: "1", Name: "one"}, {ID: "2", Name: "two", Animated: true}},
	}, res)
}

func TestEmoteURL(t *testing.T) {
	assert.Equal(t, "https://cdn.7tv.app/emote/X1/2x.png", EmoteURL("cdn.7tv.app", domain.Emote{ID: "X1"}))
	assert.Equal(t, "https://cdn.7tv.app/emote/X2/2x.gif", EmoteURL("cdn.7tv.app", domain.Emote{ID: "X2", Animated: true}))
}
