package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"explorer-backend/domain/exploration"
)

const pageOne = `[
  {"symbol":"btc","name":"Bitcoin","current_price":65000.0,"market_cap":1200000000000.0,"price_change_percentage_24h":2.5},
  {"symbol":"eth","name":"Ethereum","current_price":3200.0,"market_cap":400000000000.0,"price_change_percentage_24h":-1.2}
]`

const pageTwo = `[
  {"symbol":"sol","name":"Solana","current_price":150.0,"market_cap":70000000000.0,"price_change_percentage_24h":null}
]`

func newTestClient(t *testing.T, pages int, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(pages, 250, time.Second, zap.NewNop(),
		WithBaseURL(server.URL),
		WithRateLimit(1000),
	)
}

func TestClient_Markets_PagesCombined(t *testing.T) {
	client := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(pageOne))
		case "2":
			w.Write([]byte(pageTwo))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	entities, skipped, err := client.Markets(context.Background())

	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, entities, 3)

	btc, ok := entities[0].(*exploration.CryptoAsset)
	require.True(t, ok)
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, "BTC-USD", btc.Key())
	assert.Equal(t, 65000.0, btc.Price)
	assert.Equal(t, 2.5, btc.Change24h)

	// Null JSON fields decode as zero values.
	sol, ok := entities[2].(*exploration.CryptoAsset)
	require.True(t, ok)
	assert.Equal(t, 0.0, sol.Change24h)
}

func TestClient_Markets_SkipsFailedPage(t *testing.T) {
	client := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(pageOne))
	})

	entities, skipped, err := client.Markets(context.Background())

	require.NoError(t, err)
	assert.Len(t, entities, 2)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "page 2")
	assert.Contains(t, skipped[0], "429")
}

func TestClient_Markets_AllPagesFail(t *testing.T) {
	client := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	entities, skipped, err := client.Markets(context.Background())

	require.Error(t, err)
	assert.Nil(t, entities)
	assert.Len(t, skipped, 2)
}

func TestClient_Markets_MalformedBodySkipsPage(t *testing.T) {
	client := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	entities, skipped, err := client.Markets(context.Background())

	require.Error(t, err)
	assert.Nil(t, entities)
	assert.Len(t, skipped, 1)
}

func TestClient_Markets_CancelledContext(t *testing.T) {
	client := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageOne))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.Markets(ctx)
	assert.Error(t, err)
}
