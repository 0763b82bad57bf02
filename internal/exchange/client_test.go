package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/expenso/internal/exchange"
)

func TestClient_GetRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/currencies/usd.json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date":"2026-08-29","usd":{"eur":0.9123,"uah":41.37}}`))
	}))
	defer srv.Close()

	client := exchange.NewClient(srv.URL, time.Second)

	rate, err := client.GetRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "0.9123", rate.String())
}

func TestClient_GetRate_SameCurrency(t *testing.T) {
	// No request should be made.
	client := exchange.NewClient("http://127.0.0.1:1", time.Second)

	rate, err := client.GetRate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, "1", rate.String())
}

func TestClient_GetRate_Unavailable(t *testing.T) {
	t.Run("UnknownTarget", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"date":"2026-08-29","usd":{"eur":0.9}}`))
		}))
		defer srv.Close()

		client := exchange.NewClient(srv.URL, time.Second)

		_, err := client.GetRate(context.Background(), "USD", "XXX")
		assert.ErrorIs(t, err, exchange.ErrRateUnavailable)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := exchange.NewClient(srv.URL, time.Second)

		_, err := client.GetRate(context.Background(), "USD", "EUR")
		assert.ErrorIs(t, err, exchange.ErrRateUnavailable)
	})
}
