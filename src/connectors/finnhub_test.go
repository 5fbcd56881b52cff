package connectors_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/src/connectors"
)

func TestFinnhubQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":178.25,"pc":175.00,"o":176.10,"h":179.00,"l":175.80,"dp":1.86}`))
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("test-key", server.URL)

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 178.25, quote.Current, 1e-9)
	assert.InDelta(t, 175.00, quote.PrevClose, 1e-9)
	assert.InDelta(t, 1.86, quote.ChangePct, 1e-9)
}

func TestFinnhubMetricsNestedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/metric", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("metric"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metric":{"10DayAverageTradingVolume":12.5,"52WeekHigh":199.62,"52WeekLow":124.17}}`))
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("test-key", server.URL)

	metrics, err := client.Metrics(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, metrics.AvgVolume10d)
	assert.InDelta(t, 12.5, *metrics.AvgVolume10d, 1e-9)
	require.NotNil(t, metrics.Week52High)
	assert.InDelta(t, 199.62, *metrics.Week52High, 1e-9)
}

func TestFinnhubMetricsAbsentFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metric":{}}`))
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("test-key", server.URL)

	metrics, err := client.Metrics(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, metrics.AvgVolume10d)
	assert.Nil(t, metrics.Week52High)
	assert.Nil(t, metrics.Week52Low)
}

func TestFinnhubCompanyNewsWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "2024-03-08", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-03-15", r.URL.Query().Get("to"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"headline":"Apple announces buyback","datetime":1710480000,"source":"Reuters"}]`))
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("test-key", server.URL)

	to := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	articles, err := client.CompanyNews(context.Background(), "AAPL", to.AddDate(0, 0, -7), to)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Apple announces buyback", articles[0].Headline)
}

func TestFinnhubRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":10.0}`))
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("test-key", server.URL)

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, quote.Current, 1e-9)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFinnhubDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := connectors.NewFinnhubClient("bad-key", server.URL)

	_, err := client.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
