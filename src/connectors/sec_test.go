package connectors_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/src/connectors"
)

func TestSECDilutionFilingsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "entityTicker:XYZ")
		assert.Contains(t, query, "formType:(S-1 OR S-3 OR 424B5)")
		assert.Contains(t, query, "sort:filingDate:desc")
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filings":[
			{"formType":"424B5","filingDate":"2024-03-10","maximumSharesToBeOffered":60000000,"totalSharesPreviouslySold":10000000},
			{"formType":"S-3","filingDate":"2024-01-02","maximumSharesToBeOffered":20000000}
		]}`))
	}))
	defer server.Close()

	client := connectors.NewSECClient("test-token", server.URL)

	filings, err := client.DilutionFilings(context.Background(), "XYZ")
	require.NoError(t, err)
	require.Len(t, filings, 2)

	assert.Equal(t, "424B5", filings[0].FormType)
	require.NotNil(t, filings[0].MaximumSharesToBeOffered)
	assert.InDelta(t, 6e7, *filings[0].MaximumSharesToBeOffered, 1)
	assert.Nil(t, filings[1].TotalSharesPreviouslySold)
}

func TestSECDilutionFilingsCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filings":[
			{"formType":"S-1"},{"formType":"S-3"},{"formType":"424B5"},
			{"formType":"S-1"},{"formType":"S-3"},{"formType":"424B5"},
			{"formType":"S-1"}
		]}`))
	}))
	defer server.Close()

	client := connectors.NewSECClient("test-token", server.URL)

	filings, err := client.DilutionFilings(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Len(t, filings, 5)
}

func TestSECDilutionFilingsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filings":[]}`))
	}))
	defer server.Close()

	client := connectors.NewSECClient("test-token", server.URL)

	filings, err := client.DilutionFilings(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.Empty(t, filings)
}
