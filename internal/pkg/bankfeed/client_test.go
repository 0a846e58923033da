package bankfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTransactions_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"mid": "14",
			"code": "00",
			"des": "success",
			"transactions": [
				{
					"tranDate": "02/04/2024",
					"Reference": "5243 - 51972",
					"CD": "+",
					"Amount": "50,000",
					"Description": "MBVCB.123 dtn042137 chuyen tien",
					"PCTime": "080910",
					"DorCCode": "C",
					"SeqNo": "51972"
				},
				{
					"TransactionDate": "03/04/2024",
					"CD": "-",
					"Amount": "10,000",
					"Remark": "rut tien",
					"PostingTime": "091011",
					"DorCCode": "D",
					"SeqNo": "51973"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient()
	txns, err := client.FetchTransactions(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "5243 - 51972", txns[0].Reference)
	assert.Equal(t, int64(50000), txns[0].Amount)
	assert.Equal(t, "MBVCB.123 dtn042137 chuyen tien", txns[0].Description)
	assert.Equal(t, "02/04/2024", txns[0].Date)
	assert.Equal(t, "080910", txns[0].Time)
	assert.True(t, txns[0].Inbound)

	// Second entry exercises the fallback fields and the debit direction.
	assert.Equal(t, "51973", txns[1].Reference)
	assert.Equal(t, int64(10000), txns[1].Amount)
	assert.Equal(t, "rut tien", txns[1].Description)
	assert.Equal(t, "03/04/2024", txns[1].Date)
	assert.Equal(t, "091011", txns[1].Time)
	assert.False(t, txns[1].Inbound)
}

func TestFetchTransactions_ErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": "96", "des": "invalid token", "transactions": []}`))
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.FetchTransactions(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=96")
}

func TestFetchTransactions_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.FetchTransactions(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestFetchTransactions_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client := NewClient()
	_, err := client.FetchTransactions(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestFetchTransactions_EmptyURL(t *testing.T) {
	client := NewClient()
	_, err := client.FetchTransactions(context.Background(), "   ")
	require.Error(t, err)
}

func TestNormalizeTransaction_CommaAmounts(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "10,000", want: 10000},
		{in: "1,234,567", want: 1234567},
		{in: " 50000 ", want: 50000},
		{in: "garbage", want: 0},
	}

	for _, tt := range tests {
		got := normalizeTransaction(rawTransaction{Amount: tt.in})
		if got.Amount != tt.want {
			t.Fatalf("normalizeTransaction(Amount=%q).Amount = %d, want %d", tt.in, got.Amount, tt.want)
		}
	}
}
