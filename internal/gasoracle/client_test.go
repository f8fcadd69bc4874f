package gasoracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Estimates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer credential, got %q", got)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"blockNumber":  18000000,
			"avgBlockTime": 12.1,
			"p25":          22.0,
			"p50":          31.5,
			"p75":          48.0,
			"p90":          95.0,
			"pending": []map[string]interface{}{
				{"hash": "0x1", "from": "0xa", "to": "0xrouter", "gasPrice": 60.0, "value": 1.5, "input": "0x38ed1739"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")

	est, err := client.Estimates(context.Background())
	if err != nil {
		t.Fatalf("Estimates: %v", err)
	}

	if est.BlockNumber != 18000000 {
		t.Errorf("expected block 18000000, got %d", est.BlockNumber)
	}
	if est.Gas.P50 != 31.5 {
		t.Errorf("expected p50 31.5, got %v", est.Gas.P50)
	}
	if len(est.Pending) != 1 || est.Pending[0].GasPrice != 60 {
		t.Errorf("unexpected pending list: %+v", est.Pending)
	}
}

func TestClient_Estimates_MalformedPercentilesRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// p25 > p50 violates the percentile invariant.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"blockNumber": 1, "p25": 50.0, "p50": 30.0, "p75": 60.0, "p90": 80.0,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	if _, err := client.Estimates(context.Background()); err == nil {
		t.Fatal("expected error for unordered percentiles")
	}
}

func TestClient_Estimates_HTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	if _, err := client.Estimates(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestClient_Configured(t *testing.T) {
	if NewClient("https://example.com", "").Configured() {
		t.Error("missing API key must leave the client unconfigured")
	}
	if NewClient("", "key").Configured() {
		t.Error("missing endpoint must leave the client unconfigured")
	}
	if !NewClient("https://example.com", "key").Configured() {
		t.Error("endpoint plus key should be configured")
	}

	var nilClient *Client
	if nilClient.Configured() {
		t.Error("nil client must report unconfigured")
	}
}
