package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"adsboard/internal/domain"
	"adsboard/pkg/config"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

func newTestClient(baseURL string) *MetaClient {
	cfg := config.UpstreamConfig{
		BaseURL:            baseURL,
		RequestTimeout:     2 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       time.Millisecond,
		RateLimitPerSecond: 1000,
	}
	return NewMetaClient(cfg, logger.New("error"), testMetrics)
}

func TestMetaClient_ValidateToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("path = %s, want /me", r.URL.Path)
			}
			if r.URL.Query().Get("access_token") != "tok" {
				t.Errorf("access_token = %s, want tok", r.URL.Query().Get("access_token"))
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "1001"})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		if err := client.ValidateToken(context.Background(), "tok"); err != nil {
			t.Errorf("ValidateToken() error = %v", err)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.ValidateToken(context.Background(), "bad")
		if !errors.Is(err, domain.ErrUpstream) {
			t.Errorf("ValidateToken() error = %v, want ErrUpstream", err)
		}
	})
}

func TestMetaClient_ListAdAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/123/owned_ad_accounts" {
			t.Errorf("path = %s, want /123/owned_ad_accounts", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "act_1", "name": "Main", "account_status": 1},
				{"id": "act_2", "name": "Backup", "account_status": 2},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	accounts, err := client.ListAdAccounts(context.Background(), "tok", "123")
	if err != nil {
		t.Fatalf("ListAdAccounts() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("ListAdAccounts() returned %d accounts, want 2", len(accounts))
	}
	if accounts[0].ID != "act_1" || accounts[0].Status != 1 {
		t.Errorf("ListAdAccounts()[0] = %+v, want act_1 status 1", accounts[0])
	}
}

func TestMetaClient_InsightsParams(t *testing.T) {
	t.Run("date preset", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("date_preset") != "last_30d" {
				t.Errorf("date_preset = %s, want last_30d", q.Get("date_preset"))
			}
			if q.Get("time_increment") != "1" {
				t.Errorf("time_increment = %s, want 1", q.Get("time_increment"))
			}
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.AccountInsights(context.Background(), "tok", "act_1", domain.InsightQuery{DatePreset: "last_30d"})
		if err != nil {
			t.Fatalf("AccountInsights() error = %v", err)
		}
	})

	t.Run("custom range", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var tr map[string]string
			if err := json.Unmarshal([]byte(q.Get("time_range")), &tr); err != nil {
				t.Fatalf("time_range not valid JSON: %v", err)
			}
			if tr["since"] != "2024-06-01" || tr["until"] != "2024-06-10" {
				t.Errorf("time_range = %v, want 2024-06-01..2024-06-10", tr)
			}
			if q.Get("date_preset") != "" {
				t.Errorf("date_preset = %s, want empty with custom range", q.Get("date_preset"))
			}
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		_, err := client.CampaignInsights(context.Background(), "tok", "camp_9", domain.InsightQuery{
			DatePreset: "custom",
			StartDate:  "2024-06-01",
			EndDate:    "2024-06-10",
		})
		if err != nil {
			t.Fatalf("CampaignInsights() error = %v", err)
		}
	})

	t.Run("defaults to last_7d", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("date_preset"); got != "last_7d" {
				t.Errorf("date_preset = %s, want last_7d", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		if _, err := client.AccountInsights(context.Background(), "tok", "act_1", domain.InsightQuery{}); err != nil {
			t.Fatalf("AccountInsights() error = %v", err)
		}
	})
}

func TestMetaClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"date_start": "2024-06-01", "impressions": "100"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	records, err := client.AccountInsights(context.Background(), "tok", "act_1", domain.InsightQuery{DatePreset: "last_7d"})
	if err != nil {
		t.Fatalf("AccountInsights() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream called %d times, want 2", calls.Load())
	}
	if len(records) != 1 || string(records[0].Impressions) != "100" {
		t.Errorf("AccountInsights() = %+v, want one record with 100 impressions", records)
	}
}

func TestMetaClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.ListCampaigns(context.Background(), "tok", "act_1")
	if err == nil {
		t.Fatal("ListCampaigns() expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("upstream called %d times, want 1", calls.Load())
	}
}
