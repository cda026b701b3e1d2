package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

func TestFetchOrders_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/dispatch/partners/p-1/orders" {
			t.Fatalf("path = %s, want /api/dispatch/partners/p-1/orders", r.URL.Path)
		}

		resp := []model.OrderPayload{{
			ID:           "ORD010",
			CustomerName: "Anita",
			Items:        []model.OrderItem{{Name: "Dosa", Quantity: 1, Price: decimal.RequireFromString("90")}},
			DeliveryFee:  decimal.RequireFromString("30"),
		}}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, code, retry, err := client.FetchOrders(ctx, "p-1")
	if err != nil {
		t.Fatalf("FetchOrders error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", code, http.StatusOK)
	}
	if retry != 0 {
		t.Fatalf("retryAfter = %v, want 0", retry)
	}
	if len(res) != 1 || res[0].ID != "ORD010" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if !res[0].DeliveryFee.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected delivery fee: %s", res[0].DeliveryFee)
	}
}

func TestFetchOrders_TooManyRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, code, retry, err := client.FetchOrders(ctx, "p-1")
	if err != nil {
		t.Fatalf("FetchOrders error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil response for 429, got %+v", res)
	}
	if code != http.StatusTooManyRequests {
		t.Fatalf("status code = %d, want %d", code, http.StatusTooManyRequests)
	}
	if retry < 5*time.Second {
		t.Fatalf("retryAfter = %v, want at least 5s", retry)
	}
}

func TestFetchOrders_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, code, retry, err := client.FetchOrders(ctx, "p-1")
	if err != nil {
		t.Fatalf("FetchOrders error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil response for 204, got %+v", res)
	}
	if code != http.StatusNoContent {
		t.Fatalf("status code = %d, want %d", code, http.StatusNoContent)
	}
	if retry != 0 {
		t.Fatalf("retryAfter = %v, want 0", retry)
	}
}

func TestFetchOrders_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, code, _, err := NewClient(ts.URL).FetchOrders(context.Background(), "p-1")
	if err == nil {
		t.Fatalf("expected error for 502")
	}
	if code != http.StatusBadGateway {
		t.Fatalf("status code = %d, want %d", code, http.StatusBadGateway)
	}
}

func TestFetchOrders_NotConfigured(t *testing.T) {
	var c *Client
	if _, _, _, err := c.FetchOrders(context.Background(), "p-1"); err == nil {
		t.Fatalf("expected error for nil client")
	}

	if _, _, _, err := NewClient("").FetchOrders(context.Background(), "p-1"); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestNewClient_AddsScheme(t *testing.T) {
	c := NewClient("dispatch:8081/")
	if c.feedURL != "http://dispatch:8081" {
		t.Fatalf("feedURL = %q, want %q", c.feedURL, "http://dispatch:8081")
	}

	c = NewClient("https://dispatch.example.com")
	if c.feedURL != "https://dispatch.example.com" {
		t.Fatalf("feedURL = %q, want %q", c.feedURL, "https://dispatch.example.com")
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"3", 3 * time.Second},
		{"", 0},
		{"-1", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Retry-After", tt.value)
		if got := retryAfter(h); got != tt.want {
			t.Fatalf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
