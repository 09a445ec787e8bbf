package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/confirmador/internal/models"
)

type staticConfigRepo struct {
	cfg *models.ShopifyConfig
}

func (r *staticConfigRepo) GetByShopDomain(string) (*models.ShopifyConfig, error) { return r.cfg, nil }
func (r *staticConfigRepo) GetActive() (*models.ShopifyConfig, error)            { return r.cfg, nil }
func (r *staticConfigRepo) Upsert(*models.ShopifyConfig) error                   { return nil }

func testClient(baseURL string) *Client {
	c := NewClient(&staticConfigRepo{cfg: &models.ShopifyConfig{
		ShopURL:     "tienda.myshopify.com",
		AccessToken: "test-token",
		Active:      true,
	}}, "2024-01", time.Second)
	c.BaseURLOverride = baseURL
	return c
}

func TestUpdateTagAppendsToExisting(t *testing.T) {
	var putBody map[string]map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "test-token" {
			t.Errorf("missing access token header")
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"order":{"tags":"COD, Urgente"}}`))
		case http.MethodPut:
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &putBody); err != nil {
				t.Errorf("bad PUT body: %v", err)
			}
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.UpdateTag(context.Background(), "gid://shopify/Order/123", "Confirmado"); err != nil {
		t.Fatalf("UpdateTag error: %v", err)
	}
	if putBody == nil {
		t.Fatalf("no PUT request received")
	}
	if got := putBody["order"]["tags"]; got != "COD, Urgente, Confirmado" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if got := putBody["order"]["id"]; got != "123" {
		t.Fatalf("unexpected order id: %v", got)
	}
}

func TestUpdateTagSkipsWhenPresent(t *testing.T) {
	putSeen := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"order":{"tags":"confirmado"}}`))
		case http.MethodPut:
			putSeen = true
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.UpdateTag(context.Background(), "123", "Confirmado"); err != nil {
		t.Fatalf("UpdateTag error: %v", err)
	}
	if putSeen {
		t.Fatalf("tag already present, PUT must be skipped")
	}
}

func TestCancelOrderPostsCancelEndpoint(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.CancelOrder(context.Background(), "gid://shopify/Order/456"); err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if gotPath != "/admin/api/2024-01/orders/456/cancel.json" {
		t.Fatalf("unexpected path %s", gotPath)
	}
}

func TestListOrdersSendsRangeQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("created_at_min") != "2026-01-01T00:00:00-03:00" || q.Get("status") != "any" || q.Get("limit") != "250" {
			t.Errorf("unexpected query: %v", q)
		}
		_, _ = w.Write([]byte(`{"orders":[{"id":1,"name":"#1001"},{"id":2,"name":"#1002"}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	orders, err := client.ListOrders(context.Background(), "2026-01-01T00:00:00-03:00", "2026-01-31T23:59:59-03:00")
	if err != nil {
		t.Fatalf("ListOrders error: %v", err)
	}
	if len(orders) != 2 || orders[0].Name != "#1001" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":"order already cancelled"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	if err := client.CancelOrder(context.Background(), "789"); err == nil {
		t.Fatalf("expected error on 422 response")
	}
}

func TestConfigMissing(t *testing.T) {
	client := NewClient(&staticConfigRepo{cfg: nil}, "2024-01", time.Second)
	if err := client.CancelOrder(context.Background(), "1"); err != ErrConfigMissing {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}

func TestGIDRoundTrip(t *testing.T) {
	if got := GID(5079187259672); got != "gid://shopify/Order/5079187259672" {
		t.Fatalf("unexpected gid %s", got)
	}
	if got := NumericOrderID("gid://shopify/Order/5079187259672"); got != "5079187259672" {
		t.Fatalf("unexpected numeric id %s", got)
	}
	if got := NumericOrderID("12345"); got != "12345" {
		t.Fatalf("bare ids must pass through, got %s", got)
	}
}
