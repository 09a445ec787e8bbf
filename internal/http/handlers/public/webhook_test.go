package public

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/confirmador/internal/config"
	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/provider"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/service"
	"github.com/confirmador/internal/shopify"
	"github.com/confirmador/internal/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type downMessenger struct{}

func (downMessenger) Ready() bool { return false }
func (downMessenger) Status(context.Context) (whatsapp.Status, error) {
	return whatsapp.Status{}, nil
}
func (downMessenger) SendMessage(context.Context, string, string) error { return nil }
func (downMessenger) NumberID(context.Context, string) (string, error)  { return "", nil }
func (downMessenger) ResolveContact(context.Context, string) (whatsapp.Contact, error) {
	return whatsapp.Contact{}, nil
}

func setupWebhookTest(t *testing.T) (*gin.Engine, repository.OrderRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.LineItem{}, &models.MessageTemplate{}, &models.ShopifyConfig{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	orders := repository.NewOrderRepository(db)
	configs := repository.NewShopifyConfigRepository(db)
	if err := configs.Upsert(&models.ShopifyConfig{
		ShopURL:       "tienda.myshopify.com",
		AccessToken:   "token",
		WebhookSecret: "shh",
		Active:        true,
	}); err != nil {
		t.Fatalf("seed config failed: %v", err)
	}

	templates := service.NewTemplateService(repository.NewTemplateRepository(db))
	tasks, _ := queue.NewClient(nil)
	shopClient := shopify.NewClient(configs, "2024-01", time.Second)
	confirmation := service.NewConfirmationService(orders, templates, downMessenger{}, shopClient, tasks, service.NewZeroDelayer(), service.ConfirmationOptions{})

	container := &provider.Container{
		Config:              &config.Config{},
		QueueClient:         tasks,
		OrderRepo:           orders,
		TemplateRepo:        repository.NewTemplateRepository(db),
		ShopifyConfigRepo:   configs,
		Messenger:           downMessenger{},
		ShopifyClient:       shopClient,
		TemplateService:     templates,
		ConfirmationService: confirmation,
		IngestService:       service.NewIngestService(orders, configs),
	}
	handler := New(container)

	r := gin.New()
	r.POST("/api/webhooks/shopify", handler.ShopifyOrderWebhook)
	return r, orders
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(constants.HeaderShopifyShopDomain, "tienda.myshopify.com")
	if signature != "" {
		req.Header.Set(constants.HeaderShopifyHmac, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	r, orders := setupWebhookTest(t)
	body := []byte(`{"id":1,"name":"#1001"}`)

	if w := postWebhook(r, body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature: expected 401, got %d", w.Code)
	}
	if w := postWebhook(r, body, sign("wrong", body)); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: expected 401, got %d", w.Code)
	}

	stored, _ := orders.GetByShopifyOrderID("gid://shopify/Order/1")
	if stored != nil {
		t.Fatalf("rejected webhook must not persist anything")
	}
}

func TestWebhookIngestsOrder(t *testing.T) {
	r, orders := setupWebhookTest(t)
	body := []byte(`{"id":77,"name":"#1077","total_price":"120000.00","currency":"COP","customer":{"first_name":"Ana","phone":"+573007654321"},"line_items":[{"name":"Bolso","quantity":1,"price":"120000.00"}]}`)

	w := postWebhook(r, body, sign("shh", body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "ok" {
		t.Fatalf("expected plain ok body, got %q", w.Body.String())
	}

	stored, err := orders.GetByShopifyOrderID("gid://shopify/Order/77")
	if err != nil || stored == nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if stored.CustomerName != "Ana" || len(stored.Items) != 1 {
		t.Fatalf("unexpected order: %+v", stored)
	}
}

func TestWebhookRedeliveryDoesNotDuplicate(t *testing.T) {
	r, orders := setupWebhookTest(t)
	body := []byte(`{"id":88,"name":"#1088","line_items":[{"name":"Bolso","quantity":1,"price":"1000.00"}]}`)
	signature := sign("shh", body)

	if w := postWebhook(r, body, signature); w.Code != http.StatusOK {
		t.Fatalf("first delivery failed: %d", w.Code)
	}
	if w := postWebhook(r, body, signature); w.Code != http.StatusOK {
		t.Fatalf("redelivery failed: %d", w.Code)
	}

	var count int64
	stored, _ := orders.GetByShopifyOrderID("gid://shopify/Order/88")
	if stored == nil {
		t.Fatalf("order missing")
	}
	orderList, total, err := orders.List(repository.OrderListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	count = total
	if count != 1 || len(orderList) != 1 {
		t.Fatalf("redelivery created duplicates: %d rows", count)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("items duplicated: %d", len(stored.Items))
	}
}
