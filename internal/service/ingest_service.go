package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/shopify"
)

// Ingest sources, recorded in the creation timeline entry.
const (
	SourceWebhook = "webhook"
	SourceSync    = "sync"
)

// IngestService verifies inbound Shopify webhooks and upserts their orders
// into local storage. It never sends messages itself; dispatch is the
// caller's decision.
type IngestService struct {
	orders  repository.OrderRepository
	configs repository.ShopifyConfigRepository
}

func NewIngestService(orders repository.OrderRepository, configs repository.ShopifyConfigRepository) *IngestService {
	return &IngestService{orders: orders, configs: configs}
}

// VerifyWebhook checks the HMAC-SHA256 signature over the raw request body
// against the stored webhook secret for the shop. Any gap, missing header,
// unknown shop or empty secret, fails verification.
func (s *IngestService) VerifyWebhook(shopDomain, signature string, body []byte) error {
	if strings.TrimSpace(signature) == "" {
		return ErrSignatureInvalid
	}
	cfg, err := s.configs.GetByShopDomain(shopDomain)
	if err != nil {
		logger.Errorw("webhook_config_lookup_failed", "shop", shopDomain, "error", err)
		return ErrSignatureInvalid
	}
	if cfg == nil || cfg.WebhookSecret == "" {
		logger.Warnw("webhook_secret_missing", "shop", shopDomain)
		return ErrSignatureInvalid
	}
	mac := hmac.New(sha256.New, []byte(cfg.WebhookSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureInvalid
	}
	return nil
}

// Ingest upserts a Shopify order payload. The returned bool reports whether
// the order was newly created. Re-ingesting an existing order refreshes the
// customer and commercial fields and replaces the line items, but never
// touches the local status or its markers.
func (s *IngestService) Ingest(payload shopify.OrderPayload, source string) (*models.Order, bool, error) {
	gid := shopify.GID(payload.ID)
	fields := mapOrderFields(payload)

	existing, err := s.orders.GetByShopifyOrderID(gid)
	if err != nil {
		return nil, false, err
	}

	created := existing == nil
	var orderID uint
	if created {
		order := &models.Order{
			ShopifyOrderID: gid,
			OrderNumber:    fields.orderNumber,
			CustomerName:   fields.customerName,
			CustomerPhone:  fields.customerPhone,
			CustomerEmail:  fields.customerEmail,
			TotalValue:     fields.total,
			Currency:       fields.currency,
			Status:         constants.OrderStatusPending,
			FinancialStatus:   payload.FinancialStatus,
			FulfillmentStatus: payload.FulfillmentStatus,
			PaymentGateway:    payload.Gateway,
			Address:        fields.address,
			Timeline: models.TimelineEntries{
				models.NewTimelineEntry(constants.TimelineOrderCreated, creationDetails(source)),
			},
		}
		if err := s.orders.Create(order); err != nil {
			return nil, false, err
		}
		orderID = order.ID
	} else {
		orderID = existing.ID
		if err := s.orders.Updates(orderID, map[string]interface{}{
			"order_number":       fields.orderNumber,
			"customer_name":      fields.customerName,
			"customer_phone":     fields.customerPhone,
			"customer_email":     fields.customerEmail,
			"total_value":        fields.total,
			"currency":           fields.currency,
			"financial_status":   payload.FinancialStatus,
			"fulfillment_status": payload.FulfillmentStatus,
			"payment_gateway":    payload.Gateway,
			"address":            fields.address,
		}); err != nil {
			return nil, false, err
		}
	}

	if err := s.orders.ReplaceItems(orderID, mapLineItems(payload.LineItems)); err != nil {
		return nil, false, err
	}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, false, err
	}
	logger.Infow("order_ingested",
		"shopify_order_id", gid,
		"order_number", fields.orderNumber,
		"source", source,
		"created", created,
	)
	return order, created, nil
}

func creationDetails(source string) string {
	if source == SourceSync {
		return "Importado via sincronização"
	}
	return "Recebido via Webhook"
}

type orderFields struct {
	orderNumber   string
	customerName  string
	customerPhone string
	customerEmail string
	total         models.Money
	currency      string
	address       string
}

func mapOrderFields(p shopify.OrderPayload) orderFields {
	f := orderFields{
		orderNumber:   strings.TrimSpace(p.Name),
		customerName:  "Guest",
		customerPhone: strings.TrimSpace(p.Phone),
		customerEmail: strings.TrimSpace(p.Email),
		currency:      strings.TrimSpace(p.Currency),
	}
	if f.orderNumber == "" {
		f.orderNumber = p.OrderNumber.String()
	}
	if f.orderNumber == "" {
		f.orderNumber = "N/A"
	}
	if p.Customer != nil {
		name := strings.TrimSpace(strings.TrimSpace(p.Customer.FirstName) + " " + strings.TrimSpace(p.Customer.LastName))
		if name != "" {
			f.customerName = name
		}
		if f.customerPhone == "" {
			f.customerPhone = strings.TrimSpace(p.Customer.Phone)
		}
		if f.customerEmail == "" {
			f.customerEmail = strings.TrimSpace(p.Customer.Email)
		}
	}
	if f.customerPhone == "" && p.BillingAddress != nil {
		f.customerPhone = strings.TrimSpace(p.BillingAddress.Phone)
	}
	if f.customerEmail == "" {
		f.customerEmail = strings.TrimSpace(p.ContactEmail)
	}
	if f.currency == "" {
		f.currency = constants.DefaultCurrency
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(p.TotalPrice)); err == nil {
		f.total = models.NewMoneyFromDecimal(d)
	}
	f.address = serializeAddress(p)
	return f
}

// serializeAddress keeps the full Shopify address as JSON so later address
// corrections do not lose fields. Shipping wins over billing.
func serializeAddress(p shopify.OrderPayload) string {
	addr := p.ShippingAddress
	if addr == nil {
		addr = p.BillingAddress
	}
	if addr == nil {
		return ""
	}
	data, err := json.Marshal(addr)
	if err != nil {
		return ""
	}
	return string(data)
}

func mapLineItems(items []shopify.LineItemPayload) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		name := it.Name
		if name == "" {
			name = it.Title
		}
		price := models.Money{}
		if d, err := decimal.NewFromString(strings.TrimSpace(it.Price)); err == nil {
			price = models.NewMoneyFromDecimal(d)
		}
		out = append(out, models.LineItem{
			Name:     name,
			Quantity: it.Quantity,
			Price:    price,
			SKU:      it.SKU,
			Variant:  it.VariantTitle,
		})
	}
	return out
}
