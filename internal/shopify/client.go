package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/repository"
)

// ErrConfigMissing is returned when no active storefront credential exists.
var ErrConfigMissing = errors.New("shopify config not found")

// Client talks to the Shopify Admin REST API. Credentials are looked up per
// call from the config repository so operator edits take effect immediately.
type Client struct {
	configRepo repository.ShopifyConfigRepository
	http       *http.Client
	apiVersion string

	// BaseURLOverride replaces the https://{shop} base, for tests.
	BaseURLOverride string
}

// NewClient creates a Shopify client.
func NewClient(configRepo repository.ShopifyConfigRepository, apiVersion string, timeout time.Duration) *Client {
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = "2024-01"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		configRepo: configRepo,
		http:       &http.Client{Timeout: timeout},
		apiVersion: apiVersion,
	}
}

// UpdateTag appends a tag to the order's tag list if not already present and
// writes the full list back. Safe to call repeatedly.
func (c *Client) UpdateTag(ctx context.Context, shopifyOrderID, tag string) error {
	cfg, err := c.activeConfig()
	if err != nil {
		return err
	}
	orderID := NumericOrderID(shopifyOrderID)

	current, err := c.fetchTags(ctx, cfg, orderID)
	if err != nil {
		return err
	}
	if tagPresent(current, tag) {
		logger.Debugw("shopify_tag_already_present", "order_id", orderID, "tag", tag)
		return nil
	}

	updated := tag
	if strings.TrimSpace(current) != "" {
		updated = current + ", " + tag
	}

	body, err := json.Marshal(map[string]interface{}{
		"order": map[string]interface{}{
			"id":   orderID,
			"tags": updated,
		},
	})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/admin/api/%s/orders/%s.json", c.apiVersion, orderID)
	if err := c.do(ctx, cfg, http.MethodPut, path, nil, body, nil); err != nil {
		return err
	}
	logger.Infow("shopify_tag_updated", "order_id", orderID, "tags", updated)
	return nil
}

// CancelOrder cancels the order on Shopify with default restock behavior.
func (c *Client) CancelOrder(ctx context.Context, shopifyOrderID string) error {
	cfg, err := c.activeConfig()
	if err != nil {
		return err
	}
	orderID := NumericOrderID(shopifyOrderID)
	path := fmt.Sprintf("/admin/api/%s/orders/%s/cancel.json", c.apiVersion, orderID)
	if err := c.do(ctx, cfg, http.MethodPost, path, nil, []byte("{}"), nil); err != nil {
		return err
	}
	logger.Infow("shopify_order_cancelled", "order_id", orderID)
	return nil
}

// ListOrders fetches orders created inside the date range (any status).
func (c *Client) ListOrders(ctx context.Context, createdAtMin, createdAtMax string) ([]OrderPayload, error) {
	cfg, err := c.activeConfig()
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"created_at_min": {createdAtMin},
		"created_at_max": {createdAtMax},
		"limit":          {"250"},
		"status":         {"any"},
	}
	var result struct {
		Orders []OrderPayload `json:"orders"`
	}
	path := fmt.Sprintf("/admin/api/%s/orders.json", c.apiVersion)
	if err := c.do(ctx, cfg, http.MethodGet, path, query, nil, &result); err != nil {
		return nil, err
	}
	return result.Orders, nil
}

func (c *Client) fetchTags(ctx context.Context, cfg *models.ShopifyConfig, orderID string) (string, error) {
	var result struct {
		Order struct {
			Tags string `json:"tags"`
		} `json:"order"`
	}
	path := fmt.Sprintf("/admin/api/%s/orders/%s.json", c.apiVersion, orderID)
	query := url.Values{"fields": {"tags"}}
	if err := c.do(ctx, cfg, http.MethodGet, path, query, nil, &result); err != nil {
		return "", err
	}
	return result.Order.Tags, nil
}

func (c *Client) activeConfig() (*models.ShopifyConfig, error) {
	cfg, err := c.configRepo.GetActive()
	if err != nil {
		return nil, err
	}
	if cfg == nil || strings.TrimSpace(cfg.ShopURL) == "" {
		return nil, ErrConfigMissing
	}
	return cfg, nil
}

func (c *Client) do(ctx context.Context, cfg *models.ShopifyConfig, method, path string, query url.Values, body []byte, dest interface{}) error {
	base := c.BaseURLOverride
	if base == "" {
		base = "https://" + cfg.ShopURL
	}
	target := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set(constants.HeaderShopifyToken, cfg.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("shopify api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// NumericOrderID extracts the numeric id from a gid form external id
// ("gid://shopify/Order/123" -> "123"). Bare numeric ids pass through.
func NumericOrderID(shopifyOrderID string) string {
	parts := strings.Split(shopifyOrderID, "/")
	return parts[len(parts)-1]
}

// GID builds the gid form external id from a numeric Shopify order id.
func GID(orderID int64) string {
	return fmt.Sprintf("gid://shopify/Order/%d", orderID)
}

func tagPresent(tags, tag string) bool {
	for _, existing := range strings.Split(tags, ",") {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}
