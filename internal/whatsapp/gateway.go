package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/confirmador/internal/config"
	"github.com/confirmador/internal/logger"
)

const readyCacheTTL = 10 * time.Second

// GatewayClient talks to the WhatsApp gateway sidecar over REST. The sidecar
// owns the browser session, QR pairing and reconnection; this client only
// consumes its messaging surface.
type GatewayClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	lastReady    bool
	lastReadyAt  time.Time
}

// NewGatewayClient creates a gateway client from config.
func NewGatewayClient(cfg config.WhatsAppConfig) *GatewayClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GatewayClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ready reports session readiness. The result is cached briefly so the
// scheduler precondition check does not hammer the gateway.
func (c *GatewayClient) Ready() bool {
	c.mu.Lock()
	if time.Since(c.lastReadyAt) < readyCacheTTL {
		ready := c.lastReady
		c.mu.Unlock()
		return ready
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := c.Status(ctx)
	ready := err == nil && status.Connected

	c.mu.Lock()
	c.lastReady = ready
	c.lastReadyAt = time.Now()
	c.mu.Unlock()
	return ready
}

// Status fetches the gateway session state.
func (c *GatewayClient) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/api/status", nil, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// SendMessage delivers text to a chat id.
func (c *GatewayClient) SendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]string{
		"chat_id": chatID,
		"message": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gateway send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// NumberID resolves a bare phone number to its canonical chat id.
func (c *GatewayClient) NumberID(ctx context.Context, phone string) (string, error) {
	var result struct {
		Exists bool   `json:"exists"`
		ChatID string `json:"chat_id"`
	}
	query := url.Values{"phone": {phone}}
	if err := c.getJSON(ctx, "/api/number-id", query, &result); err != nil {
		return "", err
	}
	if !result.Exists || result.ChatID == "" {
		return "", ErrNotRegistered
	}
	return result.ChatID, nil
}

// ResolveContact resolves an inbound sender id to its contact.
func (c *GatewayClient) ResolveContact(ctx context.Context, senderID string) (Contact, error) {
	var contact Contact
	query := url.Values{"id": {senderID}}
	if err := c.getJSON(ctx, "/api/contact", query, &contact); err != nil {
		return Contact{}, err
	}
	return contact, nil
}

func (c *GatewayClient) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Debugw("whatsapp_gateway_request_failed",
			"path", path,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(raw)),
		)
		return fmt.Errorf("gateway request failed: %s status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
