package queue

import (
	"encoding/json"

	"github.com/confirmador/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShopifyTagUpdate pushes a tag back to the storefront.
	TaskShopifyTagUpdate = constants.TaskShopifyTagUpdate
	// TaskShopifyCancel cancels an order on the storefront.
	TaskShopifyCancel = constants.TaskShopifyCancel
	// TaskReplyMessage sends a delayed templated reply to a customer.
	TaskReplyMessage = constants.TaskReplyMessage
)

// ShopifyTagUpdatePayload carries a storefront tag update.
type ShopifyTagUpdatePayload struct {
	ShopifyOrderID string `json:"shopify_order_id"`
	Tag            string `json:"tag"`
}

// ShopifyCancelPayload carries a storefront cancellation.
type ShopifyCancelPayload struct {
	ShopifyOrderID string `json:"shopify_order_id"`
}

// ReplyMessagePayload carries a templated acknowledgment send. The
// anti-automation delay is realized through the task's ProcessIn option.
type ReplyMessagePayload struct {
	OrderID    uint   `json:"order_id"`
	TemplateID string `json:"template_id"`
	ChatID     string `json:"chat_id"`
}

// NewShopifyTagUpdateTask builds a tag update task.
func NewShopifyTagUpdateTask(payload ShopifyTagUpdatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShopifyTagUpdate, body), nil
}

// NewShopifyCancelTask builds a cancellation task.
func NewShopifyCancelTask(payload ShopifyCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShopifyCancel, body), nil
}

// NewReplyMessageTask builds a delayed reply task.
func NewReplyMessageTask(payload ReplyMessagePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReplyMessage, body), nil
}
