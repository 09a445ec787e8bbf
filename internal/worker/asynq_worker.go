package worker

import (
	"context"
	"encoding/json"

	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/provider"
	"github.com/confirmador/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer executes the queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskShopifyTagUpdate, c.handleShopifyTagUpdate)
	mux.HandleFunc(queue.TaskShopifyCancel, c.handleShopifyCancel)
	mux.HandleFunc(queue.TaskReplyMessage, c.handleReplyMessage)
}

func (c *Consumer) handleShopifyTagUpdate(ctx context.Context, task *asynq.Task) error {
	var payload queue.ShopifyTagUpdatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tag_update_unmarshal_failed", "error", err)
		return err
	}
	if payload.ShopifyOrderID == "" || payload.Tag == "" {
		logger.Debugw("worker_tag_update_skip_invalid_payload")
		return nil
	}
	if err := c.ShopifyClient.UpdateTag(ctx, payload.ShopifyOrderID, payload.Tag); err != nil {
		logger.Warnw("worker_tag_update_failed", "shopify_order_id", payload.ShopifyOrderID, "error", err)
		return err
	}
	logger.Infow("worker_tag_updated", "shopify_order_id", payload.ShopifyOrderID, "tag", payload.Tag)
	return nil
}

func (c *Consumer) handleShopifyCancel(ctx context.Context, task *asynq.Task) error {
	var payload queue.ShopifyCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.ShopifyOrderID == "" {
		logger.Debugw("worker_cancel_skip_invalid_payload")
		return nil
	}
	if err := c.ShopifyClient.CancelOrder(ctx, payload.ShopifyOrderID); err != nil {
		logger.Warnw("worker_cancel_failed", "shopify_order_id", payload.ShopifyOrderID, "error", err)
		return err
	}
	logger.Infow("worker_order_cancelled", "shopify_order_id", payload.ShopifyOrderID)
	return nil
}

func (c *Consumer) handleReplyMessage(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReplyMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reply_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.TemplateID == "" || payload.ChatID == "" {
		logger.Debugw("worker_reply_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if err := c.ConfirmationService.SendReply(ctx, payload.OrderID, payload.TemplateID, payload.ChatID); err != nil {
		logger.Warnw("worker_reply_failed", "order_id", payload.OrderID, "template_id", payload.TemplateID, "error", err)
		return err
	}
	logger.Infow("worker_reply_sent", "order_id", payload.OrderID, "template_id", payload.TemplateID)
	return nil
}
