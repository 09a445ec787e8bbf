package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/shopify"
	"github.com/confirmador/internal/whatsapp"
)

// ConfirmationOptions carries the tunables of the confirmation flow.
type ConfirmationOptions struct {
	CountryPrefix string
	ChatIDSuffix  string
	StoreURL      string
}

// ConfirmationService drives the order confirmation state machine: the
// initial WhatsApp dispatch, the inbound digit replies and the storefront
// side effects they trigger.
type ConfirmationService struct {
	orders    repository.OrderRepository
	templates *TemplateService
	messenger whatsapp.Messenger
	shop      *shopify.Client
	tasks     *queue.Client
	delayer   Delayer
	opts      ConfirmationOptions
}

func NewConfirmationService(
	orders repository.OrderRepository,
	templates *TemplateService,
	messenger whatsapp.Messenger,
	shop *shopify.Client,
	tasks *queue.Client,
	delayer Delayer,
	opts ConfirmationOptions,
) *ConfirmationService {
	if opts.ChatIDSuffix == "" {
		opts.ChatIDSuffix = "@c.us"
	}
	return &ConfirmationService{
		orders:    orders,
		templates: templates,
		messenger: messenger,
		shop:      shop,
		tasks:     tasks,
		delayer:   delayer,
		opts:      opts,
	}
}

// ResolveChatID turns a raw customer phone into a deliverable chat id. The
// gateway lookup is authoritative for "number does not exist"; any transport
// failure falls back to the digits plus the default suffix.
func (s *ConfirmationService) ResolveChatID(ctx context.Context, rawPhone string) (string, error) {
	digits := NormalizePhone(rawPhone, s.opts.CountryPrefix)
	if digits == "" {
		return "", ErrPhoneMissing
	}
	chatID, err := s.messenger.NumberID(ctx, digits)
	if err != nil {
		if errors.Is(err, whatsapp.ErrNotRegistered) {
			return "", err
		}
		logger.Warnw("number_id_lookup_failed", "phone", digits, "error", err)
		return digits + s.opts.ChatIDSuffix, nil
	}
	if chatID == "" {
		chatID = digits + s.opts.ChatIDSuffix
	}
	return chatID, nil
}

// SendConfirmation dispatches the initial confirmation message for an order.
// It is idempotent: once the sent marker is stamped further calls are no-ops,
// so webhook retries never double-message a customer.
func (s *ConfirmationService) SendConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if order.MessageSentAt != nil {
		logger.Debugw("confirmation_already_sent", "order_id", order.ID)
		return nil
	}
	return s.dispatch(ctx, order)
}

// SendManual re-dispatches the confirmation message on operator request. The
// sent marker does not block it, but terminal orders are left alone.
func (s *ConfirmationService) SendManual(ctx context.Context, orderID uint) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.IsTerminal() {
		return errors.New("order already resolved")
	}
	return s.dispatch(ctx, order)
}

func (s *ConfirmationService) dispatch(ctx context.Context, order *models.Order) error {
	if !s.messenger.Ready() {
		return ErrMessengerNotReady
	}

	chatID, err := s.ResolveChatID(ctx, order.CustomerPhone)
	if err != nil {
		if errors.Is(err, whatsapp.ErrNotRegistered) || errors.Is(err, ErrPhoneMissing) {
			logger.Warnw("confirmation_undeliverable", "order_id", order.ID, "error", err)
			if uerr := s.orders.UpdateStatus(order.ID, constants.OrderStatusFailed, nil); uerr != nil {
				logger.Errorw("order_status_update_failed", "order_id", order.ID, "error", uerr)
			}
			_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineMessageFailed, err.Error()))
		}
		return err
	}

	content := s.templates.Content(ctx, constants.TemplateConfirmation)
	text := RenderTemplate(content, order, s.opts.StoreURL)
	if err := s.messenger.SendMessage(ctx, chatID, text); err != nil {
		logger.Errorw("confirmation_send_failed", "order_id", order.ID, "chat_id", chatID, "error", err)
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if order.MessageSentAt == nil {
		updates["message_sent_at"] = now
	}
	if err := s.orders.UpdateStatus(order.ID, constants.OrderStatusAwaitingResponse, updates); err != nil {
		logger.Errorw("order_status_update_failed", "order_id", order.ID, "error", err)
		return err
	}
	if err := s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineMessageSent, "WhatsApp: "+chatID)); err != nil {
		logger.Warnw("timeline_append_failed", "order_id", order.ID, "error", err)
	}
	logger.Infow("confirmation_sent", "order_id", order.ID, "order_number", order.OrderNumber, "chat_id", chatID)
	return nil
}

// HandleReply processes an inbound message event. Anything that is not a
// lone 1, 2 or 3 is ignored, as is any digit that matches no awaiting order.
// Errors are logged and swallowed so the event feed never wedges.
func (s *ConfirmationService) HandleReply(ctx context.Context, evt whatsapp.MessageEvent) {
	digit := strings.TrimSpace(evt.Body)
	if digit != constants.ReplyConfirm && digit != constants.ReplyCancel && digit != constants.ReplyUpdateAddress {
		return
	}

	phone := s.senderPhone(ctx, evt)
	suffix := PhoneSuffix(phone)
	if suffix == "" {
		logger.Debugw("reply_without_phone", "from", evt.From)
		return
	}

	order, err := s.matchOrder(suffix)
	if err != nil {
		logger.Errorw("reply_match_failed", "suffix", suffix, "error", err)
		return
	}
	if order == nil {
		logger.Infow("reply_unmatched", "suffix", suffix, "digit", digit)
		return
	}

	switch digit {
	case constants.ReplyConfirm:
		s.confirm(order, evt.From)
	case constants.ReplyCancel:
		s.cancel(order, evt.From)
	case constants.ReplyUpdateAddress:
		s.requestAddress(order, evt.From)
	}
}

// senderPhone resolves the event sender to a phone number. The contact
// lookup is preferred because sender ids can be obfuscated; when it fails the
// digits embedded in the id are used as-is.
func (s *ConfirmationService) senderPhone(ctx context.Context, evt whatsapp.MessageEvent) string {
	contact, err := s.messenger.ResolveContact(ctx, evt.From)
	if err == nil {
		if contact.Number != "" {
			return contact.Number
		}
		if contact.ID != "" {
			return contact.ID
		}
	} else {
		logger.Debugw("contact_resolve_failed", "from", evt.From, "error", err)
	}
	return evt.From
}

// matchOrder finds the newest awaiting order whose phone ends with suffix.
func (s *ConfirmationService) matchOrder(suffix string) (*models.Order, error) {
	candidates, err := s.orders.ListAwaitingResponse()
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if strings.HasSuffix(StripDigits(candidates[i].CustomerPhone), suffix) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (s *ConfirmationService) confirm(order *models.Order, chatID string) {
	now := time.Now()
	if err := s.orders.UpdateStatus(order.ID, constants.OrderStatusConfirmed, map[string]interface{}{
		"response_received_at": now,
	}); err != nil {
		logger.Errorw("order_status_update_failed", "order_id", order.ID, "error", err)
		return
	}
	_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineOrderConfirmed, "Cliente respondeu 1"))
	logger.Infow("order_confirmed", "order_id", order.ID, "order_number", order.OrderNumber)

	s.dispatchTagUpdate(order)
	s.scheduleReply(order.ID, constants.TemplateConfirmed, chatID)
}

func (s *ConfirmationService) cancel(order *models.Order, chatID string) {
	now := time.Now()
	if err := s.orders.UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
		"response_received_at": now,
	}); err != nil {
		logger.Errorw("order_status_update_failed", "order_id", order.ID, "error", err)
		return
	}
	_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineOrderCancelled, "Cliente respondeu 2"))
	logger.Infow("order_cancelled", "order_id", order.ID, "order_number", order.OrderNumber)

	s.dispatchCancel(order)
	s.scheduleReply(order.ID, constants.TemplateCancelled, chatID)
}

// requestAddress only asks for the corrected address. The order stays in
// awaiting_response and response_received_at is left for the final 1/2 reply.
func (s *ConfirmationService) requestAddress(order *models.Order, chatID string) {
	_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineAddressRequested, "Cliente respondeu 3"))
	logger.Infow("address_update_requested", "order_id", order.ID, "order_number", order.OrderNumber)

	s.scheduleReply(order.ID, constants.TemplateAddressUpdate, chatID)
}

// dispatchTagUpdate pushes the confirmation tag to the storefront, through
// the queue when available and inline otherwise. Failures never roll back the
// local confirmation.
func (s *ConfirmationService) dispatchTagUpdate(order *models.Order) {
	if s.tasks.Enabled() {
		if err := s.tasks.EnqueueShopifyTagUpdate(queue.ShopifyTagUpdatePayload{
			ShopifyOrderID: order.ShopifyOrderID,
			Tag:            constants.ShopifyTagConfirmed,
		}); err != nil {
			logger.Errorw("tag_update_enqueue_failed", "order_id", order.ID, "error", err)
		}
		return
	}
	go func(shopifyOrderID string, orderID uint) {
		if err := s.shop.UpdateTag(context.Background(), shopifyOrderID, constants.ShopifyTagConfirmed); err != nil {
			logger.Errorw("tag_update_failed", "order_id", orderID, "error", err)
		}
	}(order.ShopifyOrderID, order.ID)
}

func (s *ConfirmationService) dispatchCancel(order *models.Order) {
	if s.tasks.Enabled() {
		if err := s.tasks.EnqueueShopifyCancel(queue.ShopifyCancelPayload{
			ShopifyOrderID: order.ShopifyOrderID,
		}); err != nil {
			logger.Errorw("cancel_enqueue_failed", "order_id", order.ID, "error", err)
		}
		return
	}
	go func(shopifyOrderID string, orderID uint) {
		if err := s.shop.CancelOrder(context.Background(), shopifyOrderID); err != nil {
			logger.Errorw("shopify_cancel_failed", "order_id", orderID, "error", err)
		}
	}(order.ShopifyOrderID, order.ID)
}

// scheduleReply defers the templated acknowledgment by a random interval so
// the reply does not arrive suspiciously fast. With the queue enabled the
// delay rides on the task; otherwise a goroutine sleeps it out.
func (s *ConfirmationService) scheduleReply(orderID uint, templateID, chatID string) {
	delay := s.delayer.Duration()
	if s.tasks.Enabled() {
		if err := s.tasks.EnqueueReplyMessage(queue.ReplyMessagePayload{
			OrderID:    orderID,
			TemplateID: templateID,
			ChatID:     chatID,
		}, delay); err != nil {
			logger.Errorw("reply_enqueue_failed", "order_id", orderID, "template_id", templateID, "error", err)
		}
		return
	}
	go func() {
		if err := s.delayer.Wait(context.Background()); err != nil {
			return
		}
		if err := s.SendReply(context.Background(), orderID, templateID, chatID); err != nil {
			logger.Errorw("reply_send_failed", "order_id", orderID, "template_id", templateID, "error", err)
		}
	}()
}

// SendReply renders a template for an order and sends it to a chat. Also the
// worker-side executor of reply tasks.
func (s *ConfirmationService) SendReply(ctx context.Context, orderID uint, templateID, chatID string) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	content := s.templates.Content(ctx, templateID)
	text := RenderTemplate(content, order, s.opts.StoreURL)
	return s.messenger.SendMessage(ctx, chatID, text)
}
