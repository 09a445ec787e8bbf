package service

import (
	"context"
	"errors"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/shopify"
	"github.com/confirmador/internal/whatsapp"
)

// SchedulerOptions carries the sweep thresholds. Each window is measured from
// the previous stage's marker, so the second reminder lands at
// FirstReminderAfter + SecondReminderAfter from the initial send.
type SchedulerOptions struct {
	FirstReminderAfter  time.Duration
	SecondReminderAfter time.Duration
	AutoCancelAfter     time.Duration
}

// SchedulerService runs the periodic reminder and auto-cancel sweep over
// orders still awaiting a customer response.
type SchedulerService struct {
	orders       repository.OrderRepository
	confirmation *ConfirmationService
	messenger    whatsapp.Messenger
	shop         *shopify.Client
	tasks        *queue.Client
	delayer      Delayer
	opts         SchedulerOptions
}

func NewSchedulerService(
	orders repository.OrderRepository,
	confirmation *ConfirmationService,
	messenger whatsapp.Messenger,
	shop *shopify.Client,
	tasks *queue.Client,
	delayer Delayer,
	opts SchedulerOptions,
) *SchedulerService {
	return &SchedulerService{
		orders:       orders,
		confirmation: confirmation,
		messenger:    messenger,
		shop:         shop,
		tasks:        tasks,
		delayer:      delayer,
		opts:         opts,
	}
}

// Sweep runs one reminder and auto-cancel pass as of now. Orders without a
// sent marker, or already terminal, are never touched. Both checks run
// independently over the same snapshot, mirroring the stored markers rather
// than in-memory state.
func (s *SchedulerService) Sweep(ctx context.Context, now time.Time) error {
	if !s.messenger.Ready() {
		logger.Debugw("sweep_skipped_messenger_down")
		return nil
	}

	candidates, err := s.orders.ListSweepCandidates()
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	logger.Infow("sweep_started", "candidates", len(candidates))

	for i := range candidates {
		order := &candidates[i]
		if order.MessageSentAt == nil {
			continue
		}
		s.remind(ctx, order, now)
	}

	for i := range candidates {
		order := &candidates[i]
		if order.MessageSentAt == nil || order.AutoCancelledAt != nil {
			continue
		}
		cutoff := now.Add(-s.opts.AutoCancelAfter)
		if order.MessageSentAt.After(cutoff) {
			continue
		}
		s.autoCancel(ctx, order, now)
	}
	return nil
}

func (s *SchedulerService) remind(ctx context.Context, order *models.Order, now time.Time) {
	switch {
	case order.FirstReminderSentAt == nil:
		cutoff := now.Add(-s.opts.FirstReminderAfter)
		if order.MessageSentAt.After(cutoff) {
			return
		}
		s.sendReminder(ctx, order, constants.TemplateFirstReminder, "first_reminder_sent_at", constants.TimelineFirstReminder, now)
	case order.SecondReminderSentAt == nil:
		cutoff := now.Add(-s.opts.SecondReminderAfter)
		if order.FirstReminderSentAt.After(cutoff) {
			return
		}
		s.sendReminder(ctx, order, constants.TemplateSecondRemind, "second_reminder_sent_at", constants.TimelineSecondReminder, now)
	}
}

// sendReminder delivers one reminder. The marker is stamped whether or not
// the send succeeded, so an unreachable number is not hammered on every
// sweep; the auto-cancel window still closes the order eventually.
func (s *SchedulerService) sendReminder(ctx context.Context, order *models.Order, templateID, markerColumn, timelineAction string, now time.Time) {
	chatID, err := s.confirmation.ResolveChatID(ctx, order.CustomerPhone)
	if err != nil {
		logger.Warnw("reminder_unresolvable", "order_id", order.ID, "template_id", templateID, "error", err)
	} else {
		if werr := s.delayer.Wait(ctx); werr != nil {
			return
		}
		content := s.confirmation.templates.Content(ctx, templateID)
		text := RenderTemplate(content, order, s.confirmation.opts.StoreURL)
		if serr := s.messenger.SendMessage(ctx, chatID, text); serr != nil {
			logger.Errorw("reminder_send_failed", "order_id", order.ID, "template_id", templateID, "error", serr)
		} else {
			logger.Infow("reminder_sent", "order_id", order.ID, "order_number", order.OrderNumber, "template_id", templateID)
		}
	}

	if err := s.orders.Updates(order.ID, map[string]interface{}{markerColumn: now}); err != nil {
		logger.Errorw("reminder_marker_update_failed", "order_id", order.ID, "error", err)
		return
	}
	switch markerColumn {
	case "first_reminder_sent_at":
		t := now
		order.FirstReminderSentAt = &t
	case "second_reminder_sent_at":
		t := now
		order.SecondReminderSentAt = &t
	}
	_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(timelineAction, ""))
}

func (s *SchedulerService) autoCancel(ctx context.Context, order *models.Order, now time.Time) {
	if err := s.orders.UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
		"auto_cancelled_at": now,
	}); err != nil {
		logger.Errorw("auto_cancel_update_failed", "order_id", order.ID, "error", err)
		return
	}
	_ = s.orders.AppendTimeline(order.ID, models.NewTimelineEntry(constants.TimelineAutoCancelled, "Sem resposta do cliente"))
	logger.Infow("order_auto_cancelled", "order_id", order.ID, "order_number", order.OrderNumber)

	if s.tasks.Enabled() {
		if err := s.tasks.EnqueueShopifyCancel(queue.ShopifyCancelPayload{ShopifyOrderID: order.ShopifyOrderID}); err != nil {
			logger.Errorw("cancel_enqueue_failed", "order_id", order.ID, "error", err)
		}
	} else if err := s.shop.CancelOrder(ctx, order.ShopifyOrderID); err != nil {
		logger.Errorw("shopify_cancel_failed", "order_id", order.ID, "error", err)
	}

	chatID, err := s.confirmation.ResolveChatID(ctx, order.CustomerPhone)
	if err != nil {
		if !errors.Is(err, whatsapp.ErrNotRegistered) && !errors.Is(err, ErrPhoneMissing) {
			logger.Warnw("auto_cancel_notify_unresolvable", "order_id", order.ID, "error", err)
		}
		return
	}
	if werr := s.delayer.Wait(ctx); werr != nil {
		return
	}
	content := s.confirmation.templates.Content(ctx, constants.TemplateAutoCancelled)
	text := RenderTemplate(content, order, s.confirmation.opts.StoreURL)
	if serr := s.messenger.SendMessage(ctx, chatID, text); serr != nil {
		logger.Errorw("auto_cancel_notify_failed", "order_id", order.ID, "error", serr)
	}
}
