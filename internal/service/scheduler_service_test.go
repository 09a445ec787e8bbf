package service

import (
	"context"
	"testing"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/shopify"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSchedulerTest(t *testing.T) (*SchedulerService, *fakeMessenger, repository.OrderRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.LineItem{}, &models.MessageTemplate{}, &models.ShopifyConfig{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	orders := repository.NewOrderRepository(db)
	templates := NewTemplateService(repository.NewTemplateRepository(db))
	messenger := newFakeMessenger()
	shopClient := shopify.NewClient(repository.NewShopifyConfigRepository(db), "2024-01", time.Second)
	tasks, _ := queue.NewClient(nil)
	delayer := NewZeroDelayer()

	confirmation := NewConfirmationService(orders, templates, messenger, shopClient, tasks, delayer, ConfirmationOptions{
		CountryPrefix: "57",
		ChatIDSuffix:  "@c.us",
	})
	scheduler := NewSchedulerService(orders, confirmation, messenger, shopClient, tasks, delayer, SchedulerOptions{
		FirstReminderAfter:  2 * time.Hour,
		SecondReminderAfter: 4 * time.Hour,
		AutoCancelAfter:     24 * time.Hour,
	})
	return scheduler, messenger, orders
}

func createSweepOrder(t *testing.T, orders repository.OrderRepository, number string, sentAgo time.Duration) *models.Order {
	t.Helper()
	sent := time.Now().Add(-sentAgo)
	order := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/" + number,
		OrderNumber:    number,
		CustomerName:   "María",
		CustomerPhone:  "573001234567",
		Status:         constants.OrderStatusAwaitingResponse,
		MessageSentAt:  &sent,
	}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestSweepSendsFirstReminder(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1000", 3*time.Hour)

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.FirstReminderSentAt == nil {
		t.Fatalf("first reminder marker not stamped")
	}
	if stored.SecondReminderSentAt != nil {
		t.Fatalf("second reminder must not fire in the same stage")
	}
	if got := len(messenger.sentMessages()); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}
}

func TestSweepTooEarlyDoesNothing(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1001", time.Hour)

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.FirstReminderSentAt != nil {
		t.Fatalf("reminder fired before the window elapsed")
	}
	if got := len(messenger.sentMessages()); got != 0 {
		t.Fatalf("expected no sends, got %d", got)
	}
}

func TestSweepSendsSecondReminderAfterFirst(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1002", 7*time.Hour)
	firstAt := time.Now().Add(-5 * time.Hour)
	if err := orders.Updates(order.ID, map[string]interface{}{
		"first_reminder_sent_at": firstAt,
	}); err != nil {
		t.Fatalf("stamp first reminder failed: %v", err)
	}

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.SecondReminderSentAt == nil {
		t.Fatalf("second reminder marker not stamped")
	}
	if got := len(messenger.sentMessages()); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}
}

func TestSweepFirstReminderFiresAtExactWindow(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1007", time.Hour)
	now := time.Now()
	if err := orders.Updates(order.ID, map[string]interface{}{
		"message_sent_at": now.Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("stamp message sent failed: %v", err)
	}

	if err := scheduler.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.FirstReminderSentAt == nil {
		t.Fatalf("first reminder must fire when the message is exactly 2h old")
	}
	if got := len(messenger.sentMessages()); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}
}

func TestSweepSecondReminderFiresAtExactWindow(t *testing.T) {
	scheduler, _, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1008", 7*time.Hour)
	now := time.Now()
	if err := orders.Updates(order.ID, map[string]interface{}{
		"first_reminder_sent_at": now.Add(-4 * time.Hour),
	}); err != nil {
		t.Fatalf("stamp first reminder failed: %v", err)
	}

	if err := scheduler.Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.SecondReminderSentAt == nil {
		t.Fatalf("second reminder must fire when the first is exactly 4h old")
	}
}

func TestSweepSecondReminderWaitsForItsOwnWindow(t *testing.T) {
	scheduler, _, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1003", 4*time.Hour)
	firstAt := time.Now().Add(-time.Hour)
	if err := orders.Updates(order.ID, map[string]interface{}{
		"first_reminder_sent_at": firstAt,
	}); err != nil {
		t.Fatalf("stamp first reminder failed: %v", err)
	}

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.SecondReminderSentAt != nil {
		t.Fatalf("second reminder fired too early")
	}
}

func TestSweepAutoCancels(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1004", 25*time.Hour)

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
	if stored.AutoCancelledAt == nil {
		t.Fatalf("auto_cancelled_at not stamped")
	}
	found := false
	for _, entry := range stored.Timeline {
		if entry.Action == constants.TimelineAutoCancelled {
			found = true
		}
	}
	if !found {
		t.Fatalf("timeline missing auto-cancel entry: %+v", stored.Timeline)
	}
	// Reminder (overdue too) plus the cancellation notice.
	if got := len(messenger.sentMessages()); got != 2 {
		t.Fatalf("expected reminder and cancellation notice, got %d sends", got)
	}
}

func TestSweepSkipsWhenMessengerDown(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)
	order := createSweepOrder(t, orders, "1005", 30*time.Hour)
	messenger.ready = false

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusAwaitingResponse {
		t.Fatalf("sweep must not act while messenger is down, got %s", stored.Status)
	}
	if stored.FirstReminderSentAt != nil {
		t.Fatalf("reminder stamped while messenger down")
	}
}

func TestSweepIgnoresTerminalAndUnsentOrders(t *testing.T) {
	scheduler, messenger, orders := setupSchedulerTest(t)

	confirmed := createSweepOrder(t, orders, "1006", 30*time.Hour)
	if err := orders.UpdateStatus(confirmed.ID, constants.OrderStatusConfirmed, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	pending := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/1007",
		OrderNumber:    "1007",
		CustomerName:   "María",
		CustomerPhone:  "573001234567",
		Status:         constants.OrderStatusPending,
	}
	if err := orders.Create(pending); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}

	if err := scheduler.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}

	storedConfirmed, _ := orders.GetByID(confirmed.ID)
	if storedConfirmed.Status != constants.OrderStatusConfirmed {
		t.Fatalf("terminal order mutated")
	}
	storedPending, _ := orders.GetByID(pending.ID)
	if storedPending.Status != constants.OrderStatusPending || storedPending.FirstReminderSentAt != nil {
		t.Fatalf("never-dispatched order swept: %+v", storedPending)
	}
	if got := len(messenger.sentMessages()); got != 0 {
		t.Fatalf("expected no sends, got %d", got)
	}
}
