package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/queue"
	"github.com/confirmador/internal/repository"
	"github.com/confirmador/internal/shopify"
	"github.com/confirmador/internal/whatsapp"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sentMessage struct {
	ChatID string
	Text   string
}

type fakeMessenger struct {
	mu            sync.Mutex
	ready         bool
	notRegistered map[string]bool
	contacts      map[string]whatsapp.Contact
	sent          []sentMessage
	sendErr       error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		ready:         true,
		notRegistered: map[string]bool{},
		contacts:      map[string]whatsapp.Contact{},
	}
}

func (m *fakeMessenger) Ready() bool { return m.ready }

func (m *fakeMessenger) Status(context.Context) (whatsapp.Status, error) {
	return whatsapp.Status{Connected: m.ready}, nil
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *fakeMessenger) NumberID(_ context.Context, phone string) (string, error) {
	if m.notRegistered[phone] {
		return "", whatsapp.ErrNotRegistered
	}
	return phone + "@c.us", nil
}

func (m *fakeMessenger) ResolveContact(_ context.Context, senderID string) (whatsapp.Contact, error) {
	if contact, ok := m.contacts[senderID]; ok {
		return contact, nil
	}
	return whatsapp.Contact{ID: senderID}, nil
}

func (m *fakeMessenger) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func setupServiceTest(t *testing.T) (*ConfirmationService, *fakeMessenger, repository.OrderRepository) {
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

	svc := NewConfirmationService(orders, templates, messenger, shopClient, tasks, NewZeroDelayer(), ConfirmationOptions{
		CountryPrefix: "57",
		ChatIDSuffix:  "@c.us",
		StoreURL:      "https://tienda.example.com",
	})
	return svc, messenger, orders
}

func createAwaitingOrder(t *testing.T, orders repository.OrderRepository, number, phone string) *models.Order {
	t.Helper()
	sent := time.Now().Add(-time.Hour)
	order := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/" + number,
		OrderNumber:    number,
		CustomerName:   "María",
		CustomerPhone:  phone,
		TotalValue:     models.NewMoneyFromFloat(169900),
		Currency:       "COP",
		Status:         constants.OrderStatusAwaitingResponse,
		MessageSentAt:  &sent,
		Items: []models.LineItem{
			{Name: "Camiseta", Quantity: 1, Price: models.NewMoneyFromFloat(169900)},
		},
	}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestSendConfirmationHappyPath(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)

	order := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/100",
		OrderNumber:    "1042",
		CustomerName:   "María",
		CustomerPhone:  "3001234567",
		TotalValue:     models.NewMoneyFromFloat(169900),
		Currency:       "COP",
		Status:         constants.OrderStatusPending,
	}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.SendConfirmation(context.Background(), order); err != nil {
		t.Fatalf("SendConfirmation error: %v", err)
	}

	sent := messenger.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].ChatID != "573001234567@c.us" {
		t.Fatalf("unexpected chat id %s", sent[0].ChatID)
	}
	if !strings.Contains(sent[0].Text, "1042") {
		t.Fatalf("message missing order number: %s", sent[0].Text)
	}

	stored, err := orders.GetByID(order.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusAwaitingResponse {
		t.Fatalf("expected awaiting_response, got %s", stored.Status)
	}
	if stored.MessageSentAt == nil {
		t.Fatalf("message_sent_at not stamped")
	}
	if len(stored.Timeline) == 0 || stored.Timeline[len(stored.Timeline)-1].Action != constants.TimelineMessageSent {
		t.Fatalf("timeline missing sent entry: %+v", stored.Timeline)
	}
}

func TestSendConfirmationIdempotent(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "200", "3001234567")

	if err := svc.SendConfirmation(context.Background(), order); err != nil {
		t.Fatalf("SendConfirmation error: %v", err)
	}
	if got := len(messenger.sentMessages()); got != 0 {
		t.Fatalf("expected no resend for stamped order, got %d messages", got)
	}
}

func TestSendConfirmationNumberNotRegistered(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	messenger.notRegistered["573001234567"] = true

	order := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/300",
		OrderNumber:    "300",
		CustomerName:   "María",
		CustomerPhone:  "3001234567",
		Status:         constants.OrderStatusPending,
	}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.SendConfirmation(context.Background(), order); err == nil {
		t.Fatalf("expected error for unregistered number")
	}
	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusFailed {
		t.Fatalf("expected failed status, got %s", stored.Status)
	}
}

func TestSendConfirmationMessengerDown(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	messenger.ready = false

	order := &models.Order{
		ShopifyOrderID: "gid://shopify/Order/400",
		OrderNumber:    "400",
		CustomerName:   "María",
		CustomerPhone:  "3001234567",
		Status:         constants.OrderStatusPending,
	}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.SendConfirmation(context.Background(), order); err != ErrMessengerNotReady {
		t.Fatalf("expected ErrMessengerNotReady, got %v", err)
	}
	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("order must stay pending for retry, got %s", stored.Status)
	}
	if stored.MessageSentAt != nil {
		t.Fatalf("marker must not be stamped on failed dispatch")
	}
}

func TestHandleReplyConfirm(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "500", "+573001234567")

	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: " 1 ",
	})

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", stored.Status)
	}
	if stored.ResponseReceivedAt == nil {
		t.Fatalf("response_received_at not stamped")
	}

	// Acknowledgment goes out on a goroutine with zero delay in tests.
	waitFor(t, func() bool { return len(messenger.sentMessages()) == 1 })
	if got := messenger.sentMessages()[0].ChatID; got != "573001234567@c.us" {
		t.Fatalf("ack sent to wrong chat: %s", got)
	}
}

func TestHandleReplyCancel(t *testing.T) {
	svc, _, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "600", "573001234567")

	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: "2",
	})

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}
}

func TestHandleReplyAddressUpdateKeepsAwaiting(t *testing.T) {
	svc, _, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "700", "573001234567")

	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: "3",
	})

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusAwaitingResponse {
		t.Fatalf("address request must not close the order, got %s", stored.Status)
	}
	if len(stored.Timeline) == 0 || stored.Timeline[len(stored.Timeline)-1].Action != constants.TimelineAddressRequested {
		t.Fatalf("timeline missing address entry: %+v", stored.Timeline)
	}
	if stored.ResponseReceivedAt != nil {
		t.Fatalf("address request must not stamp response_received_at")
	}

	// The marker belongs to the final 1/2 answer.
	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: "1",
	})
	stored, _ = orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected confirmed after follow-up, got %s", stored.Status)
	}
	if stored.ResponseReceivedAt == nil {
		t.Fatalf("confirm after address request must stamp response_received_at")
	}
}

func TestHandleReplyIgnoresOtherMessages(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "800", "573001234567")

	for _, body := range []string{"hola", "12", "si", "4", ""} {
		svc.HandleReply(context.Background(), whatsapp.MessageEvent{
			From: "573001234567@c.us",
			Body: body,
		})
	}

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusAwaitingResponse {
		t.Fatalf("non-digit replies must not change status, got %s", stored.Status)
	}
	if got := len(messenger.sentMessages()); got != 0 {
		t.Fatalf("expected no sends, got %d", got)
	}
}

func TestHandleReplyMatchesNewestOnSuffixCollision(t *testing.T) {
	svc, _, orders := setupServiceTest(t)

	older := createAwaitingOrder(t, orders, "900", "13001234567")
	if err := orders.Updates(older.ID, map[string]interface{}{
		"created_at": time.Now().Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	newer := createAwaitingOrder(t, orders, "901", "573001234567")

	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: "1",
	})

	storedNewer, _ := orders.GetByID(newer.ID)
	storedOlder, _ := orders.GetByID(older.ID)
	if storedNewer.Status != constants.OrderStatusConfirmed {
		t.Fatalf("newest matching order must win, got %s", storedNewer.Status)
	}
	if storedOlder.Status != constants.OrderStatusAwaitingResponse {
		t.Fatalf("older order must be untouched, got %s", storedOlder.Status)
	}
}

func TestHandleReplyNeverTouchesTerminalOrders(t *testing.T) {
	svc, _, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "910", "573001234567")
	if err := orders.UpdateStatus(order.ID, constants.OrderStatusConfirmed, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "573001234567@c.us",
		Body: "2",
	})

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusConfirmed {
		t.Fatalf("terminal order mutated to %s", stored.Status)
	}
}

func TestHandleReplyUsesResolvedContactNumber(t *testing.T) {
	svc, messenger, orders := setupServiceTest(t)
	order := createAwaitingOrder(t, orders, "920", "573001234567")

	// Obfuscated sender id; the resolved contact carries the real number.
	messenger.contacts["129281209124@lid"] = whatsapp.Contact{Number: "573001234567"}
	svc.HandleReply(context.Background(), whatsapp.MessageEvent{
		From: "129281209124@lid",
		Body: "1",
	})

	stored, _ := orders.GetByID(order.ID)
	if stored.Status != constants.OrderStatusConfirmed {
		t.Fatalf("expected confirmation via resolved contact, got %s", stored.Status)
	}
}
