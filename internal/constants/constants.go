package constants

// Order status constants. Confirmed and cancelled are terminal: no automated
// transition may touch an order once it reaches either.
const (
	OrderStatusPending          = "pending"
	OrderStatusAwaitingResponse = "awaiting_response"
	OrderStatusConfirmed        = "confirmed"
	OrderStatusCancelled        = "cancelled"
	OrderStatusFailed           = "failed"
)

// Message template identifiers (fixed keys, mutable content).
const (
	TemplateConfirmation  = "confirmation"
	TemplateConfirmed     = "confirmed"
	TemplateCancelled     = "cancelled"
	TemplateAddressUpdate = "address_update"
	TemplateFirstReminder = "first_reminder"
	TemplateSecondRemind  = "second_reminder"
	TemplateAutoCancelled = "auto_cancelled"
)

// Customer reply digits.
const (
	ReplyConfirm       = "1"
	ReplyCancel        = "2"
	ReplyUpdateAddress = "3"
)

// Shopify order tags written back on confirmation.
const (
	ShopifyTagConfirmed = "Confirmado"
)

// Timeline action labels (operator-facing, kept in the storefront language).
const (
	TimelineOrderCreated      = "Pedido criado"
	TimelineMessageSent       = "Mensagem enviada"
	TimelineMessageFailed     = "Falha no envio"
	TimelineOrderConfirmed    = "Pedido confirmado"
	TimelineOrderCancelled    = "Pedido cancelado"
	TimelineAddressRequested  = "Atualização de endereço solicitada"
	TimelineFirstReminder     = "Primeiro lembrete enviado"
	TimelineSecondReminder    = "Segundo lembrete enviado"
	TimelineAutoCancelled     = "Cancelado automaticamente"
	TimelineOrderSynced       = "Pedido sincronizado"
)

// Asynq queue and task names.
const (
	QueueDefault = "default"

	TaskShopifyTagUpdate = "shopify:tag_update"
	TaskShopifyCancel    = "shopify:cancel_order"
	TaskReplyMessage     = "whatsapp:reply_message"
)

// Shopify webhook headers.
const (
	HeaderShopifyHmac       = "X-Shopify-Hmac-Sha256"
	HeaderShopifyShopDomain = "X-Shopify-Shop-Domain"
	HeaderShopifyToken      = "X-Shopify-Access-Token"
)

// DefaultCurrency is assumed when an order carries no currency code.
const DefaultCurrency = "COP"

// PhoneSuffixLength is the number of trailing digits used to match an inbound
// sender to a stored order phone.
const PhoneSuffixLength = 8
