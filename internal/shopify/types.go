package shopify

import "encoding/json"

// OrderPayload is the subset of the Shopify order schema the confirmation
// flow consumes, shared by webhook ingestion and historical sync.
type OrderPayload struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	OrderNumber       json.Number       `json:"order_number"`
	Email             string            `json:"email"`
	ContactEmail      string            `json:"contact_email"`
	Phone             string            `json:"phone"`
	TotalPrice        string            `json:"total_price"`
	Currency          string            `json:"currency"`
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"`
	Gateway           string            `json:"gateway"`
	Tags              string            `json:"tags"`
	Customer          *CustomerPayload  `json:"customer"`
	ShippingAddress   *AddressPayload   `json:"shipping_address"`
	BillingAddress    *AddressPayload   `json:"billing_address"`
	LineItems         []LineItemPayload `json:"line_items"`
}

// CustomerPayload is the customer block on a Shopify order.
type CustomerPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// AddressPayload is a shipping or billing address.
type AddressPayload struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
}

// LineItemPayload is one ordered item.
type LineItemPayload struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Quantity     int         `json:"quantity"`
	Price        string      `json:"price"`
	SKU          string      `json:"sku"`
	VariantTitle string      `json:"variant_title"`
}
