package service

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"
)

var greetings = []string{
	"Hola",
	"Buenos días",
	"Buenas tardes",
	"Buenas noches",
	"Saludos",
	"Hola, ¿cómo estás?",
}

const addressFallback = "Dirección no informada"

var currencyPrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatCurrency renders an amount the way Colombian storefronts display it,
// grouped thousands and no decimal places.
func FormatCurrency(amount models.Money, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = constants.DefaultCurrency
	}
	value, _ := amount.Float64()
	formatted := currencyPrinter.Sprintf("%v", number.Decimal(value, number.MaxFractionDigits(0)))
	switch code {
	case "COP", "USD", "MXN", "CLP", "ARS":
		return "$ " + formatted
	case "BRL":
		return "R$ " + formatted
	default:
		return code + " " + formatted
	}
}

// ItemsListing renders the line items as the bulleted list embedded in
// confirmation messages.
func ItemsListing(items []models.LineItem, currencyCode string) string {
	if len(items) == 0 {
		return "- Sin productos"
	}
	// Duplicate product names collapse into one line with the summed
	// quantity. The first occurrence fixes the displayed price.
	type entry struct {
		quantity int
		price    models.Money
	}
	order := make([]string, 0, len(items))
	merged := make(map[string]*entry, len(items))
	for _, it := range items {
		if e, ok := merged[it.Name]; ok {
			e.quantity += it.Quantity
			continue
		}
		merged[it.Name] = &entry{quantity: it.Quantity, price: it.Price}
		order = append(order, it.Name)
	}
	lines := make([]string, 0, len(order))
	for _, name := range order {
		e := merged[name]
		lines = append(lines, fmt.Sprintf("- %dx %s (%s)", e.quantity, name, FormatCurrency(e.price, currencyCode)))
	}
	return strings.Join(lines, "\n")
}

// AddressSummary extracts the first address line from the serialized
// Shopify address stored on the order.
func AddressSummary(serialized string) string {
	if strings.TrimSpace(serialized) == "" {
		return addressFallback
	}
	var addr struct {
		Address1 string `json:"address1"`
	}
	if err := json.Unmarshal([]byte(serialized), &addr); err != nil {
		return addressFallback
	}
	if strings.TrimSpace(addr.Address1) == "" {
		return addressFallback
	}
	return addr.Address1
}

// RenderTemplate substitutes the message placeholders with order data. Both
// single and double brace placeholder forms are accepted, and each variable
// has the aliases the stored templates use.
func RenderTemplate(content string, order *models.Order, storeURL string) string {
	if content == "" || order == nil {
		return content
	}
	values := map[string]string{
		"greeting":      greetings[rand.Intn(len(greetings))],
		"nome_cliente":  order.CustomerName,
		"numero_pedido": order.OrderNumber,
		"orderNumber":   order.OrderNumber,
		"itens":         ItemsListing(order.Items, order.Currency),
		"items":         ItemsListing(order.Items, order.Currency),
		"endereco":      AddressSummary(order.Address),
		"address":       AddressSummary(order.Address),
		"valor_total":   FormatCurrency(order.TotalValue, order.Currency),
		"total":         FormatCurrency(order.TotalValue, order.Currency),
		"url_loja":      storeURL,
	}
	out := content
	// Double braces first so "{{x}}" never leaves a stray brace pair behind.
	for key, val := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", val)
	}
	for key, val := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", val)
	}
	return out
}
