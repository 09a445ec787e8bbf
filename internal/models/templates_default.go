package models

import "github.com/confirmador/internal/constants"

// DefaultTemplates returns the stock message templates. They are seeded on
// first run and also serve as the hardcoded fallback when a stored template
// is missing so a message attempt is always possible.
func DefaultTemplates() []MessageTemplate {
	return []MessageTemplate{
		{
			ID:   constants.TemplateConfirmation,
			Name: "Mensagem de Confirmação",
			Content: `Olá {{nome_cliente}}! 👋

Recebemos seu pedido #{{numero_pedido}} e gostaríamos de confirmar as informações:

📦 *Itens:*
{{itens}}

📍 *Endereço de entrega:*
{{endereco}}

💰 *Valor total:* {{valor_total}}

Por favor, confirme seu pedido respondendo:

✅ *1* - Confirmar pedido
❌ *2* - Cancelar pedido
📍 *3* - Atualizar endereço

Aguardamos sua resposta!`,
			Variables: StringArray{"nome_cliente", "numero_pedido", "itens", "endereco", "valor_total"},
		},
		{
			ID:        constants.TemplateConfirmed,
			Name:      "Pedido Confirmado",
			Content:   "✅ Pedido confirmado com sucesso! Logo enviaremos o rastreio.",
			Variables: StringArray{},
		},
		{
			ID:        constants.TemplateCancelled,
			Name:      "Pedido Cancelado",
			Content:   "❌ Pedido cancelado e estornado na loja com sucesso.",
			Variables: StringArray{},
		},
		{
			ID:   constants.TemplateAddressUpdate,
			Name: "Atualização de Endereço",
			Content: `{{nome_cliente}}, por favor envie seu novo endereço completo:

📍 Rua, número e complemento
🏙️ Cidade e estado
📮 CEP

Aguardamos sua resposta para atualizar o pedido #{{numero_pedido}}.`,
			Variables: StringArray{"nome_cliente", "numero_pedido"},
		},
		{
			ID:   constants.TemplateFirstReminder,
			Name: "Primeiro Lembrete (2h)",
			Content: `👋 *Hola {{nome_cliente}}*

Te recordamos que aún no has confirmado tu pedido #{{numero_pedido}}.

Por favor, confirma tu pedido para que podamos procesarlo y enviarlo lo antes posible.

Responde *1* para Confirmar, *2* para Cancelar o *3* para Corregir Dirección.`,
			Variables: StringArray{"nome_cliente", "numero_pedido"},
		},
		{
			ID:   constants.TemplateSecondRemind,
			Name: "Segundo Lembrete (6h - Urgente)",
			Content: `⚠️ *Hola {{nome_cliente}}*

Tu pedido #{{numero_pedido}} aún no ha sido confirmado.

⏰ *IMPORTANTE:* Si no confirmas tu pedido en las próximas horas, será cancelado automáticamente.

Responde *1* para Confirmar, *2* para Cancelar o *3* para Corregir Dirección.`,
			Variables: StringArray{"nome_cliente", "numero_pedido"},
		},
		{
			ID:   constants.TemplateAutoCancelled,
			Name: "Auto-Cancelamento (24h)",
			Content: `❌ *Hola {{nome_cliente}}*

Tu pedido #{{numero_pedido}} ha sido cancelado automáticamente por falta de confirmación.

Si deseas realizar un nuevo pedido, visita nuestra tienda:
{{url_loja}}

¡Gracias por tu interés! 🛍️`,
			Variables: StringArray{"nome_cliente", "numero_pedido", "url_loja"},
		},
	}
}

// DefaultTemplateContent returns the stock content for a template id, or the
// empty string when the id is unknown.
func DefaultTemplateContent(id string) string {
	for _, tpl := range DefaultTemplates() {
		if tpl.ID == id {
			return tpl.Content
		}
	}
	return ""
}
