package template

// Global default templates, used when a client has no variation set for an
// event (or the anti-uniformity flip skips variations). A provider entry
// under the reserved client id "_default" overrides these per deployment.
// Events without an entry here (broadcast, message_received) resolve
// straight to their inline fallback.
const GlobalDefaultClientID = "_default"

var globalDefaults = map[EventType]string{
	EventOrderPaid: `Parabéns {{customerName}}! 🎉

Sua compra #{{orderId}} foi aprovada com sucesso!

Valor total: {{currency total}}

{{#if trackingCode}}
Código de rastreamento: {{trackingCode}}
{{/if}}
{{#if items}}
Produtos:
{{#each items}}
• {{this.name}} ({{this.quantity}}x)
{{/each}}
{{/if}}

Obrigado por comprar conosco! 💚`,

	EventOrderExpired: `Oi {{customerName}}! ⏰

Sua reserva de *{{productName}}* no valor de {{currency total}} está prestes a expirar!

{{#if expirationDate}}
Data limite: {{expirationDate}}
{{/if}}

Finalize agora e garanta seus produtos.
Após o vencimento, não podemos garantir a disponibilidade dos itens.`,

	EventCartAbandoned: `Olá {{customerName}}! 🛒

Notamos que você deixou alguns itens incríveis no seu carrinho:
{{#each items}}
• {{this.name}} ({{this.quantity}}x)
{{/each}}

Total: {{currency total}}

Que tal finalizar sua compra? Seus produtos estão te esperando!

Válido por 24 horas. Não perca!`,
}

// Inline fallbacks are the last line of defense: every supported event type
// must have one, so the pipeline always produces a sendable message even for
// a client with nothing configured. NewResolver fails loudly if an event is
// missing here.
var inlineFallbacks = map[EventType]string{
	EventOrderPaid:       `Olá {{customerName}}! Pagamento confirmado: {{productName}} - {{currency total}}. Obrigado pela compra!`,
	EventOrderExpired:    `Olá {{customerName}}! Seu pedido de {{productName}} ({{currency total}}) expirou. Finalize sua compra para garantir seus itens.`,
	EventCartAbandoned:   `Olá {{customerName}}! Você deixou itens no carrinho ({{currency total}}). Finalize sua compra!`,
	EventBroadcast:       `Olá {{customerName}}! {{message}}`,
	EventMessageReceived: `Olá {{customerName}}! Recebemos sua mensagem, logo retornamos.`,
}

// Button is one quick-reply option attached to interactive channels.
type Button struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Affordance describes the interactive extras a capable channel can attach
// to a rendered message.
type Affordance struct {
	Buttons []Button `json:"buttons"`
}

// Per-event button options, attached only when the target channel reports
// interactive support (Z-API yes, Evolution API no).
var affordances = map[EventType]Affordance{
	EventOrderPaid: {Buttons: []Button{
		{ID: "community", Label: "Entrar na comunidade VIP"},
		{ID: "my-numbers", Label: "Ver meus números"},
	}},
	EventOrderExpired: {Buttons: []Button{
		{ID: "pay-now", Label: "Finalizar pagamento"},
		{ID: "support", Label: "Falar com atendente"},
	}},
	EventCartAbandoned: {Buttons: []Button{
		{ID: "checkout", Label: "Finalizar compra"},
	}},
}

// AffordanceFor returns the button set for an event, if any.
func AffordanceFor(event EventType) (Affordance, bool) {
	a, ok := affordances[event]
	return a, ok
}
