package template

import "time"

// User is the recipient of the message.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	CPF   string `json:"cpf,omitempty"`
}

// Product is the item the order refers to.
type Product struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price,omitempty"`
}

// Order carries the commercial facts templates substitute.
type Order struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Total        float64    `json:"total"`
	ExpirationAt *time.Time `json:"expiration_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Item is one line of a multi-item order, exposed to {{#each items}} blocks.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// RenderContext is the structured data substituted into a template. It is
// built fresh per render call by the webhook layer; the engine only reads it.
type RenderContext struct {
	User    User
	Product Product
	Order   Order
	Items   []Item
	Custom  map[string]interface{}
}

// Map flattens the context into the shape templates see. Client templates
// from the legacy per-client files use flat keys (customerName, productName,
// total); newer templates use dotted paths (user.name, order.total). Both
// views are exposed, plus pre-formatted currency and date fields.
func (c *RenderContext) Map() map[string]interface{} {
	data := make(map[string]interface{}, len(c.Custom)+12)

	// Caller-supplied custom fields first, so the canonical keys below
	// always win on collision.
	for k, v := range c.Custom {
		data[k] = v
	}

	data["user"] = map[string]interface{}{
		"id":    c.User.ID,
		"name":  c.User.Name,
		"phone": c.User.Phone,
		"email": c.User.Email,
		"cpf":   c.User.CPF,
	}
	data["product"] = map[string]interface{}{
		"id":    c.Product.ID,
		"title": c.Product.Title,
		"price": c.Product.Price,
	}

	order := map[string]interface{}{
		"id":     c.Order.ID,
		"status": c.Order.Status,
		"total":  c.Order.Total,
	}
	if !c.Order.CreatedAt.IsZero() {
		order["createdAt"] = c.Order.CreatedAt
	}
	if c.Order.ExpirationAt != nil {
		order["expirationAt"] = *c.Order.ExpirationAt
		data["expirationDate"] = formatDate(*c.Order.ExpirationAt)
	}
	data["order"] = order

	// Flat aliases used by the per-client variation files.
	data["customerName"] = c.User.Name
	data["productName"] = c.Product.Title
	data["total"] = c.Order.Total
	data["totalFormatted"] = formatBRL(c.Order.Total)
	data["orderId"] = c.Order.ID

	if len(c.Items) > 0 {
		items := make([]map[string]interface{}, 0, len(c.Items))
		for _, it := range c.Items {
			items = append(items, map[string]interface{}{
				"name":     it.Name,
				"quantity": it.Quantity,
				"price":    it.Price,
			})
		}
		data["items"] = items
	}

	return data
}
