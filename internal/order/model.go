package order

import "time"

type State string

const (
	StateBasket     State = "basket"
	StateCreated    State = "created"
	StateCollecting State = "collecting"
	StateCollected  State = "collected"
	StateShipped    State = "shipped"
	StateDelivered  State = "delivered"
	StateCanceled   State = "canceled"
)

type Order struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	AddressID string     `json:"address_id,omitempty"`
	State     State      `json:"state"`
	Comment   string     `json:"comment,omitempty"`
	Total     string     `json:"total_price"` // NUMERIC -> string
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Line is one OrderItem row: quantity and the price frozen at the moment the
// item first entered the order.
type Line struct {
	OrderID      string `json:"order_id"`
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name,omitempty"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

// AddToBasketRequest payload.
// swagger:model AddToBasketRequest
type AddToBasketRequest struct {
	ItemID   string `json:"item_id"  example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity int    `json:"quantity" example:"2"`
}

// StartOrderRequest payload.
// swagger:model StartOrderRequest
type StartOrderRequest struct {
	AddressID string `json:"address_id" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
}

// CancelOrderRequest payload.
// swagger:model CancelOrderRequest
type CancelOrderRequest struct {
	Comment string `json:"comment,omitempty" example:"changed my mind"`
}
