package catalog

import "time"

type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	VendorID string `json:"vendor_id"`
	// Price is NUMERIC in Postgres; kept as a string at the edge to avoid
	// rounding, arithmetic happens through shopspring/decimal.
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemInfo is a free-form characteristic row attached to an item.
type ItemInfo struct {
	ItemID    string `json:"item_id"`
	TypeInfo  string `json:"type_info"`
	ValueInfo string `json:"value_info"`
}

type Query struct {
	Q        string
	Category string
	Limit    int
	Offset   int
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// CreateItemRequest payload of item creation.
// swagger:model CreateItemRequest
type CreateItemRequest struct {
	Name     string `json:"name"     example:"Mechanical Keyboard"`
	Price    string `json:"price"    example:"199.90"`
	Quantity int    `json:"quantity" example:"10"`
}

// UpdateItemRequest payload of partial item update (vendor only).
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Price    *string `json:"price,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListResponse represents the paginated item listing.
// swagger:model
type ListResponse struct {
	Q      string `json:"q,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Items  []Item `json:"items"`
}
