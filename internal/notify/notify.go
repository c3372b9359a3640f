// Package notify delivers best-effort customer and back-office mail for
// order transitions. Nothing here may influence the outcome of the
// transition that triggered it.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindOrderConfirmed Kind = "order_confirmed"
	KindInvoiceReady   Kind = "invoice_ready"
	KindOrderDelivered Kind = "order_delivered"
)

type InvoiceLine struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// Invoice is the flattened order snapshot notifications are rendered from.
type Invoice struct {
	OrderID       string
	CustomerEmail string
	CustomerName  string
	Lines         []InvoiceLine
	Total         string
	CreatedAt     time.Time
}

type Dispatcher interface {
	Notify(ctx context.Context, kind Kind, inv *Invoice) error
}

// Noop discards every notification; used in tests and local runs without an
// SMTP relay.
type Noop struct{}

func (Noop) Notify(context.Context, Kind, *Invoice) error { return nil }

func (Noop) SendActivation(context.Context, string, string, string) error { return nil }
