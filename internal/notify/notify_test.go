package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avezhov/shop-api/internal/user"
)

// Noop stands in for the mailer when SMTP_HOST is unset, so it has to fit
// both consumer interfaces.
var (
	_ Dispatcher            = Noop{}
	_ user.ActivationMailer = Noop{}
)

func TestNoopDiscards(t *testing.T) {
	var n Noop
	if err := n.Notify(context.Background(), KindInvoiceReady, sampleInvoice()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := n.SendActivation(context.Background(), "a@example.com", "A", "http://x"); err != nil {
		t.Fatalf("SendActivation: %v", err)
	}
}

func sampleInvoice() *Invoice {
	return &Invoice{
		OrderID:       "ord-42",
		CustomerEmail: "kira@example.com",
		CustomerName:  "Kira",
		Lines: []InvoiceLine{
			{Name: "Mechanical Keyboard", Quantity: 1, Price: "199.90", Total: "199.90"},
			{Name: "Wireless Mouse", Quantity: 2, Price: "49.90", Total: "99.80"},
		},
		Total:     "299.70",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTemplatesRender(t *testing.T) {
	m := NewMailer(SMTPConfig{}, zerolog.Nop())

	var buf bytes.Buffer
	if err := m.confirmed.Execute(&buf, sampleInvoice()); err != nil {
		t.Fatalf("confirmed template: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"ord-42", "Kira", "Mechanical Keyboard", "299.70"} {
		if !strings.Contains(body, want) {
			t.Fatalf("confirmed mail missing %q:\n%s", want, body)
		}
	}

	buf.Reset()
	if err := m.delivered.Execute(&buf, sampleInvoice()); err != nil {
		t.Fatalf("delivered template: %v", err)
	}
	if !strings.Contains(buf.String(), "delivered") {
		t.Fatalf("delivered mail lacks the delivery line:\n%s", buf.String())
	}

	buf.Reset()
	data := struct {
		FirstName string
		Link      string
	}{"Ivan", "http://shop.local/activate/tok"}
	if err := m.activate.Execute(&buf, data); err != nil {
		t.Fatalf("activation template: %v", err)
	}
	if !strings.Contains(buf.String(), "http://shop.local/activate/tok") {
		t.Fatalf("activation mail lacks the link:\n%s", buf.String())
	}
}

func TestInvoicePDF(t *testing.T) {
	pdf, err := invoicePDF(sampleInvoice())
	if err != nil {
		t.Fatalf("invoicePDF: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty pdf")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("not a pdf, starts with %q", pdf[:8])
	}
}
