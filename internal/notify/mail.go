package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

type SMTPConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	From            string
	BackOfficeEmail string
}

// Mailer is the SMTP-backed Dispatcher. It also sends account-activation
// mail for the user service.
type Mailer struct {
	cfg    SMTPConfig
	logger zerolog.Logger

	confirmed *template.Template
	delivered *template.Template
	activate  *template.Template
}

func NewMailer(cfg SMTPConfig, logger zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:       cfg,
		logger:    logger,
		confirmed: template.Must(template.New("confirmed").Parse(orderConfirmedTemplate)),
		delivered: template.Must(template.New("delivered").Parse(orderDeliveredTemplate)),
		activate:  template.Must(template.New("activate").Parse(activationTemplate)),
	}
}

func (m *Mailer) Notify(ctx context.Context, kind Kind, inv *Invoice) error {
	switch kind {
	case KindOrderConfirmed:
		return m.sendHTML(inv.CustomerEmail,
			fmt.Sprintf("Your order #%s has been placed", inv.OrderID), m.confirmed, inv)
	case KindOrderDelivered:
		return m.sendHTML(inv.CustomerEmail,
			fmt.Sprintf("Your order #%s has been delivered", inv.OrderID), m.delivered, inv)
	case KindInvoiceReady:
		return m.sendInvoice(inv)
	default:
		return fmt.Errorf("unknown notification kind %q", kind)
	}
}

func (m *Mailer) SendActivation(ctx context.Context, toEmail, firstName, link string) error {
	data := struct {
		FirstName string
		Link      string
	}{firstName, link}
	return m.sendHTML(toEmail, "Activate your account", m.activate, data)
}

func (m *Mailer) sendHTML(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.HTML = body.Bytes()
	return m.send(e)
}

func (m *Mailer) sendInvoice(inv *Invoice) error {
	pdf, err := invoicePDF(inv)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{m.cfg.BackOfficeEmail}
	e.Subject = fmt.Sprintf("New order #%s - invoice", inv.OrderID)
	e.Text = []byte(invoiceReadyBody)
	if _, err := e.Attach(bytes.NewReader(pdf), fmt.Sprintf("order_%s.pdf", inv.OrderID), "application/pdf"); err != nil {
		return err
	}
	return m.send(e)
}

func (m *Mailer) send(e *email.Email) error {
	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := e.Send(addr, auth); err != nil {
		m.logger.Error().Err(err).Strs("to", e.To).Str("subject", e.Subject).Msg("mail send failed")
		return err
	}
	return nil
}
