// Package mailer sends the transactional emails of the application: the
// "new settlement" message to every participant who owes, and the weekly
// debt digest.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	mail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Config holds the SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// Mailer sends templated HTML mail over SMTP
type Mailer struct {
	cfg Config
}

// New creates a new mailer
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Enabled reports whether an SMTP host is configured
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SettlementCreatedData fills the settlement-created template
type SettlementCreatedData struct {
	RestaurantName  string
	DiscountPercent float64
	Voucher         float64
	Delivery        float64
	Transaction     float64
	FinalAmount     float64
	SettlementURL   string
}

// WeeklyDigestData fills the weekly digest template
type WeeklyDigestData struct {
	Name        string
	TotalAmount float64
	ItemCount   int
	Date        string
	AppURL      string
}

// SendSettlementCreated mails a participant that a new settlement awaits
// their payment.
func (m *Mailer) SendSettlementCreated(ctx context.Context, to string, data SettlementCreatedData) error {
	data.SettlementURL = fmt.Sprintf("%s/settlements", m.cfg.BaseURL)
	return m.send(ctx, to, "Splitter - nowe zamówienie", "settlement_created.html", data)
}

// SendWeeklyDigest mails a debtor their current outstanding total.
func (m *Mailer) SendWeeklyDigest(ctx context.Context, to string, data WeeklyDigestData) error {
	data.Date = time.Now().Format("02.01.2006")
	data.AppURL = m.cfg.BaseURL
	return m.send(ctx, to, "Splitter - Tygodniowe podsumowanie", "weekly_digest.html", data)
}

func (m *Mailer) send(ctx context.Context, to, subject, templateName string, data interface{}) error {
	if !m.Enabled() {
		return fmt.Errorf("mail transport is not configured")
	}

	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// Render executes a mail template. Exposed for tests.
func Render(templateName string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	return buf.String(), nil
}
