package dispatch

import (
	"context"
	"fmt"

	"github.com/splitter-app/splitter/internal/mailer"
)

// EmailNotifier mails each participant when a settlement with their share is
// created. It is only registered when SMTP is configured.
type EmailNotifier struct {
	mailer *mailer.Mailer
}

// NewEmailNotifier creates the mail handler set
func NewEmailNotifier(m *mailer.Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: m}
}

// RegisterHandlers subscribes the mail handlers.
func (n *EmailNotifier) RegisterHandlers(d *Dispatcher) {
	d.Register(KindSettlementCreated, n.handleSettlementCreated)
}

func (n *EmailNotifier) handleSettlementCreated(ctx context.Context, event Event) error {
	e, ok := event.(SettlementCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.ParticipantEmail == "" {
		return nil
	}

	return n.mailer.SendSettlementCreated(ctx, e.ParticipantEmail, mailer.SettlementCreatedData{
		RestaurantName:  e.RestaurantName,
		DiscountPercent: e.DiscountPercent,
		Voucher:         e.Voucher,
		Delivery:        e.Delivery,
		Transaction:     e.Transaction,
		FinalAmount:     e.FinalAmount,
	})
}
