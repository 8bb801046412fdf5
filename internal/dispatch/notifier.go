package dispatch

import (
	"context"
	"fmt"

	"github.com/splitter-app/splitter/internal/notification"
)

const routeSettlementShow = "settlements.show"

// Notifier translates ledger events into in-app notifications.
type Notifier struct {
	notifications *notification.Service
}

// NewNotifier creates the in-app notification handler set
func NewNotifier(notifications *notification.Service) *Notifier {
	return &Notifier{notifications: notifications}
}

// RegisterHandlers subscribes the notifier to every event kind it reacts to.
func (n *Notifier) RegisterHandlers(d *Dispatcher) {
	d.Register(KindSettlementCreated, n.handleSettlementCreated)
	d.Register(KindItemPaid, n.handleItemPaid)
	d.Register(KindItemsBulkPaid, n.handleItemsBulkPaid)
}

func (n *Notifier) handleSettlementCreated(ctx context.Context, event Event) error {
	e, ok := event.(SettlementCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	route := routeSettlementShow
	_, err := n.notifications.Notify(ctx, e.ParticipantID,
		"Nowe zamówienie do zapłaty",
		fmt.Sprintf("%s utworzył nowe zamówienie w restauracji %s w której zamawiałeś", e.CreatorName, e.RestaurantName),
		&route,
		notification.RouteParams{"settlement": e.SettlementID},
	)
	return err
}

func (n *Notifier) handleItemPaid(ctx context.Context, event Event) error {
	e, ok := event.(ItemPaid)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	route := routeSettlementShow
	_, err := n.notifications.Notify(ctx, e.OwnerID,
		"Opłacone zamówienie",
		fmt.Sprintf("%s opłacił zamówienie w restauracji %s na kwotę: %.2f zł.", e.PayerName, e.RestaurantName, e.Amount),
		&route,
		notification.RouteParams{"settlement": e.SettlementID},
	)
	return err
}

// A bulk payment spans settlements, so its notification carries no deep link.
func (n *Notifier) handleItemsBulkPaid(ctx context.Context, event Event) error {
	e, ok := event.(ItemsBulkPaid)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	_, err := n.notifications.Notify(ctx, e.CreatedBy,
		"Opłacone zamówienie",
		fmt.Sprintf("%s opłacił wszystkie zamówienia na kwotę: %.2f zł.", e.PayerName, e.TotalAmount),
		nil, nil,
	)
	return err
}
