package dispatch

import (
	"context"
	"fmt"

	"github.com/splitter-app/splitter/internal/slack"
)

// SlackNotifier posts one channel announcement per created settlement. It is
// only registered when a webhook URL is configured.
type SlackNotifier struct {
	client *slack.Client
}

// NewSlackNotifier creates the Slack handler set
func NewSlackNotifier(client *slack.Client) *SlackNotifier {
	return &SlackNotifier{client: client}
}

// RegisterHandlers subscribes the Slack handlers.
func (n *SlackNotifier) RegisterHandlers(d *Dispatcher) {
	d.Register(KindSettlementAnnounced, n.handleSettlementAnnounced)
}

func (n *SlackNotifier) handleSettlementAnnounced(ctx context.Context, event Event) error {
	e, ok := event.(SettlementAnnounced)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	return n.client.AnnounceSettlement(ctx, slack.SettlementAnnouncement{
		RestaurantName: e.RestaurantName,
		CreatorName:    e.CreatorName,
		Code:           e.Code,
		TotalAmount:    e.TotalAmount,
		Participants:   e.Participants,
	})
}
