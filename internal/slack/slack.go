// Package slack posts settlement announcements to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type Attachment struct {
	Color     string  `json:"color"`
	Title     string  `json:"title"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields"`
	Footer    string  `json:"footer"`
	Timestamp int64   `json:"ts"`
}

type WebhookRequest struct {
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

const username = "Splitter"

// Client sends messages to a Slack incoming webhook. An empty webhook URL
// disables sending.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// New creates a Slack webhook client
func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured
func (c *Client) Enabled() bool {
	return c.webhookURL != ""
}

// SettlementAnnouncement describes a new settlement for the channel message
type SettlementAnnouncement struct {
	RestaurantName string
	CreatorName    string
	Code           string
	TotalAmount    float64
	Participants   int
}

// AnnounceSettlement posts a new-settlement message to the configured channel.
func (c *Client) AnnounceSettlement(ctx context.Context, a SettlementAnnouncement) error {
	payload := WebhookRequest{
		Username:  username,
		IconEmoji: ":pizza:",
		Text:      ":pizza: *Nowe zamówienie do zapłaty*",
		Attachments: []Attachment{
			{
				Color: "#2563eb",
				Title: fmt.Sprintf("%s utworzył(a) zamówienie w restauracji %s", a.CreatorName, a.RestaurantName),
				Fields: []Field{
					{Title: "Restauracja", Value: a.RestaurantName, Short: true},
					{Title: "Kwota", Value: fmt.Sprintf("%.2f zł", a.TotalAmount), Short: true},
					{Title: "Uczestnicy", Value: fmt.Sprintf("%d", a.Participants), Short: true},
					{Title: "Kod", Value: a.Code, Short: true},
				},
				Footer:    "Splitter",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload WebhookRequest) error {
	if !c.Enabled() {
		return fmt.Errorf("slack webhook is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
