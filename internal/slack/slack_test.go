package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnounceSettlement(t *testing.T) {
	var received WebhookRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.AnnounceSettlement(context.Background(), SettlementAnnouncement{
		RestaurantName: "Pizza Place",
		CreatorName:    "Anna",
		Code:           "a1b2c3d4",
		TotalAmount:    88.00,
		Participants:   2,
	})
	require.NoError(t, err)

	require.Equal(t, "Splitter", received.Username)
	require.Len(t, received.Attachments, 1)
	require.Contains(t, received.Attachments[0].Title, "Pizza Place")
	require.Contains(t, received.Attachments[0].Title, "Anna")
}

func TestAnnounceSettlementServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.AnnounceSettlement(context.Background(), SettlementAnnouncement{})
	require.Error(t, err)
}

func TestDisabledClientRejectsSend(t *testing.T) {
	client := New("")
	require.False(t, client.Enabled())

	err := client.AnnounceSettlement(context.Background(), SettlementAnnouncement{})
	require.Error(t, err)
}
