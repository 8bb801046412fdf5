package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSettlementCreated(t *testing.T) {
	body, err := Render("settlement_created.html", SettlementCreatedData{
		RestaurantName:  "Pizza Place",
		DiscountPercent: 10,
		Voucher:         10,
		Delivery:        6,
		Transaction:     2,
		FinalAmount:     53.00,
		SettlementURL:   "http://localhost:8080/settlements",
	})
	require.NoError(t, err)
	require.Contains(t, body, "Pizza Place")
	require.Contains(t, body, "53.00 zł")
	require.Contains(t, body, "http://localhost:8080/settlements")
}

func TestRenderSettlementCreatedSkipsZeroAdjustments(t *testing.T) {
	body, err := Render("settlement_created.html", SettlementCreatedData{
		RestaurantName: "Pizza Place",
		FinalAmount:    40.00,
	})
	require.NoError(t, err)
	require.NotContains(t, body, "Rabat")
	require.NotContains(t, body, "Voucher")
	require.NotContains(t, body, "Dostawa")
	require.Contains(t, body, "40.00 zł")
}

func TestRenderWeeklyDigest(t *testing.T) {
	body, err := Render("weekly_digest.html", WeeklyDigestData{
		Name:        "Bartek",
		TotalAmount: 75.50,
		ItemCount:   3,
		Date:        "24.08.2026",
		AppURL:      "http://localhost:8080",
	})
	require.NoError(t, err)
	require.Contains(t, body, "Bartek")
	require.Contains(t, body, "75.50 zł")
	require.Contains(t, body, "24.08.2026")
}

func TestDisabledMailerRejectsSend(t *testing.T) {
	m := New(Config{})
	require.False(t, m.Enabled())
}
