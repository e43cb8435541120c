package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingAddressRoundTrip(t *testing.T) {
	addr := BillingAddress{
		Name:       "Banele Mditshwa",
		Email:      "banele@example.com",
		Street:     "12 Main Road",
		City:       "East London",
		Province:   "Eastern Cape",
		PostalCode: "5201",
		Country:    "ZA",
	}

	value, err := addr.Value()
	require.NoError(t, err)

	var decoded BillingAddress
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, addr, decoded)
}

func TestBillingAddressMalformedScansEmpty(t *testing.T) {
	addr := BillingAddress{Name: "stale"}
	require.NoError(t, addr.Scan([]byte(`{"name": not json`)))
	assert.Equal(t, BillingAddress{}, addr)

	require.NoError(t, addr.Scan(nil))
	assert.Equal(t, BillingAddress{}, addr)
}

func TestGatewayResponseRoundTrip(t *testing.T) {
	resp := GatewayResponse{
		"payment_status": "COMPLETE",
		"pf_payment_id":  "1089250",
		"amount_gross":   "250.00",
	}

	value, err := resp.Value()
	require.NoError(t, err)

	var decoded GatewayResponse
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, resp, decoded)
}

func TestGatewayResponseMalformedScansEmpty(t *testing.T) {
	var resp GatewayResponse
	require.NoError(t, resp.Scan("{broken"))
	assert.Equal(t, GatewayResponse{}, resp)
}

func TestStringListRoundTrip(t *testing.T) {
	list := StringList{"plans/a.pdf", "plans/a.dwg"}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded StringList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
}

func TestStringListMalformedScansEmpty(t *testing.T) {
	var list StringList
	require.NoError(t, list.Scan([]byte(`["unterminated`)))
	assert.Equal(t, StringList{}, list)
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.True(t, PaymentStatusTerminal(PaymentStatusCompleted))
	assert.True(t, PaymentStatusTerminal(PaymentStatusFailed))
	assert.True(t, PaymentStatusTerminal(PaymentStatusCancelled))
	assert.False(t, PaymentStatusTerminal(PaymentStatusPending))
	assert.False(t, PaymentStatusTerminal(PaymentStatusProcessing))
}

func TestValidOrderStatus(t *testing.T) {
	for _, status := range []string{"pending", "paid", "completed", "cancelled"} {
		assert.True(t, ValidOrderStatus(status), status)
	}
	assert.False(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus(""))
}
