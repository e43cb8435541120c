package gateway

import (
	"net/url"
	"testing"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayFast() *PayFast {
	return NewPayFast(config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "jt7NOE43FZPn",
		ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
	}, "http://localhost:8080")
}

func payfastFields() map[string]string {
	return map[string]string{
		"m_payment_id":   "PF_42_AB12CD34EF56",
		"pf_payment_id":  "1089250",
		"payment_status": "COMPLETE",
		"amount_gross":   "250.00",
		"item_name":      "House Plans - Order #MZ20260831ABCD1234",
		"custom_str1":    "42",
		"custom_str2":    "credit_card",
	}
}

func asForm(fields map[string]string) url.Values {
	form := url.Values{}
	for key, value := range fields {
		form.Set(key, value)
	}
	return form
}

func TestPayFastSignatureDeterministic(t *testing.T) {
	p := testPayFast()
	fields := payfastFields()

	first := p.sign(fields)
	second := p.sign(fields)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestPayFastSignatureExcludesSignatureField(t *testing.T) {
	p := testPayFast()
	fields := payfastFields()

	unsigned := p.sign(fields)
	fields["signature"] = unsigned

	assert.Equal(t, unsigned, p.sign(fields))
}

func TestPayFastSignatureChangesWithPassphrase(t *testing.T) {
	p := testPayFast()
	other := NewPayFast(config.PayFastConfig{
		MerchantID:  p.cfg.MerchantID,
		MerchantKey: p.cfg.MerchantKey,
		Passphrase:  "different",
	}, "http://localhost:8080")

	fields := payfastFields()
	assert.NotEqual(t, p.sign(fields), other.sign(fields))
}

func TestPayFastParseNotification(t *testing.T) {
	p := testPayFast()
	fields := payfastFields()
	fields["signature"] = p.sign(fields)

	n, err := p.ParseNotification(asForm(fields))
	require.NoError(t, err)

	assert.Equal(t, "PF_42_AB12CD34EF56", n.Reference)
	assert.Equal(t, "1089250", n.TransactionID)
	assert.True(t, n.Succeeded)
	assert.Equal(t, "250.00", n.Fields["amount_gross"])
}

func TestPayFastParseNotificationFailedStatus(t *testing.T) {
	p := testPayFast()
	fields := payfastFields()
	fields["payment_status"] = "FAILED"
	fields["signature"] = p.sign(fields)

	n, err := p.ParseNotification(asForm(fields))
	require.NoError(t, err)
	assert.False(t, n.Succeeded)
}

func TestPayFastParseNotificationTampered(t *testing.T) {
	p := testPayFast()
	fields := payfastFields()
	fields["signature"] = p.sign(fields)
	fields["amount_gross"] = "1.00"

	_, err := p.ParseNotification(asForm(fields))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPayFastParseNotificationMissingSignature(t *testing.T) {
	p := testPayFast()

	_, err := p.ParseNotification(asForm(payfastFields()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
