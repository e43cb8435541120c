package gateway

import (
	"testing"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOzow() *Ozow {
	return NewOzow(config.OzowConfig{
		SiteCode:   "TEST-TEST",
		PrivateKey: "test-private-key",
		PayURL:     "https://pay.ozow.com/",
		IsTest:     true,
	}, "http://localhost:8080")
}

func ozowFields() map[string]string {
	return map[string]string{
		"SiteCode":             "TEST-TEST",
		"CountryCode":          "ZA",
		"CurrencyCode":         "ZAR",
		"Amount":               "250.00",
		"TransactionReference": "MZ_42_AB12CD34EF56",
		"BankReference":        "Mzize Tradings Order #MZ20260831ABCD1234",
		"TransactionId":        "ozow-txn-777",
		"Status":               "Complete",
	}
}

func TestOzowHashDeterministic(t *testing.T) {
	o := testOzow()
	fields := ozowFields()

	first := o.hashCheck(fields)
	second := o.hashCheck(fields)

	assert.Equal(t, first, second)
	assert.Len(t, first, 128)
}

func TestOzowHashIgnoresUnrelatedFields(t *testing.T) {
	o := testOzow()
	fields := ozowFields()
	base := o.hashCheck(fields)

	// The check field covers the fixed transaction fields only.
	fields["Customer"] = "someone@example.com"
	assert.Equal(t, base, o.hashCheck(fields))

	fields["Amount"] = "1.00"
	assert.NotEqual(t, base, o.hashCheck(fields))
}

func TestOzowParseNotification(t *testing.T) {
	o := testOzow()
	fields := ozowFields()
	fields["HashCheck"] = o.hashCheck(fields)

	n, err := o.ParseNotification(asForm(fields))
	require.NoError(t, err)

	assert.Equal(t, "MZ_42_AB12CD34EF56", n.Reference)
	assert.Equal(t, "ozow-txn-777", n.TransactionID)
	assert.True(t, n.Succeeded)
}

func TestOzowParseNotificationErrorStatus(t *testing.T) {
	o := testOzow()
	fields := ozowFields()
	fields["Status"] = "Error"
	fields["HashCheck"] = o.hashCheck(fields)

	n, err := o.ParseNotification(asForm(fields))
	require.NoError(t, err)
	assert.False(t, n.Succeeded)
}

func TestOzowParseNotificationTampered(t *testing.T) {
	o := testOzow()
	fields := ozowFields()
	fields["HashCheck"] = o.hashCheck(fields)
	fields["Amount"] = "9999.00"

	_, err := o.ParseNotification(asForm(fields))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestOzowParseNotificationMissingHash(t *testing.T) {
	o := testOzow()

	_, err := o.ParseNotification(asForm(ozowFields()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
