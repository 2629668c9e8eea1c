package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSummary() CheckoutSummary {
	return CheckoutSummary{
		SessionID:       "cs_test_a1b2c3d4e5f6g7h8",
		Origin:          "https://ksd.example.com",
		SubtotalCents:   123450,
		ShippingApplied: false,
		Items: []LineItem{
			{PriceReference: "price_ring", Name: "Pearl <Cross> Necklace", Quantity: 2, UnitPrice: decimal.NewFromInt(128)},
			{PriceReference: "price_unknown", Quantity: 1},
		},
	}
}

func TestBuildCheckoutNotificationBody(t *testing.T) {
	body := BuildCheckoutNotificationBody(newTestSummary())

	assert.Contains(t, body, "cs_test_a1b2c3d4e5f6g7h8")
	assert.Contains(t, body, "Pearl &lt;Cross&gt; Necklace")
	assert.NotContains(t, body, "<Cross>")
	assert.Contains(t, body, "$128.00")
	assert.Contains(t, body, "$256.00")
	assert.Contains(t, body, "price_unknown")
	assert.Contains(t, body, "$1,234.50")
	assert.Contains(t, body, "Free shipping")
}

func TestBuildCheckoutNotificationBody_Shipping(t *testing.T) {
	s := newTestSummary()
	s.ShippingApplied = true

	assert.Contains(t, BuildCheckoutNotificationBody(s), "Standard shipping added")
}

func TestService_SendCheckoutNotification(t *testing.T) {
	svc := NewService("mail.local", "1025", "shop@ksd.example.com")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, svc.SendCheckoutNotification("owner@ksd.example.com", newTestSummary()))

	assert.Equal(t, "mail.local:1025", gotAddr)
	assert.Equal(t, "shop@ksd.example.com", gotFrom)
	assert.Equal(t, []string{"owner@ksd.example.com"}, gotTo)

	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: shop@ksd.example.com\r\nTo: owner@ksd.example.com\r\n"))
	assert.Contains(t, msg, "Subject: New checkout started: cs_test_a1b2c3 ($1,234.50)")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8")
}

func TestService_SendError(t *testing.T) {
	svc := NewService("mail.local", "1025", "shop@ksd.example.com")
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := svc.SendCheckoutNotification("owner@ksd.example.com", newTestSummary())

	assert.ErrorContains(t, err, "connection refused")
}

func TestBuildContactMessageBody(t *testing.T) {
	body := BuildContactMessageBody("Jane <b>Doe</b>", "jane@example.com", "Hello,\nDo you ship to Canada?\n")

	assert.Contains(t, body, "Jane &lt;b&gt;Doe&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Doe</b>")
	assert.Contains(t, body, `<a href="mailto:jane@example.com">jane@example.com</a>`)
	assert.Contains(t, body, "Hello,<br>\nDo you ship to Canada?</p>")
}

func TestService_SendContactMessage(t *testing.T) {
	svc := NewService("mail.local", "1025", "shop@ksd.example.com")

	var gotTo []string
	var gotMsg []byte
	svc.sendMail = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotTo, gotMsg = to, msg
		return nil
	}

	err := svc.SendContactMessage("owner@ksd.example.com", "Jane Doe", "jane@example.com", "Katherine Sterling Designs Inquiry", "Hi there")
	require.NoError(t, err)

	assert.Equal(t, []string{"owner@ksd.example.com"}, gotTo)
	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: shop@ksd.example.com\r\nTo: owner@ksd.example.com\r\nReply-To: jane@example.com\r\nSubject: Katherine Sterling Designs Inquiry\r\n"))
	assert.Contains(t, msg, "Hi there")
}
