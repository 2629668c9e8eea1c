package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ksd-storefront/internal/money"
)

// LineItem is one row of a checkout summary. UnitPrice is the catalog
// display price and is zero when the reference is not in the catalog.
type LineItem struct {
	PriceReference string
	Name           string
	Quantity       int64
	UnitPrice      decimal.Decimal
	Shipping       bool
}

type CheckoutSummary struct {
	SessionID       string
	Origin          string
	SubtotalCents   int64
	ShippingApplied bool
	Items           []LineItem
}

// Total formats the provider-priced subtotal.
func (s CheckoutSummary) Total() string {
	return money.FormatUSD(money.FromCents(s.SubtotalCents))
}

// BuildCheckoutNotificationBody builds the HTML body for a checkout notification email
func BuildCheckoutNotificationBody(s CheckoutSummary) string {
	var itemsHTML strings.Builder
	for _, item := range s.Items {
		name := item.Name
		if name == "" {
			name = item.PriceReference
		}
		unit, line := "&mdash;", "&mdash;"
		if !item.UnitPrice.IsZero() {
			unit = money.FormatUSD(item.UnitPrice)
			line = money.FormatUSD(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			unit,
			line,
		))
	}

	shipping := "Free shipping"
	if s.ShippingApplied {
		shipping = "Standard shipping added"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #f4ede4 0%%, #d8c3a5 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: #3b2f2f; margin: 0; font-size: 24px;">A customer is checking out</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Checkout session</p>
			<p style="margin: 5px 0 0 0; font-size: 16px; font-weight: bold; font-family: monospace;">%s</p>
			<p style="margin: 5px 0 0 0; font-size: 13px; color: #666;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Line total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Subtotal</span>
			<span style="font-size: 24px; font-weight: bold; color: #3b2f2f; margin-left: 10px;">%s</span>
			<p style="margin: 5px 0 0 0; font-size: 13px; color: #666;">%s</p>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Payment is not confirmed until the session completes in the Stripe dashboard.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(s.SessionID),
		html.EscapeString(s.Origin),
		itemsHTML.String(),
		s.Total(),
		shipping,
	)
}

// BuildContactMessageBody builds the HTML body for a contact form inquiry.
func BuildContactMessageBody(name, email, message string) string {
	text := strings.ReplaceAll(html.EscapeString(strings.TrimSpace(message)), "\n", "<br>\n")

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: Georgia, 'Times New Roman', serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="color: #3b2f2f; font-size: 22px;">New inquiry</h1>
	<p style="margin: 0;"><strong>Name:</strong> %s</p>
	<p style="margin: 0;"><strong>Email:</strong> <a href="mailto:%s">%s</a></p>
	<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
	<p>%s</p>
</body>
</html>`,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(email),
		text,
	)
}
