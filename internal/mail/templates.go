package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/BigSlendr/BBE-Menu/types"
)

// OrderLine is one cart row rendered into the staff notification.
type OrderLine struct {
	Name    string
	Variant string
	Qty     int
	Cents   int64
}

// OrderNotification renders the staff email sent when a checkout lands.
func OrderNotification(order types.Order, lines []OrderLine) (subject, body string) {
	ref := order.Reference
	if ref == "" {
		ref = order.ID
	}
	subject = fmt.Sprintf("New order %s", ref)

	var rows strings.Builder
	for _, line := range lines {
		label := line.Name
		if line.Variant != "" {
			label += " (" + line.Variant + ")"
		}
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(label), line.Qty, dollars(line.Cents))
	}

	name := stringOr(order.CustomerName, "Guest")
	phone := stringOr(order.CustomerPhone, "-")
	email := stringOr(order.CustomerEmail, "-")
	method := stringOr(order.DeliveryMethod, "pickup")

	body = fmt.Sprintf(`<h2>New order %s</h2>
<p><strong>%s</strong> &lt;%s&gt; &middot; %s &middot; %s</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Item</th><th>Qty</th><th>Price</th></tr>
%s
</table>
<p>Subtotal: %s<br>Tax: %s<br><strong>Total: %s</strong></p>`,
		html.EscapeString(ref),
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(phone),
		html.EscapeString(method),
		rows.String(),
		dollars(order.SubtotalCents),
		dollars(order.TaxCents),
		dollars(order.TotalCents))
	return subject, body
}

// PasswordReset renders the customer email carrying a reset link.
func PasswordReset(siteURL, token string) (subject, body string) {
	subject = "Reset your password"
	link := strings.TrimRight(siteURL, "/") + "/reset-password?token=" + token
	body = fmt.Sprintf(`<h2>Password reset</h2>
<p>Someone requested a password reset for your account. The link below
works once and expires in 30 minutes.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		html.EscapeString(link))
	return subject, body
}

// Suggestion renders the staff email for a product suggestion.
func Suggestion(name, email, phone, text string) (subject, body string) {
	subject = "New product suggestion"
	if phone == "" {
		phone = "-"
	}
	body = fmt.Sprintf(`<h2>Product suggestion</h2>
<p>From: <strong>%s</strong> &lt;%s&gt; &middot; %s</p>
<blockquote>%s</blockquote>`,
		html.EscapeString(name),
		html.EscapeString(email),
		html.EscapeString(phone),
		html.EscapeString(text))
	return subject, body
}

func dollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func stringOr(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}
