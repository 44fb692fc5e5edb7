// Package checkout renders a cart into the order message handed to an
// external messaging channel.
package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/drypanda-ecart/internal/domain/cart"
)

// ErrEmptyCart is returned when checkout is requested for a cart with no
// lines.
var ErrEmptyCart = errors.New("cart is empty")

const greeting = "Hello! I want to order:"

// Message returns one line per entry followed by the order total.
func Message(c cart.Cart) string {
	var b strings.Builder
	b.WriteString(greeting)
	b.WriteByte('\n')
	for _, e := range c.Entries() {
		fmt.Fprintf(&b, "- %s = %s (Total weight: %dg)\n", e.Name, Amount(e.Price), e.TotalWeight())
	}
	b.WriteString("Total: ")
	b.WriteString(Amount(c.Total()))
	return b.String()
}

// Link returns a wa.me deep link that opens a chat with phone prefilled with
// message.
func Link(phone, message string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + strings.TrimPrefix(phone, "+"),
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20"),
	}
	return u.String()
}

// Amount formats a rupee amount, keeping whole amounts free of decimals.
func Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return "₹" + d.String()
	}
	return "₹" + d.StringFixed(2)
}
