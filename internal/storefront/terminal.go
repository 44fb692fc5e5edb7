package storefront

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
)

// TerminalNavigator prints the login prompt instead of switching screens.
type TerminalNavigator struct {
	W io.Writer
}

var _ Navigator = TerminalNavigator{}

// RedirectToLogin implements Navigator.
func (n TerminalNavigator) RedirectToLogin(context.Context) {
	fmt.Fprintln(n.W, "Please log in first: login <email> <password> [customer|operator]")
}

// TerminalMessenger prints the checkout link for the user to open.
type TerminalMessenger struct {
	W io.Writer
}

var _ Messenger = TerminalMessenger{}

// Send implements Messenger.
func (m TerminalMessenger) Send(_ context.Context, link string) error {
	if _, err := fmt.Fprintf(m.W, "Open this link to send your order on WhatsApp:\n%s\n", link); err != nil {
		return errors.Wrap(err, "write link")
	}
	return nil
}
