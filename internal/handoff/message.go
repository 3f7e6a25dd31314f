package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/abgdnv/shopease/internal/cart"
)

// ComposeMessage renders the order summary sent to the shop.
func ComposeMessage(state cart.State, form ShippingForm) string {
	var b strings.Builder
	if who := sender(form); who != "" {
		fmt.Fprintf(&b, "Hello, I am %s and would like to order the following items:\n\n", who)
	} else {
		b.WriteString("Hello, I would like to order the following items:\n\n")
	}

	for _, it := range state.Items() {
		fmt.Fprintf(&b, "- %s (%d x $%s) = $%s\n",
			it.Title, it.Quantity, it.UnitPrice.StringFixed(2), it.Subtotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: $%s\n", state.TotalPrice().StringFixed(2))
	fmt.Fprintf(&b, "\nPlease ship to:\n%s", form.Address)
	if form.Phone != "" {
		fmt.Fprintf(&b, "\nPhone: %s", form.Phone)
	}
	if form.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", form.Notes)
	}
	return b.String()
}

// sender is "name (email)", or whichever of the two was given.
func sender(form ShippingForm) string {
	name, email := strings.TrimSpace(form.FullName), strings.TrimSpace(form.Email)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", name, email)
	case name != "":
		return name
	default:
		return email
	}
}

// BuildLink returns {base}?phone={recipient}&text={message}. Spaces are
// encoded as %20 so the text survives channels that do not treat + as a space.
func BuildLink(base, recipient, message string) string {
	return fmt.Sprintf("%s?phone=%s&text=%s", base, escape(recipient), escape(message))
}

func escape(s string) string {
	// QueryEscape turns a literal + into %2B, so every remaining + is a space
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
