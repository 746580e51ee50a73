package render

import (
	"html"
	"strings"

	"github.com/sells-group/kindness-map/internal/model"
)

// Popup placeholders.
const (
	UnnamedPlaceholder      = "Unnamed"
	NoDescriptionText       = "No description available"
	NotAvailablePlaceholder = "Not available"
	UserLocationPopup       = "You are here"
)

// Popup renders the HTML popup body for a spot. Every field is escaped and
// missing ones fall back to placeholder text.
func Popup(s model.Spot, label string) string {
	var b strings.Builder
	b.WriteString("<strong>")
	b.WriteString(orPlaceholder(s.Name, UnnamedPlaceholder))
	b.WriteString("</strong><br>")
	b.WriteString(orPlaceholder(s.Description, NoDescriptionText))
	b.WriteString("<br><em>Type: ")
	b.WriteString(orPlaceholder(label, "Other"))
	b.WriteString("</em><br><strong>Address:</strong> ")
	b.WriteString(orPlaceholder(s.Address, NotAvailablePlaceholder))
	b.WriteString("<br><strong>Phone:</strong> ")
	b.WriteString(orPlaceholder(s.Phone, NotAvailablePlaceholder))
	return b.String()
}

func orPlaceholder(v, placeholder string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "undefined" || v == "null" {
		return placeholder
	}
	return html.EscapeString(v)
}
