package llm

import (
	"fmt"
	"strings"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
)

// FallbackRender produces a plain deterministic reply from a narration
// payload. It is used when the narrator is unreachable so the turn still
// answers from real data.
func FallbackRender(req contractx.NarrationRequest) contractx.Narration {
	var b strings.Builder

	switch data := req.Data.(type) {
	case contractx.CartPayload:
		renderCart(&b, data)
	case contractx.VendorsPayload:
		renderVendors(&b, data)
	case contractx.ServicesPayload:
		renderServices(&b, data)
	default:
		b.WriteString("Here is what I found for you.")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		text = "Here is what I found for you."
	}

	return contractx.Narration{
		VoiceText: firstLine(text),
		RichText:  text,
	}
}

func renderCart(b *strings.Builder, data contractx.CartPayload) {
	if len(data.Added) > 0 {
		fmt.Fprintf(b, "Added to your cart: %s.\n", strings.Join(data.Added, ", "))
	}
	if len(data.Removed) > 0 {
		fmt.Fprintf(b, "Removed from your cart: %s.\n", strings.Join(data.Removed, ", "))
	}
	if len(data.Updated) > 0 {
		fmt.Fprintf(b, "Updated: %s.\n", strings.Join(data.Updated, ", "))
	}
	if len(data.NotFound) > 0 {
		fmt.Fprintf(b, "I could not find: %s.\n", strings.Join(data.NotFound, ", "))
	}

	if len(data.Items) == 0 {
		b.WriteString("Your cart is empty.")
		return
	}

	b.WriteString("Your cart:\n")
	for _, item := range data.Items {
		fmt.Fprintf(b, "- %s x%d (%.2f)\n", item.ServiceName, item.Quantity, item.Price)
	}
	fmt.Fprintf(b, "Total: %.2f", data.Total)
}

func renderVendors(b *strings.Builder, data contractx.VendorsPayload) {
	if len(data.NotFound) > 0 {
		fmt.Fprintf(b, "I could not find: %s.\n", strings.Join(data.NotFound, ", "))
	}
	if len(data.Vendors) == 0 {
		b.WriteString("No vendors found nearby.")
		return
	}

	b.WriteString("Nearby vendors:\n")
	for _, v := range data.Vendors {
		fmt.Fprintf(b, "- %s", v.StoreName)
		if v.Rating > 0 {
			fmt.Fprintf(b, ", rated %.1f", v.Rating)
		}
		if v.DistanceKM > 0 {
			fmt.Fprintf(b, ", %.1f km away", v.DistanceKM)
		}
		b.WriteString("\n")
	}
}

func renderServices(b *strings.Builder, data contractx.ServicesPayload) {
	if len(data.Groups) == 0 {
		fmt.Fprintf(b, "%s has nothing more to show.", data.VendorName)
		return
	}

	fmt.Fprintf(b, "Menu from %s:\n", data.VendorName)
	for _, group := range data.Groups {
		if group.CategoryName != "" {
			fmt.Fprintf(b, "%s:\n", group.CategoryName)
		}
		for _, svc := range group.Services {
			fmt.Fprintf(b, "- %s (%.2f)\n", svc.ServiceName, svc.Price)
		}
	}
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimRight(text[:idx], ".:") + "."
	}
	return text
}
