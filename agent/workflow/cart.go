package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

// discountKeywords signal "add the discounted one" style requests.
var discountKeywords = []string{"discount", "discounted", "offer", "deal", "cheapest offer"}

// genericAddPhrases cover adds that reference the last shown list rather
// than a named service.
var genericAddPhrases = []string{
	"add this", "add that", "add it", "add them", "add these",
	"add to cart", "put in cart", "put it in", "add to my cart",
}

// CartWorkflow handles the cart-operation side of the dispatch chain:
// view, clear, add, remove, update. Resolution failures are collected as
// data, never raised.
type CartWorkflow struct{}

func NewCartWorkflow() *CartWorkflow {
	return &CartWorkflow{}
}

func (w *CartWorkflow) Name() string {
	return "cart"
}

func (w *CartWorkflow) CanHandle(req contractx.Request) bool {
	if strings.TrimSpace(req.SessionID) == "" || req.Conv == nil {
		return false
	}
	_, ok := req.Intent.(contractx.CartIntent)
	return ok
}

func (w *CartWorkflow) Execute(ctx context.Context, req contractx.Request) (contractx.Output, error) {
	intent, ok := req.Intent.(contractx.CartIntent)
	if !ok || req.Conv == nil {
		return contractx.Output{}, fmt.Errorf("%w: cart workflow needs a cart intent", contractx.ErrValidation)
	}

	switch intent.Action {
	case contractx.CartActionView:
		return narratedCart(req.Conv, cartOutcome{}), nil
	case contractx.CartActionClear:
		req.Conv.Cart.Clear()
		return contractx.Output{Reply: "Your cart has been cleared."}, nil
	case contractx.CartActionAdd:
		return w.addItems(req.Conv, intent), nil
	case contractx.CartActionRemove:
		return w.removeItems(req.Conv, intent), nil
	case contractx.CartActionUpdate:
		return w.updateItems(req.Conv, intent), nil
	default:
		return contractx.Output{}, fmt.Errorf("%w: unsupported cart action=%q", contractx.ErrValidation, intent.Action)
	}
}

type cartOutcome struct {
	added    []string
	removed  []string
	updated  []string
	notFound []string
}

// addItems resolves what to add in priority order: discounted item from
// lastShown, then a generic "add this" against lastShown, then named
// services matched against lastShown (authoritative pricing) with the
// entity registry as a last resort.
func (w *CartWorkflow) addItems(conv *statex.Conversation, intent contractx.CartIntent) contractx.Output {
	var out cartOutcome

	switch {
	case wantsDiscounted(intent.Query):
		if shown, ok := firstDiscounted(conv.LastShown); ok {
			conv.Cart.Add(cartItemFromShown(shown, quantityAt(intent.Quantities, 0)))
			out.added = append(out.added, shown.ServiceName)
		} else {
			out.notFound = append(out.notFound, "discounted items")
		}

	case len(intent.ServiceNames) == 0:
		// Generic add ("add this", "put it in the cart"): the first
		// lastShown entry is what the user is pointing at.
		if len(conv.LastShown) > 0 && (isGenericAdd(intent.Query) || intent.Query == "") {
			shown := conv.LastShown[0]
			conv.Cart.Add(cartItemFromShown(shown, quantityAt(intent.Quantities, 0)))
			out.added = append(out.added, shown.ServiceName)
		} else {
			out.notFound = append(out.notFound, "an item to add")
		}

	default:
		for i, name := range intent.ServiceNames {
			qty := quantityAt(intent.Quantities, i)
			if shown, ok := matchShown(conv.LastShown, name); ok {
				conv.Cart.Add(cartItemFromShown(shown, qty))
				out.added = append(out.added, shown.ServiceName)
				continue
			}
			if item, ok := matchRegistryService(conv, name); ok {
				// Registry entries carry no pricing; the line lands at
				// price 0 until a full service record is seen.
				log.Debug().Str("service", item.Name).Msg("cart add resolved via registry, price unknown")
				conv.Cart.Add(statex.CartItem{
					ServiceID:   item.ID,
					VendorID:    item.VendorID,
					ServiceName: item.Name,
					Quantity:    qty,
					AddedAt:     item.LastMentioned,
					CategoryID:  item.CategoryID,
				})
				out.added = append(out.added, item.Name)
				continue
			}
			out.notFound = append(out.notFound, name)
		}
	}

	return narratedCart(conv, out)
}

func (w *CartWorkflow) removeItems(conv *statex.Conversation, intent contractx.CartIntent) contractx.Output {
	var out cartOutcome
	for _, name := range intent.ServiceNames {
		if item, ok := matchCart(conv.Cart.Items, name); ok {
			conv.Cart.Remove(item.ServiceID, item.VendorID)
			out.removed = append(out.removed, item.ServiceName)
		} else {
			out.notFound = append(out.notFound, name)
		}
	}
	if len(intent.ServiceNames) == 0 {
		out.notFound = append(out.notFound, "an item to remove")
	}
	return narratedCart(conv, out)
}

func (w *CartWorkflow) updateItems(conv *statex.Conversation, intent contractx.CartIntent) contractx.Output {
	var out cartOutcome
	for i, name := range intent.ServiceNames {
		item, ok := matchCart(conv.Cart.Items, name)
		if !ok {
			out.notFound = append(out.notFound, name)
			continue
		}
		qty := requestedQuantity(intent.Quantities, i)
		if conv.Cart.UpdateQuantity(item.ServiceID, item.VendorID, qty) {
			if qty <= 0 {
				out.removed = append(out.removed, item.ServiceName)
			} else {
				out.updated = append(out.updated, item.ServiceName)
			}
		}
	}
	return narratedCart(conv, out)
}

func narratedCart(conv *statex.Conversation, out cartOutcome) contractx.Output {
	return contractx.Output{
		NeedsNarration: true,
		Data: contractx.CartPayload{
			Items:    conv.Cart.Snapshot(),
			Total:    conv.Cart.Total(),
			Added:    out.added,
			Removed:  out.removed,
			Updated:  out.updated,
			NotFound: out.notFound,
		},
	}
}

func cartItemFromShown(s statex.ShownService, qty int) statex.CartItem {
	return statex.CartItem{
		ServiceID:    s.ServiceID,
		VendorID:     s.VendorID,
		ServiceName:  s.ServiceName,
		VendorName:   s.VendorName,
		Price:        s.Price,
		Quantity:     qty,
		AddedAt:      s.ShownAt,
		Discount:     s.Discount,
		DiscountType: s.DiscountType,
		Veg:          s.Veg,
		CategoryID:   s.CategoryID,
		CategoryName: s.CategoryName,
	}
}

// quantityAt pairs positional quantities with service names by index;
// missing or non-positive entries default to 1.
func quantityAt(quantities []int, i int) int {
	if i >= 0 && i < len(quantities) && quantities[i] > 0 {
		return quantities[i]
	}
	return 1
}

// requestedQuantity reads the positional quantity as given; only a
// missing index defaults to 1. An explicit 0 must reach the cart so the
// line is removed rather than reset to 1.
func requestedQuantity(quantities []int, i int) int {
	if i >= 0 && i < len(quantities) {
		return quantities[i]
	}
	return 1
}

func wantsDiscounted(query string) bool {
	q := statex.NormalizeName(query)
	for _, kw := range discountKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func isGenericAdd(query string) bool {
	q := statex.NormalizeName(query)
	for _, phrase := range genericAddPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

func firstDiscounted(shown []statex.ShownService) (statex.ShownService, bool) {
	for _, s := range shown {
		if s.Discount > 0 {
			return s, true
		}
	}
	return statex.ShownService{}, false
}

// matchShown fuzzy-matches a requested name against the lastShown list.
// Ties go to the first entry in shown order.
func matchShown(shown []statex.ShownService, name string) (statex.ShownService, bool) {
	for _, s := range shown {
		if statex.NamesMatch(s.ServiceName, name) {
			return s, true
		}
	}
	return statex.ShownService{}, false
}

func matchCart(items []statex.CartItem, name string) (statex.CartItem, bool) {
	for _, item := range items {
		if statex.NamesMatch(item.ServiceName, name) {
			return item, true
		}
	}
	return statex.CartItem{}, false
}

func matchRegistryService(conv *statex.Conversation, name string) (statex.StoreItem, bool) {
	for _, item := range conv.Entities.ItemsByType(statex.EntityService) {
		if statex.NamesMatch(item.Name, name) {
			return item, true
		}
	}
	return statex.StoreItem{}, false
}
