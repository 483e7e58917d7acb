package contract

import (
	"strings"
	"time"

	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

type CartAction string

const (
	CartActionView   CartAction = "view"
	CartActionAdd    CartAction = "add"
	CartActionRemove CartAction = "remove"
	CartActionUpdate CartAction = "update"
	CartActionClear  CartAction = "clear"
)

// Classification is the structured output of the external query classifier.
// It is decided once per turn and converted into an Intent variant before
// dispatch; workflow code never re-inspects the raw booleans.
type Classification struct {
	CorrectedQuery      string     `json:"corrected_query,omitempty"`
	NeedsLocation       bool       `json:"needs_location"`
	LocationName        string     `json:"location_name,omitempty"`
	QueryType           string     `json:"query_type,omitempty"`
	IsCartOperation     bool       `json:"is_cart_operation,omitempty"`
	CartAction          CartAction `json:"cart_action,omitempty"`
	ServiceNames        []string   `json:"service_names,omitempty"`
	Quantities          []int      `json:"quantities,omitempty"`
	VendorName          string     `json:"vendor_name,omitempty"`
	WantsServices       bool       `json:"wants_services,omitempty"`
	IsPaginationRequest bool       `json:"is_pagination_request,omitempty"`
}

// SafeDefaultClassification is what a failed classifier degrades to:
// no cart action, location requested. A wrong but safe turn.
func SafeDefaultClassification() Classification {
	return Classification{NeedsLocation: true}
}

// Intent is a closed sum: a turn is either a cart operation or an
// exploration request. The variant is fixed at the classifier boundary.
type Intent interface {
	isIntent()
}

type CartIntent struct {
	Action       CartAction
	Query        string
	ServiceNames []string
	Quantities   []int
}

func (CartIntent) isIntent() {}

type ExploreIntent struct {
	Query         string
	NeedsLocation bool
	LocationName  string
	VendorName    string
	WantsServices bool
	Pagination    bool
}

func (ExploreIntent) isIntent() {}

// IntentFrom converts a raw classification into the intent sum. Cart
// operations win whenever the classifier flags one; everything else is
// exploration.
func IntentFrom(c Classification, query string) Intent {
	if c.IsCartOperation {
		action := CartAction(strings.ToLower(strings.TrimSpace(string(c.CartAction))))
		if action == "" {
			action = CartActionView
		}
		return CartIntent{
			Action:       action,
			Query:        query,
			ServiceNames: c.ServiceNames,
			Quantities:   c.Quantities,
		}
	}
	return ExploreIntent{
		Query:         query,
		NeedsLocation: c.NeedsLocation,
		LocationName:  strings.TrimSpace(c.LocationName),
		VendorName:    strings.TrimSpace(c.VendorName),
		WantsServices: c.WantsServices,
		Pagination:    c.IsPaginationRequest,
	}
}

// Request is the per-turn context handed to workflows: the classified
// intent plus the conversation it operates on. Turns within one session
// are serialized by the caller, so workflows may mutate Conv freely.
type Request struct {
	SessionID string
	Query     string
	Intent    Intent
	Conv      *statex.Conversation
	Now       time.Time
}

// Output is a workflow result: either a finished reply or a structured
// payload that still needs narration by the external renderer.
type Output struct {
	Reply          string
	NeedsNarration bool
	Data           any
}

// Vendor is a catalog row for a nearby vendor.
type Vendor struct {
	ID         int64   `json:"id"`
	StoreName  string  `json:"store_name"`
	Rating     float64 `json:"vendor_rating,omitempty"`
	DistanceKM float64 `json:"distance_km,omitempty"`
}

// Service is a catalog row for one vendor service (menu item).
type Service struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	VendorID     int64   `json:"vendor_id"`
	VendorName   string  `json:"vendor_name"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount,omitempty"`
	DiscountType string  `json:"discount_type,omitempty"`
	Veg          *bool   `json:"veg,omitempty"`
	CategoryID   int64   `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
}

// CartPayload is the narration payload for cart operations. The
// Added/Removed/Updated/NotFound lists carry partial outcomes so the
// narrator can report "added X, could not find Y".
type CartPayload struct {
	Items    []statex.CartItem `json:"items"`
	Total    float64           `json:"total"`
	Added    []string          `json:"added,omitempty"`
	Removed  []string          `json:"removed,omitempty"`
	Updated  []string          `json:"updated,omitempty"`
	NotFound []string          `json:"not_found,omitempty"`
}

// VendorsPayload is the narration payload for a nearby-vendor browse.
type VendorsPayload struct {
	Vendors  []Vendor `json:"vendors"`
	NotFound []string `json:"not_found,omitempty"`
}

// ServiceGroup is one category worth of services, in catalog order.
type ServiceGroup struct {
	CategoryName string                `json:"category_name"`
	Services     []statex.ShownService `json:"services"`
}

// ServicesPayload is the narration payload for a vendor menu. Groups keep
// the category structure; the flattened order matches what was written to
// the conversation's lastShown snapshot.
type ServicesPayload struct {
	VendorID   int64          `json:"vendor_id"`
	VendorName string         `json:"vendor_name"`
	Groups     []ServiceGroup `json:"groups"`
	Page       int            `json:"page"`
}

// NarrationRequest is the input contract of the external renderer.
type NarrationRequest struct {
	Query       string
	Data        any
	Location    *statex.Location
	HistoryText string
	Cart        []statex.CartItem
	Intent      Intent
}

// Narration is the rendered reply pair.
type Narration struct {
	VoiceText string `json:"voice_text"`
	RichText  string `json:"rich_text"`
}
