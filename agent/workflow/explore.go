package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

const (
	// servicesPageSize fixes menu paging: a pagination request for
	// cursor N fetches offset (N+1)*10.
	servicesPageSize = 10

	nearbyVendorLimit = 20
)

// ExplorationWorkflow handles every non-cart turn: nearby vendors, a
// vendor's menu, and pagination over it. It requires a resolved location
// and replaces the conversation's lastShown snapshot whenever it shows
// services.
type ExplorationWorkflow struct {
	catalog contractx.Catalog
}

func NewExplorationWorkflow(catalog contractx.Catalog) *ExplorationWorkflow {
	return &ExplorationWorkflow{catalog: catalog}
}

func (w *ExplorationWorkflow) Name() string {
	return "exploration"
}

// CanHandle is deliberately broad: anything that is not a cart operation
// is exploration. Registration order keeps cart requests away from here.
func (w *ExplorationWorkflow) CanHandle(req contractx.Request) bool {
	if req.Conv == nil {
		return false
	}
	_, ok := req.Intent.(contractx.ExploreIntent)
	return ok
}

func (w *ExplorationWorkflow) Execute(ctx context.Context, req contractx.Request) (contractx.Output, error) {
	intent, ok := req.Intent.(contractx.ExploreIntent)
	if !ok || req.Conv == nil {
		return contractx.Output{}, fmt.Errorf("%w: exploration workflow needs an explore intent", contractx.ErrValidation)
	}

	conv := req.Conv
	if !conv.HasLocation() {
		return contractx.Output{}, fmt.Errorf("%w: no saved location for session=%s", contractx.ErrLocationRequired, req.SessionID)
	}
	loc := *conv.Location

	if intent.VendorName != "" || intent.WantsServices {
		return w.showServices(ctx, conv, intent, loc, req)
	}
	return w.showVendors(ctx, conv, intent, loc, req)
}

// showServices resolves a vendor and presents its menu grouped by
// category. Resolution order: entity registry, then a fresh nearby fetch
// matched by name, then the most recently mentioned vendor for generic
// "show me the menu" turns.
func (w *ExplorationWorkflow) showServices(
	ctx context.Context,
	conv *statex.Conversation,
	intent contractx.ExploreIntent,
	loc statex.Location,
	req contractx.Request,
) (contractx.Output, error) {
	vendorID, vendorName, ok := w.resolveVendor(ctx, conv, intent, loc, req)
	if !ok {
		// Generic menu turns carry no vendor name; describe what is
		// missing instead of an empty string.
		missing := intent.VendorName
		if missing == "" {
			missing = "a vendor to browse"
		}
		return contractx.Output{
			NeedsNarration: true,
			Data: contractx.VendorsPayload{
				NotFound: []string{missing},
			},
		}, nil
	}

	page := 0
	if intent.Pagination {
		page = conv.PageCursor + 1
	}

	services, err := w.catalog.VendorServices(ctx, vendorID, servicesPageSize, page*servicesPageSize, "")
	if err != nil {
		return contractx.Output{}, fmt.Errorf("fetch services for vendor=%d: %w", vendorID, err)
	}

	groups, shown := groupServices(services, req)
	conv.SetLastShown(shown)
	conv.SetPageCursor(page)
	registerServices(conv, services, req)

	if vendorName == "" && len(services) > 0 {
		vendorName = services[0].VendorName
	}

	return contractx.Output{
		NeedsNarration: true,
		Data: contractx.ServicesPayload{
			VendorID:   vendorID,
			VendorName: vendorName,
			Groups:     groups,
			Page:       page,
		},
	}, nil
}

func (w *ExplorationWorkflow) showVendors(
	ctx context.Context,
	conv *statex.Conversation,
	intent contractx.ExploreIntent,
	loc statex.Location,
	req contractx.Request,
) (contractx.Output, error) {
	vendors, err := w.catalog.NearbyVendors(ctx, loc.Latitude, loc.Longitude, "", nearbyVendorLimit)
	if err != nil {
		return contractx.Output{}, fmt.Errorf("fetch nearby vendors: %w", err)
	}

	registerVendors(conv, vendors, req)

	return contractx.Output{
		NeedsNarration: true,
		Data:           contractx.VendorsPayload{Vendors: vendors},
	}, nil
}

func (w *ExplorationWorkflow) resolveVendor(
	ctx context.Context,
	conv *statex.Conversation,
	intent contractx.ExploreIntent,
	loc statex.Location,
	req contractx.Request,
) (int64, string, bool) {
	if intent.VendorName != "" {
		if id, ok := conv.ResolveName(statex.EntityVendor, intent.VendorName); ok {
			return id, intent.VendorName, true
		}

		// Unknown name: fetch nearby vendors, remember them all, then
		// fuzzy-match the requested name against the fresh list.
		vendors, err := w.catalog.NearbyVendors(ctx, loc.Latitude, loc.Longitude, "", nearbyVendorLimit)
		if err != nil {
			log.Warn().Err(err).Str("vendor", intent.VendorName).Msg("nearby fetch during vendor resolution failed")
			return 0, "", false
		}
		registerVendors(conv, vendors, req)
		for _, v := range vendors {
			if statex.NamesMatch(v.StoreName, intent.VendorName) {
				return v.ID, v.StoreName, true
			}
		}
		return 0, "", false
	}

	// Generic "show me the menu": the most recently mentioned vendor.
	if vendor, ok := conv.Entities.MostRecentVendor(); ok {
		return vendor.ID, vendor.Name, true
	}
	return 0, "", false
}

// groupServices buckets catalog rows by category in first-appearance
// order and returns the flattened lastShown snapshot in the same order.
func groupServices(services []contractx.Service, req contractx.Request) ([]contractx.ServiceGroup, []statex.ShownService) {
	var groups []contractx.ServiceGroup
	index := make(map[string]int)
	shown := make([]statex.ShownService, 0, len(services))

	for _, svc := range services {
		entry := statex.ShownService{
			ServiceID:    svc.ID,
			ServiceName:  svc.Name,
			VendorID:     svc.VendorID,
			VendorName:   svc.VendorName,
			Price:        svc.Price,
			Discount:     svc.Discount,
			DiscountType: svc.DiscountType,
			Veg:          svc.Veg,
			CategoryID:   svc.CategoryID,
			CategoryName: svc.CategoryName,
			ShownAt:      req.Now.UTC(),
		}
		shown = append(shown, entry)

		category := svc.CategoryName
		if category == "" {
			category = "Other"
		}
		i, ok := index[category]
		if !ok {
			groups = append(groups, contractx.ServiceGroup{CategoryName: category})
			i = len(groups) - 1
			index[category] = i
		}
		groups[i].Services = append(groups[i].Services, entry)
	}

	return groups, shown
}

func registerVendors(conv *statex.Conversation, vendors []contractx.Vendor, req contractx.Request) {
	for _, v := range vendors {
		conv.Entities.Upsert(statex.StoreItem{
			Type:          statex.EntityVendor,
			ID:            v.ID,
			Name:          v.StoreName,
			LastMentioned: req.Now.UTC(),
		})
	}
}

func registerServices(conv *statex.Conversation, services []contractx.Service, req contractx.Request) {
	now := req.Now.UTC()
	for _, svc := range services {
		conv.Entities.Upsert(statex.StoreItem{
			Type:          statex.EntityService,
			ID:            svc.ID,
			Name:          svc.Name,
			VendorID:      svc.VendorID,
			CategoryID:    svc.CategoryID,
			LastMentioned: now,
		})
		if svc.VendorName != "" {
			conv.Entities.Upsert(statex.StoreItem{
				Type:          statex.EntityVendor,
				ID:            svc.VendorID,
				Name:          svc.VendorName,
				LastMentioned: now,
			})
		}
		if svc.CategoryID != 0 && svc.CategoryName != "" {
			conv.Entities.Upsert(statex.StoreItem{
				Type:          statex.EntityCategory,
				ID:            svc.CategoryID,
				Name:          svc.CategoryName,
				VendorID:      svc.VendorID,
				LastMentioned: now,
			})
		}
	}
}
