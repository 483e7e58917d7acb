package contract

import (
	"context"

	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

// Classifier turns a free-text query plus recent history into a
// structured classification.
type Classifier interface {
	Classify(ctx context.Context, query string, historyText string) (Classification, error)
}

// Geocoder resolves a place name to coordinates. Returns ErrNotFound
// when nothing matches.
type Geocoder interface {
	Resolve(ctx context.Context, placeName string) (statex.Location, error)
}

// Catalog is the read-only data collaborator. Both calls are idempotent
// and return an empty slice, not an error, when nothing matches.
type Catalog interface {
	NearbyVendors(ctx context.Context, lat, lon float64, vendorType string, limit int) ([]Vendor, error)
	VendorServices(ctx context.Context, vendorID int64, limit, offset int, filter string) ([]Service, error)
}

// Narrator renders a structured payload into user-facing text.
type Narrator interface {
	Render(ctx context.Context, req NarrationRequest) (Narration, error)
}

// Workflow is one handler in the dispatch chain.
type Workflow interface {
	Name() string
	CanHandle(req Request) bool
	Execute(ctx context.Context, req Request) (Output, error)
}
