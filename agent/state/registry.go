package state

import (
	"sort"
	"strings"
	"time"
)

// maxRegistryEntries bounds per-conversation entity memory. Overflow is
// trimmed by lastMentioned, not insertion order.
const maxRegistryEntries = 500

type EntityType string

const (
	EntityVendor   EntityType = "vendor"
	EntityService  EntityType = "service"
	EntityCategory EntityType = "category"
)

// StoreItem is one remembered domain entity. Identity is
// (Type, ID, Name case-insensitive); a matching upsert replaces in place.
type StoreItem struct {
	Type          EntityType `json:"type"`
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	VendorID      int64      `json:"vendor_id,omitempty"`
	CategoryID    int64      `json:"category_id,omitempty"`
	LastMentioned time.Time  `json:"last_mentioned"`
}

// EntityRegistry is bounded, deduplicated memory of entities mentioned in
// one conversation. It is advisory memory, not a foreign-key constraint:
// lookups return "not found" instead of failing.
type EntityRegistry struct {
	Items []StoreItem `json:"items,omitempty"`
}

// Upsert inserts or replaces by identity key, then evicts the least
// recently mentioned entries beyond the bound.
func (r *EntityRegistry) Upsert(item StoreItem) {
	for i := range r.Items {
		if sameIdentity(r.Items[i], item) {
			r.Items[i] = item
			return
		}
	}
	r.Items = append(r.Items, item)

	if len(r.Items) > maxRegistryEntries {
		sort.SliceStable(r.Items, func(i, j int) bool {
			return r.Items[i].LastMentioned.After(r.Items[j].LastMentioned)
		})
		r.Items = r.Items[:maxRegistryEntries]
	}
}

// FindIDByName is a case-insensitive exact match. Fuzzy matching is the
// caller's concern, not the registry's.
func (r *EntityRegistry) FindIDByName(t EntityType, name string) (int64, bool) {
	for _, item := range r.Items {
		if item.Type == t && strings.EqualFold(item.Name, name) {
			return item.ID, true
		}
	}
	return 0, false
}

func (r *EntityRegistry) ItemsByType(t EntityType) []StoreItem {
	var out []StoreItem
	for _, item := range r.Items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

func (r *EntityRegistry) ItemsByVendor(vendorID int64) []StoreItem {
	var out []StoreItem
	for _, item := range r.Items {
		if item.VendorID == vendorID || (item.Type == EntityVendor && item.ID == vendorID) {
			out = append(out, item)
		}
	}
	return out
}

// MostRecentVendor returns the vendor entry with the newest lastMentioned.
func (r *EntityRegistry) MostRecentVendor() (StoreItem, bool) {
	var best StoreItem
	found := false
	for _, item := range r.Items {
		if item.Type != EntityVendor {
			continue
		}
		if !found || item.LastMentioned.After(best.LastMentioned) {
			best = item
			found = true
		}
	}
	return best, found
}

func (r *EntityRegistry) Len() int {
	return len(r.Items)
}

func sameIdentity(a, b StoreItem) bool {
	return a.Type == b.Type && a.ID == b.ID && strings.EqualFold(a.Name, b.Name)
}
