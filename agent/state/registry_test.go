package state

import (
	"fmt"
	"testing"
	"time"
)

func TestRegistryUpsertReplacesByIdentity(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	r.Upsert(StoreItem{Type: EntityService, ID: 7, Name: "Pad Thai", LastMentioned: base})
	r.Upsert(StoreItem{Type: EntityService, ID: 7, Name: "pad thai", LastMentioned: base.Add(time.Minute)})

	if r.Len() != 1 {
		t.Fatalf("expected identity match to replace, got %d entries", r.Len())
	}
	if !r.Items[0].LastMentioned.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected replacement to win, got %v", r.Items[0].LastMentioned)
	}
}

func TestRegistryUpsertDistinctIdentities(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	now := time.Now().UTC()

	r.Upsert(StoreItem{Type: EntityService, ID: 7, Name: "Pad Thai", LastMentioned: now})
	r.Upsert(StoreItem{Type: EntityVendor, ID: 7, Name: "Pad Thai", LastMentioned: now})
	r.Upsert(StoreItem{Type: EntityService, ID: 8, Name: "Pad Thai", LastMentioned: now})
	r.Upsert(StoreItem{Type: EntityService, ID: 7, Name: "Pad See Ew", LastMentioned: now})

	if r.Len() != 4 {
		t.Fatalf("expected 4 distinct entries, got %d", r.Len())
	}
}

func TestRegistryEvictsLeastRecentlyMentioned(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxRegistryEntries+1; i++ {
		r.Upsert(StoreItem{
			Type:          EntityService,
			ID:            int64(i),
			Name:          fmt.Sprintf("service-%d", i),
			LastMentioned: base.Add(time.Duration(i) * time.Second),
		})
	}

	if r.Len() != maxRegistryEntries {
		t.Fatalf("expected bound of %d, got %d", maxRegistryEntries, r.Len())
	}
	// service-0 has the oldest lastMentioned and must be gone.
	if _, ok := r.FindIDByName(EntityService, "service-0"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := r.FindIDByName(EntityService, fmt.Sprintf("service-%d", maxRegistryEntries)); !ok {
		t.Fatal("expected newest entry retained")
	}
}

func TestRegistryFindIDByNameCaseInsensitive(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	r.Upsert(StoreItem{Type: EntityVendor, ID: 42, Name: "Som Tam House", LastMentioned: time.Now()})

	id, ok := r.FindIDByName(EntityVendor, "SOM TAM HOUSE")
	if !ok || id != 42 {
		t.Fatalf("expected case-insensitive hit id=42, got id=%d ok=%v", id, ok)
	}
	if _, ok := r.FindIDByName(EntityVendor, "Som Tam"); ok {
		t.Fatal("partial name must not match exact lookup")
	}
	if _, ok := r.FindIDByName(EntityService, "Som Tam House"); ok {
		t.Fatal("type must participate in lookup")
	}
}

func TestRegistryMostRecentVendor(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := r.MostRecentVendor(); ok {
		t.Fatal("empty registry must report no vendor")
	}

	r.Upsert(StoreItem{Type: EntityVendor, ID: 1, Name: "First", LastMentioned: base})
	r.Upsert(StoreItem{Type: EntityService, ID: 9, Name: "Late Service", LastMentioned: base.Add(time.Hour)})
	r.Upsert(StoreItem{Type: EntityVendor, ID: 2, Name: "Second", LastMentioned: base.Add(time.Minute)})

	vendor, ok := r.MostRecentVendor()
	if !ok || vendor.ID != 2 {
		t.Fatalf("expected vendor id=2, got id=%d ok=%v", vendor.ID, ok)
	}
}

func TestRegistryItemsByVendor(t *testing.T) {
	t.Parallel()

	var r EntityRegistry
	now := time.Now().UTC()
	r.Upsert(StoreItem{Type: EntityVendor, ID: 5, Name: "Noodle Bar", LastMentioned: now})
	r.Upsert(StoreItem{Type: EntityService, ID: 50, Name: "Ramen", VendorID: 5, LastMentioned: now})
	r.Upsert(StoreItem{Type: EntityService, ID: 60, Name: "Curry", VendorID: 6, LastMentioned: now})

	got := r.ItemsByVendor(5)
	if len(got) != 2 {
		t.Fatalf("expected vendor entry plus its service, got %d", len(got))
	}
}
