package state

import (
	"testing"
)

func TestCartAddMergesByIdentity(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, ServiceName: "Pad Thai", Price: 80, Quantity: 2})
	c.Add(CartItem{ServiceID: 1, VendorID: 10, ServiceName: "Pad Thai", Price: 80, Quantity: 3})

	if c.Len() != 1 {
		t.Fatalf("expected merged line, got %d lines", c.Len())
	}
	if c.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", c.Items[0].Quantity)
	}
}

func TestCartAddSameServiceDifferentVendor(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, Quantity: 1})
	c.Add(CartItem{ServiceID: 1, VendorID: 11, Quantity: 1})

	if c.Len() != 2 {
		t.Fatalf("same service from another vendor must be a separate line, got %d", c.Len())
	}
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10})
	c.Add(CartItem{ServiceID: 2, VendorID: 10, Quantity: -4})

	if c.Items[0].Quantity != 1 || c.Items[1].Quantity != 1 {
		t.Fatalf("expected quantities clamped to 1, got %d and %d", c.Items[0].Quantity, c.Items[1].Quantity)
	}
}

func TestCartRemove(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, Quantity: 1})

	if !c.Remove(1, 10) {
		t.Fatal("expected removal of existing line")
	}
	if c.Remove(1, 10) {
		t.Fatal("removing an absent line must report false")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cart, got %d lines", c.Len())
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, Quantity: 2})

	if !c.UpdateQuantity(1, 10, 7) {
		t.Fatal("expected update of existing line")
	}
	if c.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", c.Items[0].Quantity)
	}

	if !c.UpdateQuantity(1, 10, 0) {
		t.Fatal("expected zero quantity to remove the line")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cart after zero update, got %d", c.Len())
	}

	if c.UpdateQuantity(1, 10, 3) {
		t.Fatal("updating an absent line must report false")
	}
}

func TestCartTotal(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, Price: 80, Quantity: 2})
	c.Add(CartItem{ServiceID: 2, VendorID: 10, Price: 45.5, Quantity: 1})

	if got := c.Total(); got != 205.5 {
		t.Fatalf("expected total 205.5, got %v", got)
	}
}

func TestCartSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	var c CartStore
	c.Add(CartItem{ServiceID: 1, VendorID: 10, Quantity: 1})

	snap := c.Snapshot()
	snap[0].Quantity = 99

	if c.Items[0].Quantity != 1 {
		t.Fatalf("snapshot mutation leaked into the cart: %d", c.Items[0].Quantity)
	}
}
