package contract

import (
	"testing"
)

func TestIntentFromCartOperationWins(t *testing.T) {
	t.Parallel()

	// Even with exploration hints set, a flagged cart operation becomes a
	// cart intent; the sum is decided once.
	cls := Classification{
		IsCartOperation: true,
		CartAction:      CartActionAdd,
		ServiceNames:    []string{"pad thai"},
		Quantities:      []int{2},
		NeedsLocation:   true,
		VendorName:      "Noodle Bar",
		WantsServices:   true,
	}

	intent := IntentFrom(cls, "add pad thai")
	cart, ok := intent.(CartIntent)
	if !ok {
		t.Fatalf("expected CartIntent, got %T", intent)
	}
	if cart.Action != CartActionAdd || len(cart.ServiceNames) != 1 {
		t.Fatalf("unexpected cart intent: %+v", cart)
	}
}

func TestIntentFromEmptyCartActionDefaultsToView(t *testing.T) {
	t.Parallel()

	intent := IntentFrom(Classification{IsCartOperation: true}, "my cart")
	cart, ok := intent.(CartIntent)
	if !ok {
		t.Fatalf("expected CartIntent, got %T", intent)
	}
	if cart.Action != CartActionView {
		t.Fatalf("expected view default, got %q", cart.Action)
	}
}

func TestIntentFromCartActionNormalized(t *testing.T) {
	t.Parallel()

	intent := IntentFrom(Classification{IsCartOperation: true, CartAction: " REMOVE "}, "remove it")
	cart := intent.(CartIntent)
	if cart.Action != CartActionRemove {
		t.Fatalf("expected normalized remove, got %q", cart.Action)
	}
}

func TestIntentFromExplore(t *testing.T) {
	t.Parallel()

	cls := Classification{
		NeedsLocation:       true,
		LocationName:        "  Siam  ",
		VendorName:          " Noodle Bar ",
		WantsServices:       true,
		IsPaginationRequest: true,
	}

	intent := IntentFrom(cls, "what else do they have")
	explore, ok := intent.(ExploreIntent)
	if !ok {
		t.Fatalf("expected ExploreIntent, got %T", intent)
	}
	if explore.LocationName != "Siam" || explore.VendorName != "Noodle Bar" {
		t.Fatalf("expected trimmed names, got %+v", explore)
	}
	if !explore.WantsServices || !explore.Pagination || !explore.NeedsLocation {
		t.Fatalf("flags lost in conversion: %+v", explore)
	}
}

func TestSafeDefaultClassification(t *testing.T) {
	t.Parallel()

	cls := SafeDefaultClassification()
	if cls.IsCartOperation {
		t.Fatal("safe default must never mutate the cart")
	}
	if !cls.NeedsLocation {
		t.Fatal("safe default asks for a location")
	}

	if _, ok := IntentFrom(cls, "anything").(ExploreIntent); !ok {
		t.Fatal("safe default must map to exploration")
	}
}
