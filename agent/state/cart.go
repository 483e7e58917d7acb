package state

import "time"

// CartItem is one cart line. Identity is (ServiceID, VendorID); a cart
// never holds two lines with the same identity.
type CartItem struct {
	ServiceID    int64     `json:"service_id"`
	VendorID     int64     `json:"vendor_id"`
	ServiceName  string    `json:"service_name"`
	VendorName   string    `json:"vendor_name"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
	Discount     float64   `json:"discount,omitempty"`
	DiscountType string    `json:"discount_type,omitempty"`
	Veg          *bool     `json:"veg,omitempty"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
}

// CartStore is the per-conversation shopping cart. All operations are
// synchronous and total; side effects stay inside the store.
type CartStore struct {
	Items []CartItem `json:"items,omitempty"`
}

// Add merges by identity key: an existing line gains the incoming
// quantity (default 1), a new line is inserted with quantity >= 1.
func (c *CartStore) Add(item CartItem) {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].ServiceID == item.ServiceID && c.Items[i].VendorID == item.VendorID {
			c.Items[i].Quantity += qty
			return
		}
	}
	item.Quantity = qty
	c.Items = append(c.Items, item)
}

// Remove deletes the matching line; no-op when absent.
func (c *CartStore) Remove(serviceID, vendorID int64) bool {
	for i := range c.Items {
		if c.Items[i].ServiceID == serviceID && c.Items[i].VendorID == vendorID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity of a line; quantity <= 0 removes it.
// Reports whether a matching line existed.
func (c *CartStore) UpdateQuantity(serviceID, vendorID int64, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(serviceID, vendorID)
	}
	for i := range c.Items {
		if c.Items[i].ServiceID == serviceID && c.Items[i].VendorID == vendorID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

func (c *CartStore) Clear() {
	c.Items = nil
}

// Snapshot returns a copy safe to hand to narration.
func (c *CartStore) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c *CartStore) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (c *CartStore) Len() int {
	return len(c.Items)
}
