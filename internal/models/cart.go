package models

import "time"

// Cart item types.
const (
	ItemTypePart    = "part"
	ItemTypeCar     = "car"
	ItemTypeService = "service"
)

// CartLineItem is one entry in a cart: a quantity of a single catalog
// item at a fixed unit price. Variant/color fields are set for car items,
// PartNumber for part items.
type CartLineItem struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	VariantID   string `json:"variant_id,omitempty"`
	VariantName string `json:"variant_name,omitempty"`
	ColorID     string `json:"color_id,omitempty"`
	ColorName   string `json:"color_name,omitempty"`
	PartNumber  string `json:"part_number,omitempty"`
}

// Cart holds a session's line items and at most one applied coupon.
// The coupon is a snapshot of the catalog entry taken at apply time;
// catalog coupons are immutable so the snapshot never goes stale.
type Cart struct {
	SessionID string         `json:"session_id"`
	Items     []CartLineItem `json:"items"`
	Coupon    *Coupon        `json:"coupon,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CartTotals is the computed money breakdown for a cart.
type CartTotals struct {
	Subtotal   int64  `json:"subtotal"`
	Discount   int64  `json:"discount"`
	Tax        int64  `json:"tax"`
	Total      int64  `json:"total"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// CartView is a cart together with its totals, the payload returned by
// every cart mutation.
type CartView struct {
	SessionID string         `json:"session_id"`
	Items     []CartLineItem `json:"items"`
	Totals    CartTotals     `json:"totals"`
}

// Subtotal sums price*quantity over all line items, pre-discount, pre-tax.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, item := range c.Items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}

// FindItem returns the index of the line item with the given id, or -1.
func (c *Cart) FindItem(lineItemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}

// FindMergeTarget returns the index of an existing line matching on
// (itemID, variantID), the merge key for repeated adds, or -1.
func (c *Cart) FindMergeTarget(itemID, variantID string) int {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID && c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
