package domain

import "github.com/google/uuid"

// InventoryChange is one item of a reconciliation batch. Quantity is
// always positive; Increase selects the sign of the applied delta.
// Transient input, never persisted.
type InventoryChange struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Color     string    `json:"color" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	Increase  bool      `json:"increase"`
}

// Delta returns the signed stock delta for the item.
func (c InventoryChange) Delta() int {
	if c.Increase {
		return c.Quantity
	}
	return -c.Quantity
}

// InventoryResult reports per-item outcomes of a reconciliation batch by
// product id. The same product id can appear in both collections when a
// batch carries several items for it.
type InventoryResult struct {
	Updated []string `json:"updated"`
	Failed  []string `json:"failed"`
}
