// Package catalog reconciles a partner's procedure catalog: the full desired
// product list sent on every save is diffed against the persisted set, with
// durable identifiers preserved for items the client still references.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is one persisted catalog entry. Position records the order of the
// client's list so reloads render it unchanged.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Name         string          `json:"name"`
	VariationRef string          `json:"variation_ref"`
	Position     int             `json:"position"`
	Pricings     []PricingOption `json:"pricings"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PricingOption is one price line owned by a product. Price and
// PromotionPrice are minor currency units.
type PricingOption struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Description    string    `json:"description"`
	Price          int64     `json:"price"`
	PromotionPrice *int64    `json:"promotion_price"`
	Position       int       `json:"position"`
}

// Variation is one read-only taxonomy entry a product must reference.
type Variation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductInput is one item of the client's desired list. ID is nil for items
// the client has not persisted yet; placeholder identifiers are resolved
// into this shape at the transport boundary, so reconciliation never sees
// them.
type ProductInput struct {
	ID           *uuid.UUID
	Name         string
	VariationRef string
	Pricings     []PricingInput
}

// PricingInput is one incoming price line.
type PricingInput struct {
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	PromotionPrice *int64 `json:"promotion_price"`
}
