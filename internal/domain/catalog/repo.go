package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepository interface {
	// ListIDs returns the durable identifiers of every product persisted for
	// the account.
	ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
	// ListByAccount returns the account's products in position order, each
	// with its pricing options attached.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Product, error)
	// DeleteBatch removes the given products and cascades their pricing
	// options. Only rows owned by the account are touched.
	DeleteBatch(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) error
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	// ReplacePricings deletes every pricing option of the product and
	// inserts the given list in order.
	ReplacePricings(ctx context.Context, productID uuid.UUID, pricings []PricingOption) error
}

type VariationRepository interface {
	List(ctx context.Context) ([]Variation, error)
}
