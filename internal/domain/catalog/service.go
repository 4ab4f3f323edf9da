package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ErrProductNotOwned rejects a durable identifier that is not among the
// account's persisted products, whether it is stale or belongs to another
// account.
type ErrProductNotOwned struct {
	ID uuid.UUID
}

func (e *ErrProductNotOwned) Error() string {
	return fmt.Sprintf("product %s does not belong to the account", e.ID)
}

type Service struct {
	products   ProductRepository
	variations VariationRepository
}

func NewService(products ProductRepository, variations VariationRepository) *Service {
	return &Service{products: products, variations: variations}
}

// Reconcile replaces the account's persisted catalog with the desired list.
//
// The persisted set is treated as a snapshot keyed by durable id and the
// incoming list as the new desired snapshot: products whose id is absent from
// the incoming list are deleted first, products the client still references
// are updated in place keeping their id, and items without an id are
// inserted fresh. Deletes run before inserts and updates so removing one
// item and adding another in the same save cannot collide. Pricing options
// are not diffed: every touched product gets its pricing list dropped and
// rewritten from the input.
//
// The store calls are sequential and not wrapped in a transaction; a failure
// aborts the remainder and leaves earlier steps applied. Inputs are assumed
// validated by the caller.
func (s *Service) Reconcile(ctx context.Context, accountID uuid.UUID, inputs []ProductInput) error {
	persisted, err := s.products.ListIDs(ctx, accountID)
	if err != nil {
		return fmt.Errorf("list persisted products: %w", err)
	}

	persistedSet := make(map[uuid.UUID]bool, len(persisted))
	for _, id := range persisted {
		persistedSet[id] = true
	}

	// Every durable id must name one of the account's own rows. The
	// account-scoped update would no-op on a foreign id, but the pricing
	// rewrite is keyed on product id alone, so an unowned id is rejected
	// here before any mutation.
	incoming := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.ID != nil {
			if !persistedSet[*in.ID] {
				return &ErrProductNotOwned{ID: *in.ID}
			}
			incoming[*in.ID] = true
		}
	}

	var toDelete []uuid.UUID
	for _, id := range persisted {
		if !incoming[id] {
			toDelete = append(toDelete, id)
		}
	}
	if err := s.products.DeleteBatch(ctx, accountID, toDelete); err != nil {
		return fmt.Errorf("delete removed products: %w", err)
	}

	for pos, in := range inputs {
		p := &Product{
			AccountID:    accountID,
			Name:         in.Name,
			VariationRef: in.VariationRef,
			Position:     pos,
		}
		if in.ID != nil {
			p.ID = *in.ID
			if err := s.products.Update(ctx, p); err != nil {
				return fmt.Errorf("update product %s: %w", p.ID, err)
			}
		} else {
			if err := s.products.Insert(ctx, p); err != nil {
				return fmt.Errorf("insert product %q: %w", p.Name, err)
			}
		}

		pricings := make([]PricingOption, len(in.Pricings))
		for i, pr := range in.Pricings {
			pricings[i] = PricingOption{
				Description:    pr.Description,
				Price:          pr.Price,
				PromotionPrice: pr.PromotionPrice,
			}
		}
		if err := s.products.ReplacePricings(ctx, p.ID, pricings); err != nil {
			return fmt.Errorf("replace pricings for product %s: %w", p.ID, err)
		}
	}

	return nil
}

// List returns the account's catalog in display order.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Product, error) {
	return s.products.ListByAccount(ctx, accountID)
}

// Variations returns the procedure taxonomy the onboarding form offers.
func (s *Service) Variations(ctx context.Context) ([]Variation, error) {
	return s.variations.List(ctx)
}
