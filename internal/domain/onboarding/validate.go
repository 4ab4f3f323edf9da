package onboarding

import (
	"fmt"
	"strings"

	"github.com/beautypass/partner-api/internal/domain/catalog"
)

// ProfileInput carries the profile fields of a save request. Image URLs are
// absent here; they are produced by the asset step.
type ProfileInput struct {
	Name               string `json:"name"`
	RepresentativeName string `json:"representative_name"`
	RegistrationNumber string `json:"registration_number"`
	Phone              string `json:"phone"`
	District           string `json:"district"`
	Address            string `json:"address"`
	DetailedAddress    string `json:"detailed_address"`
	Email              string `json:"email"`
	Website            string `json:"website"`
	Description        string `json:"description"`
}

// validate checks the whole request before any side effect runs. final adds
// the submit-only rules. enforcePromotion additionally requires promotion
// prices to undercut the base price.
func validate(profile ProfileInput, products []catalog.ProductInput, final, enforcePromotion bool) error {
	required := []struct{ field, value string }{
		{"name", profile.Name},
		{"representative_name", profile.RepresentativeName},
		{"phone", profile.Phone},
		{"address", profile.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "is required")
		}
	}

	if final && len(products) == 0 {
		return invalid("products", "at least one product is required to submit")
	}

	for i, p := range products {
		field := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			return invalid(field+".name", "is required")
		}
		if strings.TrimSpace(p.VariationRef) == "" {
			return invalid(field+".variation_ref", "is required")
		}
		if len(p.Pricings) == 0 {
			return invalid(field+".pricings", "at least one pricing option is required")
		}
		for j, pr := range p.Pricings {
			pfield := fmt.Sprintf("%s.pricings[%d]", field, j)
			if strings.TrimSpace(pr.Description) == "" {
				return invalid(pfield+".description", "is required")
			}
			if pr.Price <= 0 {
				return invalid(pfield+".price", "must be a positive amount")
			}
			if enforcePromotion && pr.PromotionPrice != nil && *pr.PromotionPrice >= pr.Price {
				return invalid(pfield+".promotion_price", "must be less than the base price")
			}
		}
	}

	return nil
}
