// Package hospital holds the partner's hospital profile and the lifecycle of
// its uploaded image assets.
package hospital

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("hospital profile not found")

// Profile is the single onboarding profile owned by a partner account.
// Exactly one row exists per account; writes are keyed on AccountID, never on
// the profile's own id.
type Profile struct {
	ID                 uuid.UUID `json:"id"`
	AccountID          uuid.UUID `json:"account_id"`
	Name               string    `json:"name"`
	RepresentativeName string    `json:"representative_name"`
	RegistrationNumber string    `json:"registration_number"`
	Phone              string    `json:"phone"`
	District           string    `json:"district"`
	Address            string    `json:"address"`
	DetailedAddress    string    `json:"detailed_address"`
	Email              string    `json:"email"`
	Website            string    `json:"website"`
	Description        string    `json:"description"`
	LogoURL            string    `json:"logo_url"`
	InteriorImageURLs  []string  `json:"interior_image_urls"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
