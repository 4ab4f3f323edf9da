package hospital

import (
	"context"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	// Upsert inserts the profile for its account, or overwrites every field
	// of the existing row. The profile's durable id is filled in on return.
	Upsert(ctx context.Context, p *Profile) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error)
}
