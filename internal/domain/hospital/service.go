package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Service struct {
	profiles ProfileRepository
}

func NewService(profiles ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// Get returns the account's profile, or (nil, nil) when none has been saved
// yet.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	p, err := s.profiles.GetByAccountID(ctx, accountID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Save upserts the profile keyed on its account id.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	return s.profiles.Upsert(ctx, p)
}
