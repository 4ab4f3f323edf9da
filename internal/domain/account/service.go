package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	accounts AccountRepository
}

func NewService(accounts AccountRepository) *Service {
	return &Service{accounts: accounts}
}

// Register creates a partner account with a bcrypt-hashed credential.
func (s *Service) Register(ctx context.Context, username, password string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &Account{Username: username, PasswordHash: string(hash)}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login verifies the credential. A missing account and a wrong password both
// return ErrInvalidCredentials so callers cannot probe for usernames.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, error) {
	a, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// MarkSubmitted moves the account into the submitted state. It must only be
// called after the full save sequence has succeeded.
func (s *Service) MarkSubmitted(ctx context.Context, id uuid.UUID) error {
	return s.accounts.SetSubmitted(ctx, id, true)
}

// MarkDraft returns the account to the draft state. Clearing an already
// clear flag is a no-op, so reverting twice is harmless.
func (s *Service) MarkDraft(ctx context.Context, id uuid.UUID) error {
	return s.accounts.SetSubmitted(ctx, id, false)
}
