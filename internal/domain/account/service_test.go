package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type mockAccountRepo struct {
	byID       map[uuid.UUID]*Account
	byUsername map[string]*Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:       make(map[uuid.UUID]*Account),
		byUsername: make(map[string]*Account),
	}
}

func (m *mockAccountRepo) Create(ctx context.Context, a *Account) error {
	if _, ok := m.byUsername[a.Username]; ok {
		return ErrUsernameTaken
	}
	a.ID = uuid.New()
	cp := *a
	m.byID[a.ID] = &cp
	m.byUsername[a.Username] = &cp
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	a, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) SetSubmitted(ctx context.Context, id uuid.UUID, submitted bool) error {
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.IsSubmitted = submitted
	return nil
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewService(newMockAccountRepo())

	a, err := svc.Register(context.Background(), "clinic-seoul", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMockAccountRepo())

	if _, err := svc.Register(context.Background(), "  ", "longenough"); err == nil {
		t.Error("blank username accepted")
	}
	if _, err := svc.Register(context.Background(), "clinic", "short"); err == nil {
		t.Error("short password accepted")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewService(newMockAccountRepo())

	if _, err := svc.Register(context.Background(), "clinic", "password-one"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "clinic", "password-two"); err != ErrUsernameTaken {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc := NewService(newMockAccountRepo())
	reg, err := svc.Register(context.Background(), "clinic", "valid-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	a, err := svc.Login(context.Background(), "clinic", "valid-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if a.ID != reg.ID {
		t.Errorf("logged-in id = %s, want %s", a.ID, reg.ID)
	}

	if _, err := svc.Login(context.Background(), "clinic", "wrong-password"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "valid-password"); err != ErrInvalidCredentials {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSubmissionFlagTransitions(t *testing.T) {
	repo := newMockAccountRepo()
	svc := NewService(repo)
	a, err := svc.Register(context.Background(), "clinic", "valid-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.MarkSubmitted(context.Background(), a.ID); err != nil {
		t.Fatalf("MarkSubmitted: %v", err)
	}
	got, _ := svc.Get(context.Background(), a.ID)
	if !got.IsSubmitted {
		t.Fatal("flag not set after MarkSubmitted")
	}

	if err := svc.MarkDraft(context.Background(), a.ID); err != nil {
		t.Fatalf("MarkDraft: %v", err)
	}
	got, _ = svc.Get(context.Background(), a.ID)
	if got.IsSubmitted {
		t.Fatal("flag still set after MarkDraft")
	}

	// Reverting an account already in draft stays a no-op.
	if err := svc.MarkDraft(context.Background(), a.ID); err != nil {
		t.Fatalf("second MarkDraft: %v", err)
	}

	if err := svc.MarkSubmitted(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("unknown account: err = %v, want ErrNotFound", err)
	}
}
