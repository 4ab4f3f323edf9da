package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// mockProductRepo stores products in memory and keeps an operation log so
// tests can assert call ordering.
type mockProductRepo struct {
	products map[uuid.UUID]*Product
	pricings map[uuid.UUID][]PricingOption
	ops      []string

	failInsert bool
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*Product),
		pricings: make(map[uuid.UUID][]PricingOption),
	}
}

func (m *mockProductRepo) ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	m.ops = append(m.ops, "list")
	var ids []uuid.UUID
	for id, p := range m.products {
		if p.AccountID == accountID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockProductRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		if p.AccountID == accountID {
			cp := *p
			cp.Pricings = m.pricings[p.ID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockProductRepo) DeleteBatch(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) error {
	m.ops = append(m.ops, "delete")
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.AccountID == accountID {
			delete(m.products, id)
			delete(m.pricings, id)
		}
	}
	return nil
}

func (m *mockProductRepo) Insert(ctx context.Context, p *Product) error {
	m.ops = append(m.ops, "insert")
	if m.failInsert {
		return errors.New("insert refused")
	}
	p.ID = uuid.New()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, p *Product) error {
	m.ops = append(m.ops, "update")
	existing, ok := m.products[p.ID]
	if !ok || existing.AccountID != p.AccountID {
		return nil
	}
	existing.Name = p.Name
	existing.VariationRef = p.VariationRef
	existing.Position = p.Position
	return nil
}

func (m *mockProductRepo) ReplacePricings(ctx context.Context, productID uuid.UUID, pricings []PricingOption) error {
	m.ops = append(m.ops, "pricings")
	list := make([]PricingOption, len(pricings))
	for i := range pricings {
		pricings[i].ID = uuid.New()
		pricings[i].ProductID = productID
		pricings[i].Position = i
		list[i] = pricings[i]
	}
	m.pricings[productID] = list
	return nil
}

type staticVariations []Variation

func (v staticVariations) List(ctx context.Context) ([]Variation, error) { return v, nil }

func newTestService(repo *mockProductRepo) *Service {
	return NewService(repo, staticVariations{{ID: "rhinoplasty", Name: "Rhinoplasty"}})
}

func TestReconcileAllNewInserts(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	inputs := []ProductInput{
		{Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
		{Name: "B", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 200}}},
	}
	if err := svc.Reconcile(context.Background(), accountID, inputs); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(repo.products) != 2 {
		t.Fatalf("persisted = %d, want 2", len(repo.products))
	}
}

func TestReconcileDeletesAbsentAndPreservesIDs(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	seed := []ProductInput{
		{Name: "keep", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
		{Name: "drop", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}
	if err := svc.Reconcile(context.Background(), accountID, seed); err != nil {
		t.Fatalf("seed Reconcile: %v", err)
	}

	var keepID uuid.UUID
	for id, p := range repo.products {
		if p.Name == "keep" {
			keepID = id
		}
	}

	// Second save: keep edited, drop absent, one placeholder item added.
	second := []ProductInput{
		{ID: &keepID, Name: "keep renamed", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 150}}},
		{Name: "added", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 300}}},
	}
	if err := svc.Reconcile(context.Background(), accountID, second); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if len(repo.products) != 2 {
		t.Fatalf("persisted = %d, want 2", len(repo.products))
	}
	kept, ok := repo.products[keepID]
	if !ok {
		t.Fatal("durable id not preserved for referenced product")
	}
	if kept.Name != "keep renamed" {
		t.Errorf("name = %q, want update in place", kept.Name)
	}
	for _, p := range repo.products {
		if p.Name == "drop" {
			t.Error("absent product not deleted")
		}
	}
}

func TestReconcileDeleteRunsBeforeInsertAndUpdate(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	if err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{Name: "old", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}); err != nil {
		t.Fatalf("seed Reconcile: %v", err)
	}
	repo.ops = nil

	if err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{Name: "new", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	deleteAt, insertAt := -1, -1
	for i, op := range repo.ops {
		switch op {
		case "delete":
			deleteAt = i
		case "insert":
			if insertAt == -1 {
				insertAt = i
			}
		}
	}
	if deleteAt == -1 || insertAt == -1 || deleteAt > insertAt {
		t.Fatalf("ops = %v, want delete before insert", repo.ops)
	}
}

func TestReconcilePricingFullReplacement(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	// First save: product "A" under a placeholder, one pricing option.
	if err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "300 units", Price: 100000}}},
	}); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	var idA uuid.UUID
	for id := range repo.products {
		idA = id
	}

	// Second save: same product under its durable id, edited price plus a
	// second option.
	if err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{ID: &idA, Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{
			{Description: "300 units", Price: 120000},
			{Description: "600 units", Price: 190000},
		}},
	}); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if len(repo.products) != 1 {
		t.Fatalf("products = %d, want no duplicate of A", len(repo.products))
	}
	got := repo.pricings[idA]
	if len(got) != 2 {
		t.Fatalf("pricings = %d, want exactly the incoming list", len(got))
	}
	if got[0].Description != "300 units" || got[0].Price != 120000 {
		t.Errorf("pricing[0] = %+v", got[0])
	}
	if got[1].Description != "600 units" || got[1].Price != 190000 {
		t.Errorf("pricing[1] = %+v", got[1])
	}
}

func TestReconcileIdempotentSave(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	if err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	var idA uuid.UUID
	for id := range repo.products {
		idA = id
	}

	same := []ProductInput{
		{ID: &idA, Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}
	if err := svc.Reconcile(context.Background(), accountID, same); err != nil {
		t.Fatalf("repeat Reconcile: %v", err)
	}
	if len(repo.products) != 1 || len(repo.pricings[idA]) != 1 {
		t.Fatalf("repeat save changed the final set: %d products, %d pricings", len(repo.products), len(repo.pricings[idA]))
	}
}

func TestReconcileScopedToAccount(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	mine, theirs := uuid.New(), uuid.New()

	if err := svc.Reconcile(context.Background(), theirs, []ProductInput{
		{Name: "other partner", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	}); err != nil {
		t.Fatalf("seed Reconcile: %v", err)
	}

	// Saving an empty list for one account must not touch another's rows.
	if err := svc.Reconcile(context.Background(), mine, nil); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(repo.products) != 1 {
		t.Fatalf("cross-account rows deleted: %d products left", len(repo.products))
	}
}

func TestReconcileRejectsForeignProductID(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	victim, attacker := uuid.New(), uuid.New()

	if err := svc.Reconcile(context.Background(), victim, []ProductInput{
		{Name: "Rhinoplasty", VariationRef: "rhinoplasty", Pricings: []PricingInput{
			{Description: "full procedure", Price: 120000},
		}},
	}); err != nil {
		t.Fatalf("seed Reconcile: %v", err)
	}
	var victimID uuid.UUID
	for id := range repo.products {
		victimID = id
	}

	err := svc.Reconcile(context.Background(), attacker, []ProductInput{
		{ID: &victimID, Name: "hijacked", VariationRef: "rhinoplasty", Pricings: []PricingInput{
			{Description: "attacker price", Price: 1},
		}},
	})
	var ownErr *ErrProductNotOwned
	if !errors.As(err, &ownErr) {
		t.Fatalf("err = %v, want ErrProductNotOwned", err)
	}
	if ownErr.ID != victimID {
		t.Errorf("rejected id = %s, want %s", ownErr.ID, victimID)
	}

	got := repo.pricings[victimID]
	if len(got) != 1 || got[0].Description != "full procedure" || got[0].Price != 120000 {
		t.Fatalf("victim pricing mutated across accounts: %+v", got)
	}
	if repo.products[victimID].Name != "Rhinoplasty" {
		t.Error("victim product mutated across accounts")
	}
}

func TestReconcileRejectsStaleProductID(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	stale := uuid.New()
	err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{ID: &stale, Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{
			{Description: "basic", Price: 100},
		}},
	})
	var ownErr *ErrProductNotOwned
	if !errors.As(err, &ownErr) {
		t.Fatalf("err = %v, want ErrProductNotOwned", err)
	}
	// The rejection happens before any store mutation.
	for _, op := range repo.ops {
		if op == "delete" || op == "insert" || op == "update" || op == "pricings" {
			t.Fatalf("ops = %v, want reads only", repo.ops)
		}
	}
}

func TestReconcileInsertFailureAborts(t *testing.T) {
	repo := newMockProductRepo()
	svc := newTestService(repo)
	accountID := uuid.New()

	repo.failInsert = true
	err := svc.Reconcile(context.Background(), accountID, []ProductInput{
		{Name: "A", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
		{Name: "B", VariationRef: "rhinoplasty", Pricings: []PricingInput{{Description: "basic", Price: 100}}},
	})
	if err == nil {
		t.Fatal("insert failure not surfaced")
	}
	// No pricing write may follow the failed insert.
	for i, op := range repo.ops {
		if op == "pricings" {
			t.Fatalf("ops = %v, pricing written at %d after failed insert", repo.ops, i)
		}
	}
}
