package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beautypass/partner-api/internal/domain/account"
	"github.com/beautypass/partner-api/internal/domain/catalog"
	"github.com/beautypass/partner-api/internal/domain/hospital"
	"github.com/beautypass/partner-api/internal/platform/slack"
)

// Notifier receives the submission summary after a successful final submit.
type Notifier interface {
	NotifySubmission(ctx context.Context, sub slack.Submission)
}

// SaveRequest is the full desired state sent by the partner on every save.
type SaveRequest struct {
	Profile  ProfileInput
	Assets   hospital.AssetOps
	Products []catalog.ProductInput
}

// SaveResult reports the state after a save: the reloaded catalog carrying
// the freshly assigned durable ids, the saved profile, and any per-file
// asset rejections that did not abort the save.
type SaveResult struct {
	Profile  *hospital.Profile         `json:"profile"`
	Products []*catalog.Product        `json:"products"`
	Rejected []hospital.RejectedUpload `json:"rejected_uploads,omitempty"`
}

// Service runs the save chain. The chain is a sequence of independent remote
// calls, not a transaction: a persistence failure aborts the remaining steps
// but earlier steps stay applied, and the submission flag is only advanced
// after everything else succeeded.
type Service struct {
	accounts *account.Service
	profiles *hospital.Service
	assets   *hospital.AssetManager
	catalog  *catalog.Service
	notifier Notifier

	enforcePromotionPrice bool
	logger                zerolog.Logger
}

func NewService(
	accounts *account.Service,
	profiles *hospital.Service,
	assets *hospital.AssetManager,
	cat *catalog.Service,
	notifier Notifier,
	enforcePromotionPrice bool,
	logger zerolog.Logger,
) *Service {
	return &Service{
		accounts:              accounts,
		profiles:              profiles,
		assets:                assets,
		catalog:               cat,
		notifier:              notifier,
		enforcePromotionPrice: enforcePromotionPrice,
		logger:                logger,
	}
}

// SaveDraft persists the request and leaves (or returns) the account in the
// draft state.
func (s *Service) SaveDraft(ctx context.Context, accountID uuid.UUID, req SaveRequest) (*SaveResult, error) {
	res, err := s.save(ctx, accountID, req, false)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.MarkDraft(ctx, accountID); err != nil {
		return nil, fmt.Errorf("clear submission flag: %w", err)
	}
	return res, nil
}

// SubmitFinal runs the same save sequence, then advances the flag and fires
// the notification. The flag is never set if any earlier step failed.
func (s *Service) SubmitFinal(ctx context.Context, accountID uuid.UUID, req SaveRequest) (*SaveResult, error) {
	res, err := s.save(ctx, accountID, req, true)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.MarkSubmitted(ctx, accountID); err != nil {
		return nil, fmt.Errorf("set submission flag: %w", err)
	}

	s.notifier.NotifySubmission(ctx, buildSubmission(res.Profile, res.Products))
	return res, nil
}

// UndoSubmit returns the account to draft without touching catalog or
// profile rows. No notification is sent.
func (s *Service) UndoSubmit(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.MarkDraft(ctx, accountID)
}

// State loads everything the onboarding form needs to rehydrate.
func (s *Service) State(ctx context.Context, accountID uuid.UUID) (*account.Account, *hospital.Profile, []*catalog.Product, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := s.profiles.Get(ctx, accountID)
	if err != nil {
		return nil, nil, nil, err
	}
	products, err := s.catalog.List(ctx, accountID)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, p, products, nil
}

// Variations exposes the procedure taxonomy for the form.
func (s *Service) Variations(ctx context.Context) ([]catalog.Variation, error) {
	return s.catalog.Variations(ctx)
}

// save is the shared sequence: validate, assets, profile upsert, catalog
// reconciliation. Validation runs strictly first so no mutation happens on a
// rejected request.
func (s *Service) save(ctx context.Context, accountID uuid.UUID, req SaveRequest, final bool) (*SaveResult, error) {
	if err := validate(req.Profile, req.Products, final, s.enforcePromotionPrice); err != nil {
		return nil, err
	}

	current, err := s.profiles.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	assets, err := s.assets.Apply(ctx, accountID, current, req.Assets)
	if err != nil {
		return nil, err
	}

	profile := &hospital.Profile{
		AccountID:          accountID,
		Name:               req.Profile.Name,
		RepresentativeName: req.Profile.RepresentativeName,
		RegistrationNumber: req.Profile.RegistrationNumber,
		Phone:              req.Profile.Phone,
		District:           req.Profile.District,
		Address:            req.Profile.Address,
		DetailedAddress:    req.Profile.DetailedAddress,
		Email:              req.Profile.Email,
		Website:            req.Profile.Website,
		Description:        req.Profile.Description,
		LogoURL:            assets.LogoURL,
		InteriorImageURLs:  assets.InteriorURLs,
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if err := s.catalog.Reconcile(ctx, accountID, req.Products); err != nil {
		return nil, fmt.Errorf("reconcile catalog: %w", err)
	}

	products, err := s.catalog.List(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("reload catalog: %w", err)
	}

	return &SaveResult{Profile: profile, Products: products, Rejected: assets.Rejected}, nil
}

func buildSubmission(p *hospital.Profile, products []*catalog.Product) slack.Submission {
	sub := slack.Submission{
		HospitalName:       p.Name,
		RepresentativeName: p.RepresentativeName,
		Phone:              p.Phone,
		Email:              p.Email,
		District:           p.District,
		Address:            p.Address,
		DetailedAddress:    p.DetailedAddress,
	}
	for _, product := range products {
		sp := slack.Product{Name: product.Name}
		for _, pr := range product.Pricings {
			sp.Pricings = append(sp.Pricings, slack.Pricing{
				Description:    pr.Description,
				Price:          pr.Price,
				PromotionPrice: pr.PromotionPrice,
			})
		}
		sub.Products = append(sub.Products, sp)
	}
	return sub
}
