package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beautypass/partner-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const profileCols = `id, account_id, name, representative_name, registration_number,
	phone, district, address, detailed_address, email, website, description,
	logo_url, interior_image_urls, created_at, updated_at`

func (r *profileRepoPG) scanRow(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.RepresentativeName, &p.RegistrationNumber,
		&p.Phone, &p.District, &p.Address, &p.DetailedAddress, &p.Email, &p.Website, &p.Description,
		&p.LogoURL, &p.InteriorImageURLs, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *profileRepoPG) Upsert(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// The unique constraint on account_id keeps the 1:1 shape; an existing
	// row wins the conflict and keeps its original id.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO hospital_profiles (id, account_id, name, representative_name,
			registration_number, phone, district, address, detailed_address,
			email, website, description, logo_url, interior_image_urls)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (account_id) DO UPDATE SET
			name = EXCLUDED.name,
			representative_name = EXCLUDED.representative_name,
			registration_number = EXCLUDED.registration_number,
			phone = EXCLUDED.phone,
			district = EXCLUDED.district,
			address = EXCLUDED.address,
			detailed_address = EXCLUDED.detailed_address,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			description = EXCLUDED.description,
			logo_url = EXCLUDED.logo_url,
			interior_image_urls = EXCLUDED.interior_image_urls,
			updated_at = NOW()
		RETURNING id`,
		p.ID, p.AccountID, p.Name, p.RepresentativeName,
		p.RegistrationNumber, p.Phone, p.District, p.Address, p.DetailedAddress,
		p.Email, p.Website, p.Description, p.LogoURL, p.InteriorImageURLs).Scan(&p.ID)
}

func (r *profileRepoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM hospital_profiles WHERE account_id = $1`, accountID))
}
