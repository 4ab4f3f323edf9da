package catalog

import (
	"context"

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

type productRepoPG struct{ pool *pgxpool.Pool }

func NewProductRepoPG(pool *pgxpool.Pool) ProductRepository {
	return &productRepoPG{pool: pool}
}

func (r *productRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *productRepoPG) ListIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id FROM products WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *productRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Product, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, account_id, name, variation_ref, position, created_at, updated_at
		FROM products WHERE account_id = $1 ORDER BY position, created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	byID := make(map[uuid.UUID]*Product)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.VariationRef, &p.Position, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	priceRows, err := r.conn(ctx).Query(ctx, `
		SELECT po.id, po.product_id, po.description, po.price, po.promotion_price, po.position
		FROM pricing_options po
		JOIN products p ON p.id = po.product_id
		WHERE p.account_id = $1
		ORDER BY po.position`, accountID)
	if err != nil {
		return nil, err
	}
	defer priceRows.Close()

	for priceRows.Next() {
		var po PricingOption
		if err := priceRows.Scan(&po.ID, &po.ProductID, &po.Description, &po.Price, &po.PromotionPrice, &po.Position); err != nil {
			return nil, err
		}
		if p, ok := byID[po.ProductID]; ok {
			p.Pricings = append(p.Pricings, po)
		}
	}
	return products, priceRows.Err()
}

func (r *productRepoPG) DeleteBatch(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM products WHERE account_id = $1 AND id = ANY($2)`, accountID, ids)
	return err
}

func (r *productRepoPG) Insert(ctx context.Context, p *Product) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO products (id, account_id, name, variation_ref, position)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.AccountID, p.Name, p.VariationRef, p.Position)
	return err
}

func (r *productRepoPG) Update(ctx context.Context, p *Product) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE products SET name = $3, variation_ref = $4, position = $5, updated_at = NOW()
		WHERE id = $1 AND account_id = $2`,
		p.ID, p.AccountID, p.Name, p.VariationRef, p.Position)
	return err
}

func (r *productRepoPG) ReplacePricings(ctx context.Context, productID uuid.UUID, pricings []PricingOption) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM pricing_options WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for i := range pricings {
		po := &pricings[i]
		po.ID = uuid.New()
		po.ProductID = productID
		po.Position = i
		if _, err := c.Exec(ctx, `
			INSERT INTO pricing_options (id, product_id, description, price, promotion_price, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			po.ID, po.ProductID, po.Description, po.Price, po.PromotionPrice, po.Position); err != nil {
			return err
		}
	}
	return nil
}

type variationRepoPG struct{ pool *pgxpool.Pool }

func NewVariationRepoPG(pool *pgxpool.Pool) VariationRepository {
	return &variationRepoPG{pool: pool}
}

func (r *variationRepoPG) List(ctx context.Context) ([]Variation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM variations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variations []Variation
	for rows.Next() {
		var v Variation
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}
