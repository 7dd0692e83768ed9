package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// ProductColumns are the product fields open to list search.
var ProductColumns = Columns{
	"id":            "id",
	"type":          "type",
	"uri":           "uri",
	"title":         "title",
	"description":   "description",
	"price":         "price",
	"createdAt":     "created_at",
	"lastUpdatedAt": "last_updated_at",
}

// BunProductRepository implements ProductRepository using Bun ORM
type BunProductRepository struct {
	db *bun.DB
}

// NewBunProductRepository creates a new Bun-based product repository
func NewBunProductRepository(db *bun.DB) *BunProductRepository {
	return &BunProductRepository{db: db}
}

func (r *BunProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkURIUnique(ctx, tx, (*models.Product)(nil), 0, product.URI); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(product).Exec(ctx); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
}

func (r *BunProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkURIUnique(ctx, tx, (*models.Product)(nil), product.ID, product.URI); err != nil {
			return err
		}
		result, err := tx.NewUpdate().Model(product).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return expectAffected(result, "product", product.ID)
	})
}

func (r *BunProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*models.Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *BunProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product := new(models.Product)
	err := r.db.NewSelect().Model(product).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("product", id)
		}
		return nil, fmt.Errorf("get product by ID: %w", err)
	}
	return product, nil
}

// List returns one page of products; locked products only when withLocked is set.
func (r *BunProductRepository) List(ctx context.Context, withLocked bool, search ListSearch, paging *Paging) ([]models.Product, int, error) {
	products := []models.Product{}
	q := r.db.NewSelect().Model(&products)
	if !withLocked {
		q = q.Where("locked = ?", false)
	}

	q, err := applySearch(q, ProductColumns, search)
	if err != nil {
		return nil, 0, err
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}
