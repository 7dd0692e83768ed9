package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// BunJSONDataRepository implements JSONDataRepository using Bun ORM
type BunJSONDataRepository struct {
	db *bun.DB
}

// NewBunJSONDataRepository creates a new Bun-based JSON document repository
func NewBunJSONDataRepository(db *bun.DB) *BunJSONDataRepository {
	return &BunJSONDataRepository{db: db}
}

func (r *BunJSONDataRepository) Get(ctx context.Context, id string) (*models.JSONData, error) {
	doc := new(models.JSONData)
	err := r.db.NewSelect().Model(doc).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("json data", id)
		}
		return nil, fmt.Errorf("get json data: %w", err)
	}
	return doc, nil
}

// Put inserts the document or replaces the one stored under the same ID.
func (r *BunJSONDataRepository) Put(ctx context.Context, doc *models.JSONData) error {
	_, err := r.db.NewInsert().
		Model(doc).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("schema = EXCLUDED.schema").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("put json data: %w", err)
	}
	return nil
}
