package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// PhotoColumns are the photo fields open to list search.
var PhotoColumns = Columns{
	"id":          "id",
	"name":        "name",
	"resourceURL": "resource_url",
	"createdAt":   "created_at",
}

// BunPhotoRepository implements PhotoRepository using Bun ORM
type BunPhotoRepository struct {
	db *bun.DB
}

// NewBunPhotoRepository creates a new Bun-based photo repository
func NewBunPhotoRepository(db *bun.DB) *BunPhotoRepository {
	return &BunPhotoRepository{db: db}
}

func (r *BunPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	if _, err := r.db.NewInsert().Model(photo).Exec(ctx); err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (r *BunPhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	result, err := r.db.NewUpdate().Model(photo).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return expectAffected(result, "photo", photo.ID)
}

func (r *BunPhotoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*models.Photo)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete photo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *BunPhotoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	photo := new(models.Photo)
	err := r.db.NewSelect().Model(photo).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("photo", id)
		}
		return nil, fmt.Errorf("get photo by ID: %w", err)
	}
	return photo, nil
}

// List returns one page of photos; inactive photos only when withInactive is set.
func (r *BunPhotoRepository) List(ctx context.Context, withInactive bool, search ListSearch, paging *Paging) ([]models.Photo, int, error) {
	photos := []models.Photo{}
	q := r.db.NewSelect().Model(&photos)
	if !withInactive {
		q = q.Where("active = ?", true)
	}

	q, err := applySearch(q, PhotoColumns, search)
	if err != nil {
		return nil, 0, err
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	return photos, total, nil
}
