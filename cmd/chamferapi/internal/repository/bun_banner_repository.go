package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// BannerColumns are the banner fields open to list search.
var BannerColumns = Columns{
	"id":             "id",
	"name":           "name",
	"link":           "link",
	"startDisplayAt": "start_display_at",
	"endDisplayAt":   "end_display_at",
	"createdAt":      "created_at",
}

// BannerFilter narrows a banner list to those displayable at At.
type BannerFilter struct {
	At           time.Time
	WithInactive bool
}

// BunBannerRepository implements BannerRepository using Bun ORM
type BunBannerRepository struct {
	db *bun.DB
}

// NewBunBannerRepository creates a new Bun-based banner repository
func NewBunBannerRepository(db *bun.DB) *BunBannerRepository {
	return &BunBannerRepository{db: db}
}

func (r *BunBannerRepository) Create(ctx context.Context, banner *models.Banner) error {
	if _, err := r.db.NewInsert().Model(banner).Exec(ctx); err != nil {
		return fmt.Errorf("create banner: %w", err)
	}
	return nil
}

func (r *BunBannerRepository) Update(ctx context.Context, banner *models.Banner) error {
	result, err := r.db.NewUpdate().Model(banner).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	return expectAffected(result, "banner", banner.ID)
}

func (r *BunBannerRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*models.Banner)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete banner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *BunBannerRepository) GetByID(ctx context.Context, id string) (*models.Banner, error) {
	banner := new(models.Banner)
	err := r.db.NewSelect().Model(banner).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("banner", id)
		}
		return nil, fmt.Errorf("get banner by ID: %w", err)
	}
	return banner, nil
}

// List returns banners whose display window contains filter.At. Open window ends never exclude.
func (r *BunBannerRepository) List(ctx context.Context, filter BannerFilter, search ListSearch, paging *Paging) ([]models.Banner, int, error) {
	at := filter.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	banners := []models.Banner{}
	q := r.db.NewSelect().
		Model(&banners).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("start_display_at IS NULL").WhereOr("start_display_at < ?", at)
		}).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("end_display_at IS NULL").WhereOr("end_display_at > ?", at)
		})
	if !filter.WithInactive {
		q = q.Where("active = ?", true)
	}

	q, err := applySearch(q, BannerColumns, search)
	if err != nil {
		return nil, 0, err
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list banners: %w", err)
	}
	return banners, total, nil
}
