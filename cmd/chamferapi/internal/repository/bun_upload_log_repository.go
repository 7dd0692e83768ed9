package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// UploadLogColumns are the upload log fields open to list search.
var UploadLogColumns = Columns{
	"id":       "id",
	"userId":   "user_id",
	"from":     "from_ip",
	"path":     "path",
	"mimetype": "mimetype",
	"uploadAt": "upload_at",
}

// BunUploadLogRepository implements UploadLogRepository using Bun ORM
type BunUploadLogRepository struct {
	db *bun.DB
}

// NewBunUploadLogRepository creates a new Bun-based upload log repository
func NewBunUploadLogRepository(db *bun.DB) *BunUploadLogRepository {
	return &BunUploadLogRepository{db: db}
}

func (r *BunUploadLogRepository) Create(ctx context.Context, entry *models.UploadLog) error {
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("create upload log: %w", err)
	}
	return nil
}

func (r *BunUploadLogRepository) List(ctx context.Context, search ListSearch, paging *Paging) ([]models.UploadLog, int, error) {
	entries := []models.UploadLog{}
	q := r.db.NewSelect().Model(&entries)

	q, err := applySearch(q, UploadLogColumns, search)
	if err != nil {
		return nil, 0, err
	}
	if search.OrderBy == "" {
		q = q.Order("upload_at DESC")
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list upload logs: %w", err)
	}
	return entries, total, nil
}
