package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260301000003, down_20260301000003)
}

// up_20260301000003 creates json_data and upload_logs
func up_20260301000003(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating json_data table...")
	_, err := db.NewCreateTable().
		Model((*models.JSONData)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create json_data table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating upload_logs table...")
	_, err = db.NewCreateTable().
		Model((*models.UploadLog)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create upload_logs table: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_upload_logs_user ON upload_logs(user_id)`)
	if err != nil {
		return fmt.Errorf("failed to create upload_logs user index: %w", err)
	}
	fmt.Println(" OK")
	return nil
}

// down_20260301000003 drops json_data and upload_logs
func down_20260301000003(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping upload_logs and json_data tables...")
	for _, model := range []interface{}{(*models.UploadLog)(nil), (*models.JSONData)(nil)} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	fmt.Println(" OK")
	return nil
}
