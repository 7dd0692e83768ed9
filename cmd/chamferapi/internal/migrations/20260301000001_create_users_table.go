package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260301000001, down_20260301000001)
}

// up_20260301000001 creates the users table
func up_20260301000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	// Tombstoned rows carry rewritten values, so live rows stay unique per provider.
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_email ON users(provider, email)`)
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_username ON users(provider, username)`)
	if err != nil {
		return fmt.Errorf("failed to create users username index: %w", err)
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_deleted ON users(deleted)`)
	if err != nil {
		return fmt.Errorf("failed to create users deleted index: %w", err)
	}
	fmt.Println(" OK")
	return nil
}

// down_20260301000001 drops the users table
func down_20260301000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping users table...")
	_, err := db.NewDropTable().
		Model((*models.User)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}
	fmt.Println(" OK")
	return nil
}
