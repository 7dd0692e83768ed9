package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/bunx"
)

func TestMigrations_UpAndDownOnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := bunx.NewDB("file:migrations_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer bunx.Close(db)

	assert.False(t, canAlterConstraints(db))

	migrator := migrate.NewMigrator(db, Migrations)
	require.NoError(t, migrator.Init(ctx))

	group, err := migrator.Migrate(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"users", "articles", "article_collaborators", "products", "banners", "photos", "json_data", "upload_logs"} {
		var count int
		err := db.NewSelect().TableExpr(table).ColumnExpr("COUNT(*)").Scan(ctx, &count)
		assert.NoError(t, err, "table %s should exist", table)
	}

	group, err = migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	var count int
	err = db.NewSelect().TableExpr("users").ColumnExpr("COUNT(*)").Scan(ctx, &count)
	assert.Error(t, err, "users should be dropped after rollback")
}
