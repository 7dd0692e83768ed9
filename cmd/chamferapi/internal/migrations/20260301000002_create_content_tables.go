package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260301000002, down_20260301000002)
}

type contentTable struct {
	name  string
	model interface{}
}

var contentTables = []contentTable{
	{"articles", (*models.Article)(nil)},
	{"article_collaborators", (*models.ArticleCollaborator)(nil)},
	{"products", (*models.Product)(nil)},
	{"banners", (*models.Banner)(nil)},
	{"photos", (*models.Photo)(nil)},
}

// authorForeignKeys lists tables whose author_id references users(id).
var authorForeignKeys = []string{"articles", "products", "banners", "photos"}

// up_20260301000002 creates articles, products, banners and photos
func up_20260301000002(ctx context.Context, db *bun.DB) error {
	for _, table := range contentTables {
		fmt.Printf(" [up] creating %s table...", table.name)
		_, err := db.NewCreateTable().
			Model(table.model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
		fmt.Println(" OK")
	}

	fmt.Print(" [up] creating content indexes...")
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_flags ON articles(is_draft, locked)`,
		`CREATE INDEX IF NOT EXISTS idx_article_collaborators_user ON article_collaborators(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_banners_window ON banners(start_display_at, end_display_at)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_active ON photos(active)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create content index: %w", err)
		}
	}
	fmt.Println(" OK")

	if canAlterConstraints(db) {
		fmt.Print(" [up] adding author foreign keys...")
		for _, table := range authorForeignKeys {
			_, err := db.ExecContext(ctx, fmt.Sprintf(`
				ALTER TABLE %[1]s
				ADD CONSTRAINT fk_%[1]s_author
				FOREIGN KEY (author_id) REFERENCES users(id)
			`, table))
			if err != nil {
				return fmt.Errorf("failed to add %s author FK: %w", table, err)
			}
		}
		_, err := db.ExecContext(ctx, `
			ALTER TABLE article_collaborators
			ADD CONSTRAINT fk_article_collaborators_article
			FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add article_collaborators article FK: %w", err)
		}
		fmt.Println(" OK")
	}

	return nil
}

// down_20260301000002 drops the content tables in reverse order
func down_20260301000002(ctx context.Context, db *bun.DB) error {
	for i := len(contentTables) - 1; i >= 0; i-- {
		table := contentTables[i]
		fmt.Printf(" [down] dropping %s table...", table.name)
		_, err := db.NewDropTable().
			Model(table.model).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table.name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}
