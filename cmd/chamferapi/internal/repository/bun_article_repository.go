package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// ArticleColumns are the article fields open to list search.
var ArticleColumns = Columns{
	"id":            "id",
	"category":      "category",
	"title":         "title",
	"uri":           "uri",
	"description":   "description",
	"content":       "content",
	"createdAt":     "created_at",
	"lastUpdatedAt": "last_updated_at",
}

// ArticleFilter narrows an article list. The zero value lists published, unlocked articles.
type ArticleFilter struct {
	Category   string
	OnlyDraft  bool
	WithDraft  bool
	WithLocked bool
}

// BunArticleRepository implements ArticleRepository using Bun ORM
type BunArticleRepository struct {
	db *bun.DB
}

// NewBunArticleRepository creates a new Bun-based article repository
func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return &BunArticleRepository{db: db}
}

func (r *BunArticleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkURIUnique(ctx, tx, (*models.Article)(nil), 0, article.URI); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(article).Exec(ctx); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		return nil
	})
}

func (r *BunArticleRepository) Update(ctx context.Context, article *models.Article) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkURIUnique(ctx, tx, (*models.Article)(nil), article.ID, article.URI); err != nil {
			return err
		}
		result, err := tx.NewUpdate().Model(article).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		return expectAffected(result, "article", article.ID)
	})
}

// Delete removes an article and its collaborator links. Reports whether a row was removed.
func (r *BunArticleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ArticleCollaborator)(nil)).
			Where("article_id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete article collaborators: %w", err)
		}
		result, err := tx.NewDelete().
			Model((*models.Article)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

func (r *BunArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	article := new(models.Article)
	err := r.db.NewSelect().Model(article).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("article", id)
		}
		return nil, fmt.Errorf("get article by ID: %w", err)
	}
	return article, nil
}

func (r *BunArticleRepository) GetByURI(ctx context.Context, uri string) (*models.Article, error) {
	article := new(models.Article)
	err := r.db.NewSelect().Model(article).Where("uri = ?", uri).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("article with uri", uri)
		}
		return nil, fmt.Errorf("get article by URI: %w", err)
	}
	return article, nil
}

func (r *BunArticleRepository) List(ctx context.Context, filter ArticleFilter, search ListSearch, paging *Paging) ([]models.Article, int, error) {
	articles := []models.Article{}
	q := r.db.NewSelect().Model(&articles)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	switch {
	case filter.OnlyDraft:
		q = q.Where("is_draft = ?", true)
	case !filter.WithDraft:
		q = q.Where("is_draft = ?", false)
	}
	if !filter.WithLocked {
		q = q.Where("locked = ?", false)
	}

	q, err := applySearch(q, ArticleColumns, search)
	if err != nil {
		return nil, 0, err
	}
	q = applyPaging(q, paging)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}

// CollaboratorIDs returns the IDs of users linked as collaborators of an article.
func (r *BunArticleRepository) CollaboratorIDs(ctx context.Context, articleID int64) ([]string, error) {
	var links []models.ArticleCollaborator
	err := r.db.NewSelect().
		Model(&links).
		Where("article_id = ?", articleID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list article collaborators: %w", err)
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.UserID)
	}
	return ids, nil
}

// AddCollaborator links a user to an article. Adding an existing link is a no-op.
func (r *BunArticleRepository) AddCollaborator(ctx context.Context, articleID int64, userID string) error {
	link := &models.ArticleCollaborator{ArticleID: articleID, UserID: userID}
	_, err := r.db.NewInsert().
		Model(link).
		On("CONFLICT (article_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add article collaborator: %w", err)
	}
	return nil
}

// checkURIUnique rejects uri when another row of model's table already uses it.
func checkURIUnique(ctx context.Context, db bun.IDB, model interface{}, id int64, uri *string) error {
	if uri == nil || *uri == "" {
		return nil
	}
	q := db.NewSelect().Model(model).Where("uri = ?", *uri)
	if id != 0 {
		q = q.Where("id != ?", id)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check uri uniqueness: %w", err)
	}
	if exists {
		return &DuplicateError{Collisions: []Collision{{Target: "uri", Value: *uri}}}
	}
	return nil
}

func expectAffected(result sql.Result, kind string, key any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return notFound(kind, key)
	}
	return nil
}
