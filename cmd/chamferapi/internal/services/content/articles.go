package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// ArticleOptions selects which articles a list includes.
type ArticleOptions struct {
	Category   string
	OnlyDraft  bool
	WithDraft  bool
	WithLocked bool
}

// ArticleInput carries article fields. Nil fields are left unchanged on update.
type ArticleInput struct {
	Category     *string
	Title        *string
	URI          *string
	Description  *string
	Content      *string
	ThumbnailURL *string
	IsDraft      *bool
	Locked       *bool
}

// ArticleList is one page of articles and the total match count.
type ArticleList struct {
	Total int
	Data  []models.Article
}

// ListArticles lists articles. Drafts and locked articles require the admin tier.
func (s *Service) ListArticles(ctx context.Context, actor *models.User, opts ArticleOptions, search repository.ListSearch, paging *repository.Paging) (*ArticleList, error) {
	if (opts.OnlyDraft || opts.WithDraft || opts.WithLocked) && !auth.IsAdmin(actor) {
		return nil, gqlerr.PermissionDenied()
	}

	filter := repository.ArticleFilter{
		Category:   opts.Category,
		OnlyDraft:  opts.OnlyDraft,
		WithDraft:  opts.WithDraft,
		WithLocked: opts.WithLocked,
	}
	articles, total, err := s.articles.List(ctx, filter, search, paging)
	if err != nil {
		return nil, err
	}
	return &ArticleList{Total: total, Data: articles}, nil
}

// GetArticle finds an article by id, or by uri when id is nil. Drafts and locked
// articles read as nil for callers outside the admin tier.
func (s *Service) GetArticle(ctx context.Context, actor *models.User, id *int64, uri *string) (*models.Article, error) {
	var (
		article *models.Article
		err     error
	)
	switch {
	case id != nil:
		article, err = s.articles.GetByID(ctx, *id)
	case uri != nil && *uri != "":
		article, err = s.articles.GetByURI(ctx, *uri)
	default:
		return nil, gqlerr.Invalid("id or uri must provided")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if (article.IsDraft || article.Locked) && !auth.IsAdmin(actor) {
		return nil, nil
	}
	return article, nil
}

// CreateArticle stores a new article authored by actor.
func (s *Service) CreateArticle(ctx context.Context, actor *models.User, in ArticleInput) (*models.Article, error) {
	if in.Title == nil || in.Content == nil {
		return nil, gqlerr.Invalid("title and content must provided")
	}

	article := &models.Article{}
	if actor != nil {
		article.AuthorID = &actor.ID
	}
	s.applyArticleInput(article, in)

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// UpdateArticle changes article id. An editor other than the author is recorded as collaborator.
func (s *Service) UpdateArticle(ctx context.Context, actor *models.User, id int64, in ArticleInput) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.applyArticleInput(article, in)
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}

	if actor != nil && (article.AuthorID == nil || *article.AuthorID != actor.ID) {
		if err := s.articles.AddCollaborator(ctx, article.ID, actor.ID); err != nil {
			return nil, fmt.Errorf("record collaborator: %w", err)
		}
	}
	return article, nil
}

// DeleteArticle removes article id and reports whether it existed.
func (s *Service) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	return s.articles.Delete(ctx, id)
}

// ArticleCollaboratorIDs returns the users linked as collaborators of article id.
func (s *Service) ArticleCollaboratorIDs(ctx context.Context, id int64) ([]string, error) {
	return s.articles.CollaboratorIDs(ctx, id)
}

func (s *Service) applyArticleInput(article *models.Article, in ArticleInput) {
	if in.Category != nil {
		article.Category = in.Category
	}
	if in.Title != nil {
		article.Title = *in.Title
	}
	if in.URI != nil {
		article.URI = in.URI
	}
	if in.Description != nil {
		article.Description = s.sanitizePtr(in.Description)
	}
	if in.Content != nil {
		article.Content = s.sanitize(*in.Content)
	}
	if in.ThumbnailURL != nil {
		article.ThumbnailURL = in.ThumbnailURL
	}
	if in.IsDraft != nil {
		article.IsDraft = *in.IsDraft
	}
	if in.Locked != nil {
		article.Locked = *in.Locked
	}
}
