package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

func TestBunArticleRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunArticleRepository(db)
	ctx := context.Background()

	published := &models.Article{Title: "Hello", Content: "<p>hi</p>", URI: strPtr("hello"), Category: strPtr("blog")}
	draft := &models.Article{Title: "Draft", Content: "wip", IsDraft: true, Category: strPtr("blog")}
	locked := &models.Article{Title: "Locked", Content: "secret", Locked: true, Category: strPtr("notice")}
	for _, a := range []*models.Article{published, draft, locked} {
		require.NoError(t, repo.Create(ctx, a))
		require.NotZero(t, a.ID)
	}

	t.Run("get by uri", func(t *testing.T) {
		got, err := repo.GetByURI(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, published.ID, got.ID)

		_, err = repo.GetByURI(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("uri collision", func(t *testing.T) {
		err := repo.Create(ctx, &models.Article{Title: "Again", Content: "x", URI: strPtr("hello")})
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, []Collision{{Target: "uri", Value: "hello"}}, dup.Collisions)
	})

	t.Run("update keeps own uri", func(t *testing.T) {
		published.Title = "Hello again"
		require.NoError(t, repo.Update(ctx, published))
		got, err := repo.GetByID(ctx, published.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello again", got.Title)
	})

	t.Run("filters", func(t *testing.T) {
		articles, total, err := repo.List(ctx, ArticleFilter{}, ListSearch{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, published.ID, articles[0].ID)

		_, total, err = repo.List(ctx, ArticleFilter{WithDraft: true, WithLocked: true}, ListSearch{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, total)

		articles, _, err = repo.List(ctx, ArticleFilter{OnlyDraft: true}, ListSearch{}, nil)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, draft.ID, articles[0].ID)

		_, total, err = repo.List(ctx, ArticleFilter{Category: "notice", WithLocked: true}, ListSearch{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("collaborators", func(t *testing.T) {
		userID := "0192d5f0-0000-7000-8000-000000000001"
		require.NoError(t, repo.AddCollaborator(ctx, published.ID, userID))
		require.NoError(t, repo.AddCollaborator(ctx, published.ID, userID))

		ids, err := repo.CollaboratorIDs(ctx, published.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{userID}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := repo.Delete(ctx, published.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Delete(ctx, published.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ids, err := repo.CollaboratorIDs(ctx, published.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestBunProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProductRepository(db)
	ctx := context.Background()

	price := 12.5
	open := &models.Product{Type: models.ProductTypeForward, Title: "Mug", URI: strPtr("mug"), Price: &price, Tags: models.StringList{"kitchen"}}
	hidden := &models.Product{Type: models.ProductTypeForward, Title: "Prototype", Locked: true}
	require.NoError(t, repo.Create(ctx, open))
	require.NoError(t, repo.Create(ctx, hidden))

	got, err := repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"kitchen"}, got.Tags)
	assert.Equal(t, models.StringList{}, got.ThumbnailURLs)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 12.5, *got.Price, 0.001)

	_, total, err := repo.List(ctx, false, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = repo.List(ctx, true, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	err = repo.Create(ctx, &models.Product{Type: "unknown", Title: "Bad"})
	assert.Error(t, err)

	ok, err := repo.Delete(ctx, hidden.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunBannerRepository_DisplayWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunBannerRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	always := &models.Banner{Name: "always", ThumbnailURL: "a.png", Active: true}
	current := &models.Banner{Name: "current", ThumbnailURL: "c.png", Active: true, StartDisplayAt: &past, EndDisplayAt: &future}
	expired := &models.Banner{Name: "expired", ThumbnailURL: "e.png", Active: true, EndDisplayAt: &past}
	upcoming := &models.Banner{Name: "upcoming", ThumbnailURL: "u.png", Active: true, StartDisplayAt: &future}
	inactive := &models.Banner{Name: "inactive", ThumbnailURL: "i.png"}
	for _, b := range []*models.Banner{always, current, expired, upcoming, inactive} {
		require.NoError(t, repo.Create(ctx, b))
		require.NotEmpty(t, b.ID)
	}

	banners, total, err := repo.List(ctx, BannerFilter{At: now}, ListSearch{OrderBy: "name"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, banners, 2)
	assert.Equal(t, "always", banners[0].Name)
	assert.Equal(t, "current", banners[1].Name)

	_, total, err = repo.List(ctx, BannerFilter{At: now, WithInactive: true}, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Name)

	err = repo.Create(ctx, &models.Banner{Name: "bad", ThumbnailURL: "b.png", LinkTarget: strPtr("parent")})
	assert.Error(t, err)
}

func TestBunPhotoRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunPhotoRepository(db)
	ctx := context.Background()

	shown := &models.Photo{Name: "sunset", ResourceURL: "https://cdn.example.com/sunset.jpg", Active: true}
	archived := &models.Photo{Name: "draft", ResourceURL: "https://cdn.example.com/draft.jpg"}
	require.NoError(t, repo.Create(ctx, shown))
	require.NoError(t, repo.Create(ctx, archived))

	_, total, err := repo.List(ctx, false, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	archived.Active = true
	require.NoError(t, repo.Update(ctx, archived))

	_, total, err = repo.List(ctx, false, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestBunJSONDataRepository_Put(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunJSONDataRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "settings")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Put(ctx, &models.JSONData{ID: "settings", Data: `{"theme":"dark"}`}))
	require.NoError(t, repo.Put(ctx, &models.JSONData{ID: "settings", Data: `{"theme":"light"}`, Schema: strPtr(`{"type":"object"}`)}))

	doc, err := repo.Get(ctx, "settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, doc.Data)
	require.NotNil(t, doc.Schema)
	assert.JSONEq(t, `{"type":"object"}`, *doc.Schema)
}

func TestBunUploadLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUploadLogRepository(db)
	ctx := context.Background()

	for _, path := range []string{"a.png", "b.png"} {
		require.NoError(t, repo.Create(ctx, &models.UploadLog{
			Provider: models.UploadProviderS3,
			Origin:   "https://bucket.s3.ap-northeast-2.amazonaws.com",
			Path:     path,
			Mimetype: "image/png",
			Href:     "https://bucket.s3.ap-northeast-2.amazonaws.com/" + path,
			From:     strPtr("127.0.0.1"),
		}))
	}

	entries, total, err := repo.List(ctx, ListSearch{SearchTargets: []string{"path"}, SearchValue: "b."}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "b.png", entries[0].Path)

	err = repo.Create(ctx, &models.UploadLog{Provider: "ftp", Origin: "o", Path: "p", Href: "h"})
	assert.Error(t, err)
}
