package repository

import (
	"context"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

// UserRepository exposes persistence operations for accounts.
// Lookups only ever return rows that are not soft-deleted.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetActiveByID(ctx context.Context, id string) (*models.User, error)
	GetActiveByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindActiveByLogin(ctx context.Context, provider models.Provider, email, username string) (*models.User, error)
	ListActive(ctx context.Context, search ListSearch, paging *Paging) ([]models.User, int, error)
}

// ArticleRepository exposes persistence operations for articles and their collaborators.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	GetByURI(ctx context.Context, uri string) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter, search ListSearch, paging *Paging) ([]models.Article, int, error)

	CollaboratorIDs(ctx context.Context, articleID int64) ([]string, error)
	AddCollaborator(ctx context.Context, articleID int64, userID string) error
}

// ProductRepository exposes persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, withLocked bool, search ListSearch, paging *Paging) ([]models.Product, int, error)
}

// BannerRepository exposes persistence operations for banners.
type BannerRepository interface {
	Create(ctx context.Context, banner *models.Banner) error
	Update(ctx context.Context, banner *models.Banner) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Banner, error)
	List(ctx context.Context, filter BannerFilter, search ListSearch, paging *Paging) ([]models.Banner, int, error)
}

// PhotoRepository exposes persistence operations for photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Photo, error)
	List(ctx context.Context, withInactive bool, search ListSearch, paging *Paging) ([]models.Photo, int, error)
}

// JSONDataRepository exposes persistence operations for keyed JSON documents.
type JSONDataRepository interface {
	Get(ctx context.Context, id string) (*models.JSONData, error)
	Put(ctx context.Context, doc *models.JSONData) error
}

// UploadLogRepository records uploaded files.
type UploadLogRepository interface {
	Create(ctx context.Context, entry *models.UploadLog) error
	List(ctx context.Context, search ListSearch, paging *Paging) ([]models.UploadLog, int, error)
}

var (
	_ UserRepository      = (*BunUserRepository)(nil)
	_ ArticleRepository   = (*BunArticleRepository)(nil)
	_ ProductRepository   = (*BunProductRepository)(nil)
	_ BannerRepository    = (*BunBannerRepository)(nil)
	_ PhotoRepository     = (*BunPhotoRepository)(nil)
	_ JSONDataRepository  = (*BunJSONDataRepository)(nil)
	_ UploadLogRepository = (*BunUploadLogRepository)(nil)
)
