package content

import (
	"context"
	"time"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// ProductInput carries product fields. Nil fields are left unchanged on update.
type ProductInput struct {
	Type          *string
	URI           *string
	Title         *string
	Description   *string
	Link          *string
	Price         *float64
	ThumbnailURLs []string
	Tags          []string
	Locked        *bool
}

// ProductList is one page of products and the total match count.
type ProductList struct {
	Total int
	Data  []models.Product
}

// ListProducts lists products. Locked products are included only when asked for by the admin tier.
func (s *Service) ListProducts(ctx context.Context, actor *models.User, withLocked bool, search repository.ListSearch, paging *repository.Paging) (*ProductList, error) {
	products, total, err := s.products.List(ctx, withLocked && auth.IsAdmin(actor), search, paging)
	if err != nil {
		return nil, err
	}
	return &ProductList{Total: total, Data: products}, nil
}

// CreateProduct stores a new product authored by actor.
func (s *Service) CreateProduct(ctx context.Context, actor *models.User, in ProductInput) (*models.Product, error) {
	if in.Type == nil || in.Title == nil {
		return nil, gqlerr.Invalid("type and title must provided")
	}

	product := &models.Product{ThumbnailURLs: models.StringList{}, Tags: models.StringList{}}
	if actor != nil {
		product.AuthorID = &actor.ID
	}
	applyProductInput(product, in)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct changes product id.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductInput(product, in)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes product id and reports whether it existed.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	return s.products.Delete(ctx, id)
}

func applyProductInput(product *models.Product, in ProductInput) {
	if in.Type != nil {
		product.Type = *in.Type
	}
	if in.URI != nil {
		product.URI = in.URI
	}
	if in.Title != nil {
		product.Title = *in.Title
	}
	if in.Description != nil {
		product.Description = in.Description
	}
	if in.Link != nil {
		product.Link = in.Link
	}
	if in.Price != nil {
		product.Price = in.Price
	}
	if in.ThumbnailURLs != nil {
		product.ThumbnailURLs = models.StringList(in.ThumbnailURLs)
	}
	if in.Tags != nil {
		product.Tags = models.StringList(in.Tags)
	}
	if in.Locked != nil {
		product.Locked = *in.Locked
	}
}

// BannerInput carries banner fields. Nil fields are left unchanged on update.
type BannerInput struct {
	Name            *string
	ThumbnailURL    *string
	ThumbnailURLAlt *string
	Link            *string
	LinkTarget      *string
	Active          *bool
	StartDisplayAt  *time.Time
	EndDisplayAt    *time.Time
}

// BannerList is one page of banners and the total match count.
type BannerList struct {
	Total int
	Data  []models.Banner
}

// ListBanners lists banners inside their display window. Inactive banners are
// included only when asked for by the admin tier.
func (s *Service) ListBanners(ctx context.Context, actor *models.User, withInactive bool, search repository.ListSearch, paging *repository.Paging) (*BannerList, error) {
	filter := repository.BannerFilter{
		At:           s.now().UTC(),
		WithInactive: withInactive && auth.IsAdmin(actor),
	}
	banners, total, err := s.banners.List(ctx, filter, search, paging)
	if err != nil {
		return nil, err
	}
	return &BannerList{Total: total, Data: banners}, nil
}

// CreateBanner stores a new banner authored by actor.
func (s *Service) CreateBanner(ctx context.Context, actor *models.User, in BannerInput) (*models.Banner, error) {
	if in.Name == nil || in.ThumbnailURL == nil {
		return nil, gqlerr.Invalid("name and thumbnailURL must provided")
	}

	banner := &models.Banner{}
	if actor != nil {
		banner.AuthorID = &actor.ID
	}
	applyBannerInput(banner, in)

	if err := s.banners.Create(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// UpdateBanner changes banner id.
func (s *Service) UpdateBanner(ctx context.Context, id string, in BannerInput) (*models.Banner, error) {
	banner, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBannerInput(banner, in)
	if err := s.banners.Update(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// DeleteBanner removes banner id and reports whether it existed.
func (s *Service) DeleteBanner(ctx context.Context, id string) (bool, error) {
	return s.banners.Delete(ctx, id)
}

func applyBannerInput(banner *models.Banner, in BannerInput) {
	if in.Name != nil {
		banner.Name = *in.Name
	}
	if in.ThumbnailURL != nil {
		banner.ThumbnailURL = *in.ThumbnailURL
	}
	if in.ThumbnailURLAlt != nil {
		banner.ThumbnailURLAlt = in.ThumbnailURLAlt
	}
	if in.Link != nil {
		banner.Link = in.Link
	}
	if in.LinkTarget != nil {
		banner.LinkTarget = in.LinkTarget
	}
	if in.Active != nil {
		banner.Active = *in.Active
	}
	if in.StartDisplayAt != nil {
		t := in.StartDisplayAt.UTC()
		banner.StartDisplayAt = &t
	}
	if in.EndDisplayAt != nil {
		t := in.EndDisplayAt.UTC()
		banner.EndDisplayAt = &t
	}
}

// PhotoInput carries photo fields. Nil fields are left unchanged on update.
type PhotoInput struct {
	Name        *string
	ResourceURL *string
	Active      *bool
}

// PhotoList is one page of photos and the total match count.
type PhotoList struct {
	Total int
	Data  []models.Photo
}

// ListPhotos lists photos. withInactive is only honoured for the admin tier.
func (s *Service) ListPhotos(ctx context.Context, actor *models.User, withInactive bool, search repository.ListSearch, paging *repository.Paging) (*PhotoList, error) {
	photos, total, err := s.photos.List(ctx, withInactive && auth.IsAdmin(actor), search, paging)
	if err != nil {
		return nil, err
	}
	return &PhotoList{Total: total, Data: photos}, nil
}

// CreatePhoto stores a new photo authored by actor.
func (s *Service) CreatePhoto(ctx context.Context, actor *models.User, in PhotoInput) (*models.Photo, error) {
	if in.Name == nil || in.ResourceURL == nil {
		return nil, gqlerr.Invalid("name and resourceURL must provided")
	}

	photo := &models.Photo{}
	if actor != nil {
		photo.AuthorID = &actor.ID
	}
	applyPhotoInput(photo, in)

	if err := s.photos.Create(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// UpdatePhoto changes photo id.
func (s *Service) UpdatePhoto(ctx context.Context, id int64, in PhotoInput) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPhotoInput(photo, in)
	if err := s.photos.Update(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes photo id and reports whether it existed.
func (s *Service) DeletePhoto(ctx context.Context, id int64) (bool, error) {
	return s.photos.Delete(ctx, id)
}

func applyPhotoInput(photo *models.Photo, in PhotoInput) {
	if in.Name != nil {
		photo.Name = *in.Name
	}
	if in.ResourceURL != nil {
		photo.ResourceURL = *in.ResourceURL
	}
	if in.Active != nil {
		photo.Active = *in.Active
	}
}
