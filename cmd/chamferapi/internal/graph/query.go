package graph

import (
	"context"
	"log"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/content"
)

func (r *Resolver) Version(ctx context.Context) (string, error) {
	if err := r.allow(ctx, "version"); err != nil {
		return "", err
	}
	return r.opts.Version, nil
}

// Ping answers "pong" while the database is reachable.
func (r *Resolver) Ping(ctx context.Context) (string, error) {
	if err := r.allow(ctx, "ping"); err != nil {
		return "", err
	}
	if r.opts.DB == nil {
		return "ping", nil
	}
	if err := r.opts.DB.PingContext(ctx); err != nil {
		log.Printf("WARNING: database ping failed: %v", err)
		return "ping", nil
	}
	return "pong", nil
}

func (r *Resolver) GetPublicKey(ctx context.Context) (string, error) {
	if err := r.allow(ctx, "getPublicKey"); err != nil {
		return "", err
	}
	return r.opts.Cipher.PublicKeyPEM(), nil
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	if err := r.allow(ctx, "me"); err != nil {
		return nil, err
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := r.opts.Users.Me(ctx, &identity)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	if user == nil {
		return nil, nil
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) GetUserList(ctx context.Context, args listArgs) (*userListResolver, error) {
	if err := r.allow(ctx, "getUserList"); err != nil {
		return nil, err
	}
	result, err := r.opts.Users.List(ctx, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &userListResolver{total: result.Total, data: result.Data}, nil
}

type articleListArgs struct {
	Options *struct {
		Category   *string
		OnlyDraft  *bool
		WithDraft  *bool
		WithLocked *bool
	}
	Search *listSearchInput
	Paging *pagingInput
}

func (r *Resolver) GetArticleList(ctx context.Context, args articleListArgs) (*articleListResolver, error) {
	if err := r.allow(ctx, "getArticleList"); err != nil {
		return nil, err
	}

	var opts content.ArticleOptions
	if o := args.Options; o != nil {
		opts = content.ArticleOptions{
			Category:   deref(o.Category),
			OnlyDraft:  deref(o.OnlyDraft),
			WithDraft:  deref(o.WithDraft),
			WithLocked: deref(o.WithLocked),
		}
	}

	result, err := r.opts.Content.ListArticles(ctx, auth.UserFromContext(ctx), opts, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &articleListResolver{root: r, total: result.Total, data: result.Data}, nil
}

func (r *Resolver) GetArticle(ctx context.Context, args struct {
	ID  *int32
	URI *string
}) (*articleResolver, error) {
	if err := r.allow(ctx, "getArticle"); err != nil {
		return nil, err
	}
	article, err := r.opts.Content.GetArticle(ctx, auth.UserFromContext(ctx), int64Ptr(args.ID), args.URI)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	if article == nil {
		return nil, nil
	}
	return &articleResolver{root: r, a: article}, nil
}

type productListArgs struct {
	WithLocked bool
	Search     *listSearchInput
	Paging     *pagingInput
}

func (r *Resolver) GetProductList(ctx context.Context, args productListArgs) (*productListResolver, error) {
	if err := r.allow(ctx, "getProductList"); err != nil {
		return nil, err
	}
	result, err := r.opts.Content.ListProducts(ctx, auth.UserFromContext(ctx), args.WithLocked, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &productListResolver{root: r, total: result.Total, data: result.Data}, nil
}

type bannerListArgs struct {
	WithActive bool
	Search     *listSearchInput
	Paging     *pagingInput
}

// GetBannerList lists banners in their display window. withActive also returns inactive ones to admins.
func (r *Resolver) GetBannerList(ctx context.Context, args bannerListArgs) (*bannerListResolver, error) {
	if err := r.allow(ctx, "getBannerList"); err != nil {
		return nil, err
	}
	result, err := r.opts.Content.ListBanners(ctx, auth.UserFromContext(ctx), args.WithActive, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &bannerListResolver{root: r, total: result.Total, data: result.Data}, nil
}

func (r *Resolver) GetPhotoList(ctx context.Context, args listArgs) (*photoListResolver, error) {
	if err := r.allow(ctx, "getPhotoList"); err != nil {
		return nil, err
	}
	return r.listPhotos(ctx, false, args)
}

func (r *Resolver) GetPhotoListAll(ctx context.Context, args listArgs) (*photoListResolver, error) {
	if err := r.allow(ctx, "getPhotoListAll"); err != nil {
		return nil, err
	}
	return r.listPhotos(ctx, true, args)
}

func (r *Resolver) listPhotos(ctx context.Context, withInactive bool, args listArgs) (*photoListResolver, error) {
	result, err := r.opts.Content.ListPhotos(ctx, auth.UserFromContext(ctx), withInactive, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &photoListResolver{root: r, total: result.Total, data: result.Data}, nil
}

func (r *Resolver) GetJSONData(ctx context.Context, args struct{ ID string }) (*jsonDataResolver, error) {
	if err := r.allow(ctx, "getJSONData"); err != nil {
		return nil, err
	}
	doc, err := r.opts.Content.GetJSONData(ctx, args.ID)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	if doc == nil {
		return nil, nil
	}
	return &jsonDataResolver{d: doc}, nil
}

func (r *Resolver) GetUploadLogList(ctx context.Context, args listArgs) (*uploadLogListResolver, error) {
	if err := r.allow(ctx, "getUploadLogList"); err != nil {
		return nil, err
	}
	result, err := r.opts.Uploads.List(ctx, args.Search.search(), args.Paging.paging())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &uploadLogListResolver{total: result.Total, data: result.Data}, nil
}
