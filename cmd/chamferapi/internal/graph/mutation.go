package graph

import (
	"context"
	"fmt"
	"log"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/content"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/upload"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/users"
)

// signInScheme is the scheme written into issued credentials.
const signInScheme = "Bearer"

// SignIn checks the password, stores the credential cookie and returns the raw token.
func (r *Resolver) SignIn(ctx context.Context, args struct {
	Email    *string
	Username *string
	Password string
}) (string, error) {
	if err := r.allow(ctx, "signIn"); err != nil {
		return "", err
	}

	if r.opts.SignInLimiter != nil && !r.opts.SignInLimiter.Allow(auth.ClientIPFromContext(ctx)) {
		if r.opts.Collector != nil {
			r.opts.Collector.RecordThrottled()
		}
		return "", gqlerr.Forbidden("too many sign in attempts")
	}

	email, username := deref(args.Email), deref(args.Username)
	if email == "" && username == "" {
		return "", gqlerr.Invalid("email or username must provided")
	}

	start := time.Now()
	user, err := r.opts.Users.SignIn(ctx, email, username, args.Password)
	r.recordSignIn(ctx, start, err == nil)
	if err != nil {
		return "", gqlerr.Mask(err)
	}

	w, ok := auth.CookieSinkFromContext(ctx)
	if !ok {
		log.Printf("ERROR: signIn without a cookie sink on the request context")
		return "", gqlerr.Internal()
	}
	token, err := r.opts.Strategy.IssueToken(w, signInScheme, auth.Payload{ID: user.ID})
	if err != nil {
		return "", gqlerr.Mask(fmt.Errorf("issue token: %w", err))
	}
	return token, nil
}

// SignOut clears the credential cookie. Issued tokens stay valid until they expire.
func (r *Resolver) SignOut(ctx context.Context) (bool, error) {
	if err := r.allow(ctx, "signOut"); err != nil {
		return false, err
	}
	if w, ok := auth.CookieSinkFromContext(ctx); ok {
		r.opts.Strategy.RevokeToken(w)
	}
	return true, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct {
	Input struct {
		Email    string
		Username string
		Password string
		Roles    *[]string
	}
}) (*userResolver, error) {
	if err := r.allow(ctx, "createUser"); err != nil {
		return nil, err
	}
	user, err := r.opts.Users.Create(ctx, auth.UserFromContext(ctx), users.CreateInput{
		Email:    args.Input.Email,
		Username: args.Input.Username,
		Password: args.Input.Password,
		Roles:    derefList(args.Input.Roles),
	})
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphql.ID
	Input struct {
		Email    *string
		Username *string
		Password *string
		Roles    *[]string
	}
}) (*userResolver, error) {
	if err := r.allow(ctx, "updateUser"); err != nil {
		return nil, err
	}
	user, err := r.opts.Users.Update(ctx, auth.UserFromContext(ctx), string(args.ID), users.UpdateInput{
		Email:    args.Input.Email,
		Username: args.Input.Username,
		Password: args.Input.Password,
		Roles:    derefList(args.Input.Roles),
	})
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &userResolver{u: user}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.allow(ctx, "deleteUser"); err != nil {
		return false, err
	}
	ok, err := r.opts.Users.Delete(ctx, auth.UserFromContext(ctx), string(args.ID))
	if err != nil {
		return false, gqlerr.Mask(err)
	}
	return ok, nil
}

type articleInput struct {
	Category     *string
	Title        *string
	URI          *string
	Description  *string
	Content      *string
	ThumbnailURL *string
	IsDraft      *bool
	Locked       *bool
}

func (in articleInput) toService() content.ArticleInput {
	return content.ArticleInput{
		Category:     in.Category,
		Title:        in.Title,
		URI:          in.URI,
		Description:  in.Description,
		Content:      in.Content,
		ThumbnailURL: in.ThumbnailURL,
		IsDraft:      in.IsDraft,
		Locked:       in.Locked,
	}
}

type articleCreateInput struct {
	Category     *string
	Title        string
	URI          *string
	Description  *string
	Content      string
	ThumbnailURL *string
	IsDraft      *bool
	Locked       *bool
}

func (in articleCreateInput) toService() content.ArticleInput {
	return articleInput{
		Category:     in.Category,
		Title:        &in.Title,
		URI:          in.URI,
		Description:  in.Description,
		Content:      &in.Content,
		ThumbnailURL: in.ThumbnailURL,
		IsDraft:      in.IsDraft,
		Locked:       in.Locked,
	}.toService()
}

func (r *Resolver) CreateArticle(ctx context.Context, args struct{ Input articleCreateInput }) (*articleResolver, error) {
	if err := r.allow(ctx, "createArticle"); err != nil {
		return nil, err
	}
	article, err := r.opts.Content.CreateArticle(ctx, auth.UserFromContext(ctx), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &articleResolver{root: r, a: article}, nil
}

func (r *Resolver) UpdateArticle(ctx context.Context, args struct {
	ID    int32
	Input articleInput
}) (*articleResolver, error) {
	if err := r.allow(ctx, "updateArticle"); err != nil {
		return nil, err
	}
	article, err := r.opts.Content.UpdateArticle(ctx, auth.UserFromContext(ctx), int64(args.ID), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &articleResolver{root: r, a: article}, nil
}

func (r *Resolver) DeleteArticle(ctx context.Context, args struct{ ID int32 }) (bool, error) {
	if err := r.allow(ctx, "deleteArticle"); err != nil {
		return false, err
	}
	ok, err := r.opts.Content.DeleteArticle(ctx, int64(args.ID))
	if err != nil {
		return false, gqlerr.Mask(err)
	}
	return ok, nil
}

type productInput struct {
	Type          *string
	URI           *string
	Title         *string
	Description   *string
	Link          *string
	Price         *float64
	ThumbnailURLs *[]string
	Tags          *[]string
	Locked        *bool
}

func (in productInput) toService() content.ProductInput {
	return content.ProductInput{
		Type:          in.Type,
		URI:           in.URI,
		Title:         in.Title,
		Description:   in.Description,
		Link:          in.Link,
		Price:         in.Price,
		ThumbnailURLs: derefList(in.ThumbnailURLs),
		Tags:          derefList(in.Tags),
		Locked:        in.Locked,
	}
}

type productCreateInput struct {
	Type          string
	URI           *string
	Title         string
	Description   *string
	Link          *string
	Price         *float64
	ThumbnailURLs *[]string
	Tags          *[]string
	Locked        *bool
}

func (in productCreateInput) toService() content.ProductInput {
	return productInput{
		Type:          &in.Type,
		URI:           in.URI,
		Title:         &in.Title,
		Description:   in.Description,
		Link:          in.Link,
		Price:         in.Price,
		ThumbnailURLs: in.ThumbnailURLs,
		Tags:          in.Tags,
		Locked:        in.Locked,
	}.toService()
}

func (r *Resolver) CreateProduct(ctx context.Context, args struct{ Input productCreateInput }) (*productResolver, error) {
	if err := r.allow(ctx, "createProduct"); err != nil {
		return nil, err
	}
	product, err := r.opts.Content.CreateProduct(ctx, auth.UserFromContext(ctx), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &productResolver{root: r, p: product}, nil
}

func (r *Resolver) UpdateProduct(ctx context.Context, args struct {
	ID    int32
	Input productInput
}) (*productResolver, error) {
	if err := r.allow(ctx, "updateProduct"); err != nil {
		return nil, err
	}
	product, err := r.opts.Content.UpdateProduct(ctx, int64(args.ID), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &productResolver{root: r, p: product}, nil
}

func (r *Resolver) DeleteProduct(ctx context.Context, args struct{ ID int32 }) (bool, error) {
	if err := r.allow(ctx, "deleteProduct"); err != nil {
		return false, err
	}
	ok, err := r.opts.Content.DeleteProduct(ctx, int64(args.ID))
	if err != nil {
		return false, gqlerr.Mask(err)
	}
	return ok, nil
}

type bannerInput struct {
	Name            *string
	ThumbnailURL    *string
	ThumbnailURLAlt *string
	Link            *string
	LinkTarget      *string
	Active          *bool
	StartDisplayAt  *graphql.Time
	EndDisplayAt    *graphql.Time
}

func (in bannerInput) toService() content.BannerInput {
	return content.BannerInput{
		Name:            in.Name,
		ThumbnailURL:    in.ThumbnailURL,
		ThumbnailURLAlt: in.ThumbnailURLAlt,
		Link:            in.Link,
		LinkTarget:      in.LinkTarget,
		Active:          in.Active,
		StartDisplayAt:  fromGraphQLTime(in.StartDisplayAt),
		EndDisplayAt:    fromGraphQLTime(in.EndDisplayAt),
	}
}

type bannerCreateInput struct {
	Name            string
	ThumbnailURL    string
	ThumbnailURLAlt *string
	Link            *string
	LinkTarget      *string
	Active          *bool
	StartDisplayAt  *graphql.Time
	EndDisplayAt    *graphql.Time
}

func (in bannerCreateInput) toService() content.BannerInput {
	return bannerInput{
		Name:            &in.Name,
		ThumbnailURL:    &in.ThumbnailURL,
		ThumbnailURLAlt: in.ThumbnailURLAlt,
		Link:            in.Link,
		LinkTarget:      in.LinkTarget,
		Active:          in.Active,
		StartDisplayAt:  in.StartDisplayAt,
		EndDisplayAt:    in.EndDisplayAt,
	}.toService()
}

func (r *Resolver) CreateBanner(ctx context.Context, args struct{ Input bannerCreateInput }) (*bannerResolver, error) {
	if err := r.allow(ctx, "createBanner"); err != nil {
		return nil, err
	}
	banner, err := r.opts.Content.CreateBanner(ctx, auth.UserFromContext(ctx), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &bannerResolver{root: r, b: banner}, nil
}

func (r *Resolver) UpdateBanner(ctx context.Context, args struct {
	ID    graphql.ID
	Input bannerInput
}) (*bannerResolver, error) {
	if err := r.allow(ctx, "updateBanner"); err != nil {
		return nil, err
	}
	banner, err := r.opts.Content.UpdateBanner(ctx, string(args.ID), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &bannerResolver{root: r, b: banner}, nil
}

func (r *Resolver) DeleteBanner(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.allow(ctx, "deleteBanner"); err != nil {
		return false, err
	}
	ok, err := r.opts.Content.DeleteBanner(ctx, string(args.ID))
	if err != nil {
		return false, gqlerr.Mask(err)
	}
	return ok, nil
}

type photoInput struct {
	Name        *string
	ResourceURL *string
	Active      *bool
}

func (in photoInput) toService() content.PhotoInput {
	return content.PhotoInput{Name: in.Name, ResourceURL: in.ResourceURL, Active: in.Active}
}

type photoCreateInput struct {
	Name        string
	ResourceURL string
	Active      *bool
}

func (in photoCreateInput) toService() content.PhotoInput {
	return content.PhotoInput{Name: &in.Name, ResourceURL: &in.ResourceURL, Active: in.Active}
}

func (r *Resolver) CreatePhoto(ctx context.Context, args struct{ Input photoCreateInput }) (*photoResolver, error) {
	if err := r.allow(ctx, "createPhoto"); err != nil {
		return nil, err
	}
	photo, err := r.opts.Content.CreatePhoto(ctx, auth.UserFromContext(ctx), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &photoResolver{root: r, p: photo}, nil
}

func (r *Resolver) UpdatePhoto(ctx context.Context, args struct {
	ID    int32
	Input photoInput
}) (*photoResolver, error) {
	if err := r.allow(ctx, "updatePhoto"); err != nil {
		return nil, err
	}
	photo, err := r.opts.Content.UpdatePhoto(ctx, int64(args.ID), args.Input.toService())
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &photoResolver{root: r, p: photo}, nil
}

func (r *Resolver) DeletePhoto(ctx context.Context, args struct{ ID int32 }) (bool, error) {
	if err := r.allow(ctx, "deletePhoto"); err != nil {
		return false, err
	}
	ok, err := r.opts.Content.DeletePhoto(ctx, int64(args.ID))
	if err != nil {
		return false, gqlerr.Mask(err)
	}
	return ok, nil
}

func (r *Resolver) SetJSONData(ctx context.Context, args struct {
	ID        string
	Data      string
	Schema    *string
	PinSchema *bool
}) (*jsonDataResolver, error) {
	if err := r.allow(ctx, "setJSONData"); err != nil {
		return nil, err
	}
	doc, err := r.opts.Content.SetJSONData(ctx, content.JSONDataInput{
		ID:        args.ID,
		Data:      args.Data,
		Schema:    args.Schema,
		PinSchema: deref(args.PinSchema),
	})
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &jsonDataResolver{d: doc}, nil
}

// SingleUpload stores one file in the bucket and returns its log entry.
func (r *Resolver) SingleUpload(ctx context.Context, args struct{ File Upload }) (*uploadLogResolver, error) {
	if err := r.allow(ctx, "singleUpload"); err != nil {
		return nil, err
	}
	if !r.opts.Uploads.Enabled() {
		return nil, gqlerr.Invalid("upload not enabled")
	}
	if args.File.FileHeader == nil {
		return nil, gqlerr.Invalid("file must provided")
	}

	f, err := args.File.Open()
	if err != nil {
		return nil, gqlerr.Mask(fmt.Errorf("open upload %s: %w", args.File.Filename, err))
	}
	defer f.Close()

	entry, err := r.opts.Uploads.Upload(ctx, auth.UserFromContext(ctx), auth.ClientIPFromContext(ctx), upload.File{
		Filename:    args.File.Filename,
		ContentType: args.File.Header.Get("Content-Type"),
		Size:        args.File.Size,
		Body:        f,
	})
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return &uploadLogResolver{l: entry}, nil
}

