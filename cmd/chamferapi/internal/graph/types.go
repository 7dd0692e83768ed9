package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
)

type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID         { return graphql.ID(r.u.ID) }
func (r *userResolver) Email() string          { return r.u.Email }
func (r *userResolver) Username() string       { return r.u.Username }
func (r *userResolver) Provider() string       { return r.u.Provider.String() }
func (r *userResolver) Roles() []string        { return nonNil(r.u.Roles) }
func (r *userResolver) JoinedAt() graphql.Time { return graphql.Time{Time: r.u.JoinedAt} }
func (r *userResolver) Deleted() bool          { return r.u.Deleted }

func newUserResolvers(list []models.User) []*userResolver {
	out := make([]*userResolver, 0, len(list))
	for i := range list {
		out = append(out, &userResolver{u: &list[i]})
	}
	return out
}

// author resolves a user reference. Deleted or missing users read as null.
func (r *Resolver) author(ctx context.Context, id *string) (*userResolver, error) {
	if id == nil {
		return nil, nil
	}
	user, err := r.opts.Users.GetActive(ctx, *id)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	if user == nil {
		return nil, nil
	}
	return &userResolver{u: user}, nil
}

type userListResolver struct {
	total int
	data  []models.User
}

func (r *userListResolver) Total() int32          { return int32(r.total) }
func (r *userListResolver) Data() []*userResolver { return newUserResolvers(r.data) }

type articleResolver struct {
	root *Resolver
	a    *models.Article
}

func (r *articleResolver) ID() int32                   { return int32(r.a.ID) }
func (r *articleResolver) Category() *string           { return r.a.Category }
func (r *articleResolver) Title() string               { return r.a.Title }
func (r *articleResolver) URI() *string                { return r.a.URI }
func (r *articleResolver) Description() *string        { return r.a.Description }
func (r *articleResolver) Content() string             { return r.a.Content }
func (r *articleResolver) ThumbnailURL() *string       { return r.a.ThumbnailURL }
func (r *articleResolver) IsDraft() bool               { return r.a.IsDraft }
func (r *articleResolver) Locked() bool                { return r.a.Locked }
func (r *articleResolver) CreatedAt() graphql.Time     { return graphql.Time{Time: r.a.CreatedAt} }
func (r *articleResolver) LastUpdatedAt() graphql.Time { return graphql.Time{Time: r.a.LastUpdatedAt} }

func (r *articleResolver) Author(ctx context.Context) (*userResolver, error) {
	return r.root.author(ctx, r.a.AuthorID)
}

// Collaborators lists live users who edited the article besides its author.
func (r *articleResolver) Collaborators(ctx context.Context) ([]*userResolver, error) {
	ids, err := r.root.opts.Content.ArticleCollaboratorIDs(ctx, r.a.ID)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	if len(ids) == 0 {
		return []*userResolver{}, nil
	}
	list, err := r.root.opts.Users.GetActiveMany(ctx, ids)
	if err != nil {
		return nil, gqlerr.Mask(err)
	}
	return newUserResolvers(list), nil
}

type articleListResolver struct {
	root  *Resolver
	total int
	data  []models.Article
}

func (r *articleListResolver) Total() int32 { return int32(r.total) }
func (r *articleListResolver) Data() []*articleResolver {
	out := make([]*articleResolver, 0, len(r.data))
	for i := range r.data {
		out = append(out, &articleResolver{root: r.root, a: &r.data[i]})
	}
	return out
}

type productResolver struct {
	root *Resolver
	p    *models.Product
}

func (r *productResolver) ID() int32                   { return int32(r.p.ID) }
func (r *productResolver) Type() string                { return r.p.Type }
func (r *productResolver) URI() *string                { return r.p.URI }
func (r *productResolver) Title() string               { return r.p.Title }
func (r *productResolver) Description() *string        { return r.p.Description }
func (r *productResolver) Link() *string               { return r.p.Link }
func (r *productResolver) Price() *float64             { return r.p.Price }
func (r *productResolver) ThumbnailURLs() []string     { return nonNil(r.p.ThumbnailURLs) }
func (r *productResolver) Tags() []string              { return nonNil(r.p.Tags) }
func (r *productResolver) Locked() bool                { return r.p.Locked }
func (r *productResolver) CreatedAt() graphql.Time     { return graphql.Time{Time: r.p.CreatedAt} }
func (r *productResolver) LastUpdatedAt() graphql.Time { return graphql.Time{Time: r.p.LastUpdatedAt} }

func (r *productResolver) Author(ctx context.Context) (*userResolver, error) {
	return r.root.author(ctx, r.p.AuthorID)
}

type productListResolver struct {
	root  *Resolver
	total int
	data  []models.Product
}

func (r *productListResolver) Total() int32 { return int32(r.total) }
func (r *productListResolver) Data() []*productResolver {
	out := make([]*productResolver, 0, len(r.data))
	for i := range r.data {
		out = append(out, &productResolver{root: r.root, p: &r.data[i]})
	}
	return out
}

type bannerResolver struct {
	root *Resolver
	b    *models.Banner
}

func (r *bannerResolver) ID() graphql.ID                { return graphql.ID(r.b.ID) }
func (r *bannerResolver) Name() string                  { return r.b.Name }
func (r *bannerResolver) ThumbnailURL() string          { return r.b.ThumbnailURL }
func (r *bannerResolver) ThumbnailURLAlt() *string      { return r.b.ThumbnailURLAlt }
func (r *bannerResolver) Link() *string                 { return r.b.Link }
func (r *bannerResolver) LinkTarget() *string           { return r.b.LinkTarget }
func (r *bannerResolver) Active() bool                  { return r.b.Active }
func (r *bannerResolver) StartDisplayAt() *graphql.Time { return toGraphQLTime(r.b.StartDisplayAt) }
func (r *bannerResolver) EndDisplayAt() *graphql.Time   { return toGraphQLTime(r.b.EndDisplayAt) }
func (r *bannerResolver) CreatedAt() graphql.Time       { return graphql.Time{Time: r.b.CreatedAt} }

func (r *bannerResolver) Author(ctx context.Context) (*userResolver, error) {
	return r.root.author(ctx, r.b.AuthorID)
}

type bannerListResolver struct {
	root  *Resolver
	total int
	data  []models.Banner
}

func (r *bannerListResolver) Total() int32 { return int32(r.total) }
func (r *bannerListResolver) Data() []*bannerResolver {
	out := make([]*bannerResolver, 0, len(r.data))
	for i := range r.data {
		out = append(out, &bannerResolver{root: r.root, b: &r.data[i]})
	}
	return out
}

type photoResolver struct {
	root *Resolver
	p    *models.Photo
}

func (r *photoResolver) ID() int32               { return int32(r.p.ID) }
func (r *photoResolver) Name() string            { return r.p.Name }
func (r *photoResolver) ResourceURL() string     { return r.p.ResourceURL }
func (r *photoResolver) Active() bool            { return r.p.Active }
func (r *photoResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }

func (r *photoResolver) Author(ctx context.Context) (*userResolver, error) {
	return r.root.author(ctx, r.p.AuthorID)
}

type photoListResolver struct {
	root  *Resolver
	total int
	data  []models.Photo
}

func (r *photoListResolver) Total() int32 { return int32(r.total) }
func (r *photoListResolver) Data() []*photoResolver {
	out := make([]*photoResolver, 0, len(r.data))
	for i := range r.data {
		out = append(out, &photoResolver{root: r.root, p: &r.data[i]})
	}
	return out
}

type jsonDataResolver struct {
	d *models.JSONData
}

func (r *jsonDataResolver) ID() string              { return r.d.ID }
func (r *jsonDataResolver) Data() string            { return r.d.Data }
func (r *jsonDataResolver) Schema() *string         { return r.d.Schema }
func (r *jsonDataResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.d.UpdatedAt} }

type uploadLogResolver struct {
	l *models.UploadLog
}

func (r *uploadLogResolver) ID() int32              { return int32(r.l.ID) }
func (r *uploadLogResolver) UserID() *string        { return r.l.UserID }
func (r *uploadLogResolver) From() *string          { return r.l.From }
func (r *uploadLogResolver) Provider() string       { return r.l.Provider }
func (r *uploadLogResolver) Origin() string         { return r.l.Origin }
func (r *uploadLogResolver) Path() string           { return r.l.Path }
func (r *uploadLogResolver) Href() string           { return r.l.Href }
func (r *uploadLogResolver) UploadAt() graphql.Time { return graphql.Time{Time: r.l.UploadAt} }

func (r *uploadLogResolver) Mimetype() *string {
	if r.l.Mimetype == "" {
		return nil
	}
	return &r.l.Mimetype
}

type uploadLogListResolver struct {
	total int
	data  []models.UploadLog
}

func (r *uploadLogListResolver) Total() int32 { return int32(r.total) }
func (r *uploadLogListResolver) Data() []*uploadLogResolver {
	out := make([]*uploadLogResolver, 0, len(r.data))
	for i := range r.data {
		out = append(out, &uploadLogResolver{l: &r.data[i]})
	}
	return out
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
