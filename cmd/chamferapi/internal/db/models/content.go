package models

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/uptrace/bun"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/bunx"
)

// Article is a blog post or notice.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Category      *string   `bun:"category" json:"category"`
	Title         string    `bun:"title,notnull" json:"title"`
	AuthorID      *string   `bun:"author_id,type:uuid" json:"authorId"`
	URI           *string   `bun:"uri,unique" json:"uri"` // article's URI component
	Description   *string   `bun:"description" json:"description"`
	Content       string    `bun:"content,type:text,notnull" json:"content"`
	ThumbnailURL  *string   `bun:"thumbnail_url" json:"thumbnailURL"`
	IsDraft       bool      `bun:"is_draft,notnull,default:false" json:"isDraft"`
	Locked        bool      `bun:"locked,notnull,default:false" json:"locked"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	LastUpdatedAt time.Time `bun:"last_updated_at,notnull,default:current_timestamp" json:"lastUpdatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Article)(nil)

func (a *Article) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.LastUpdatedAt = now
	case *bun.UpdateQuery:
		a.LastUpdatedAt = now
	default:
		return nil
	}
	return a.Validate()
}

func (a *Article) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Category, validation.Length(0, 128)),
		validation.Field(&a.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&a.URI, validation.Length(0, 256)),
		validation.Field(&a.Description, validation.Length(0, 512)),
		validation.Field(&a.Content, validation.Required),
		validation.Field(&a.ThumbnailURL, validation.Length(0, 512)),
	)
}

// ArticleCollaborator links an article to users, other than the author, who edited it.
type ArticleCollaborator struct {
	bun.BaseModel `bun:"table:article_collaborators,alias:ac"`

	ArticleID int64  `bun:"article_id,pk"`
	UserID    string `bun:"user_id,pk,type:uuid"`
}

// ProductType classifies products.
type ProductType = string

const ProductTypeForward ProductType = "forward"

// Product is a catalogue entry.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Type          string     `bun:"type,notnull" json:"type"`
	AuthorID      *string    `bun:"author_id,type:uuid" json:"authorId"`
	URI           *string    `bun:"uri,unique" json:"uri"`
	Title         string     `bun:"title,notnull" json:"title"`
	Description   *string    `bun:"description" json:"description"`
	Link          *string    `bun:"link" json:"link"`
	Price         *float64   `bun:"price" json:"price"`
	ThumbnailURLs StringList `bun:"thumbnail_urls,type:jsonb,notnull" json:"thumbnailURLs"`
	Tags          StringList `bun:"tags,type:jsonb,notnull" json:"tags"`
	Locked        bool       `bun:"locked,notnull,default:false" json:"locked"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	LastUpdatedAt time.Time  `bun:"last_updated_at,notnull,default:current_timestamp" json:"lastUpdatedAt"`
}

var _ bun.BeforeAppendModelHook = (*Product)(nil)

func (p *Product) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.LastUpdatedAt = now
	case *bun.UpdateQuery:
		p.LastUpdatedAt = now
	default:
		return nil
	}
	return p.Validate()
}

func (p *Product) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Type, validation.Required, validation.In(ProductTypeForward)),
		validation.Field(&p.URI, validation.Length(0, 256)),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&p.Description, validation.Length(0, 512)),
		validation.Field(&p.Link, validation.Length(0, 512)),
	)
}

// BannerLinkTarget is where a banner link opens.
type BannerLinkTarget = string

const (
	BannerLinkSelf  BannerLinkTarget = "self"
	BannerLinkBlank BannerLinkTarget = "blank"
)

// Banner is a promotional image shown inside an optional display window.
type Banner struct {
	bun.BaseModel `bun:"table:banners,alias:b"`

	ID              string     `bun:"id,pk,type:uuid" json:"id"`
	Name            string     `bun:"name,notnull" json:"name"`
	AuthorID        *string    `bun:"author_id,type:uuid" json:"authorId"`
	ThumbnailURL    string     `bun:"thumbnail_url,notnull" json:"thumbnailURL"`
	ThumbnailURLAlt *string    `bun:"thumbnail_url_alt" json:"thumbnailURLAlt"`
	Link            *string    `bun:"link" json:"link"`
	LinkTarget      *string    `bun:"link_target" json:"linkTarget"`
	Active          bool       `bun:"active,notnull,default:false" json:"active"`
	StartDisplayAt  *time.Time `bun:"start_display_at" json:"startDisplayAt"`
	EndDisplayAt    *time.Time `bun:"end_display_at" json:"endDisplayAt"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

var _ bun.BeforeAppendModelHook = (*Banner)(nil)

func (b *Banner) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == "" {
			b.ID = bunx.NewUUIDv7()
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
	case *bun.UpdateQuery:
	default:
		return nil
	}
	return b.Validate()
}

func (b *Banner) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&b.ThumbnailURL, validation.Required, validation.Length(1, 512)),
		validation.Field(&b.ThumbnailURLAlt, validation.Length(0, 512)),
		validation.Field(&b.Link, validation.Length(0, 512)),
		validation.Field(&b.LinkTarget, validation.In(BannerLinkSelf, BannerLinkBlank)),
	)
}

// Photo is a gallery image.
type Photo struct {
	bun.BaseModel `bun:"table:photos,alias:ph"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	AuthorID    *string   `bun:"author_id,type:uuid" json:"authorId"`
	Name        string    `bun:"name,notnull" json:"name"`
	ResourceURL string    `bun:"resource_url,notnull" json:"resourceURL"`
	Active      bool      `bun:"active,notnull,default:false" json:"active"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

var _ bun.BeforeAppendModelHook = (*Photo)(nil)

func (p *Photo) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
	case *bun.UpdateQuery:
	default:
		return nil
	}
	return p.Validate()
}

func (p *Photo) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 256)),
		validation.Field(&p.ResourceURL, validation.Required, validation.Length(1, 512)),
	)
}

// JSONData is an arbitrary JSON document stored under a caller-chosen key.
// When Schema is set every write must validate against it.
type JSONData struct {
	bun.BaseModel `bun:"table:json_data,alias:jd"`

	ID        string    `bun:"id,pk" json:"id"`
	Data      string    `bun:"data,type:text,notnull" json:"data"`
	Schema    *string   `bun:"schema,type:text" json:"schema"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

var _ bun.BeforeAppendModelHook = (*JSONData)(nil)

func (j *JSONData) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		j.UpdatedAt = time.Now().UTC()
		return j.Validate()
	}
	return nil
}

func (j *JSONData) Validate() error {
	return validation.ValidateStruct(j,
		validation.Field(&j.ID, validation.Required, validation.Length(1, 255)),
		validation.Field(&j.Data, validation.Required),
	)
}

// UploadProvider is the storage backend an upload went to.
type UploadProvider = string

const UploadProviderS3 UploadProvider = "s3"

// UploadLog records a file stored through the upload mutation.
type UploadLog struct {
	bun.BaseModel `bun:"table:upload_logs,alias:ul"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID   *string   `bun:"user_id,type:uuid" json:"userId"`
	From     *string   `bun:"from_ip" json:"from"` // ip of uploader
	Provider string    `bun:"provider,notnull" json:"provider"`
	Origin   string    `bun:"origin,notnull" json:"origin"`
	Path     string    `bun:"path,notnull" json:"path"`
	Mimetype string    `bun:"mimetype,notnull" json:"mimetype"`
	Href     string    `bun:"href,notnull" json:"href"`
	UploadAt time.Time `bun:"upload_at,notnull,default:current_timestamp" json:"uploadAt"`
}

var _ bun.BeforeAppendModelHook = (*UploadLog)(nil)

func (l *UploadLog) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if l.UploadAt.IsZero() {
		l.UploadAt = time.Now().UTC()
	}
	return validation.ValidateStruct(l,
		validation.Field(&l.Provider, validation.Required, validation.In(UploadProviderS3)),
		validation.Field(&l.Origin, validation.Required),
		validation.Field(&l.Path, validation.Required),
		validation.Field(&l.Href, validation.Required),
	)
}
