// Package content serves articles, products, banners, photos and JSON documents.
//
// Visibility rules live here: drafts, locked rows and inactive rows are only
// listed for admin-tier callers, and every created row records its author.
package content

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// SchemaValidator checks JSON documents. *validation.SchemaValidator satisfies it.
type SchemaValidator interface {
	CheckSchema(schemaJSON string) error
	Validate(schemaJSON, documentJSON string) error
}

// SchemaInferrer derives a schema from sample documents. *inference.Inferrer satisfies it.
type SchemaInferrer interface {
	Infer(samples ...string) (string, error)
}

// Repositories groups the stores the service reads and writes.
type Repositories struct {
	Articles repository.ArticleRepository
	Products repository.ProductRepository
	Banners  repository.BannerRepository
	Photos   repository.PhotoRepository
	JSONData repository.JSONDataRepository
}

// Service applies content visibility and ownership rules on top of the repositories.
type Service struct {
	articles repository.ArticleRepository
	products repository.ProductRepository
	banners  repository.BannerRepository
	photos   repository.PhotoRepository
	jsonData repository.JSONDataRepository

	policy    *bluemonday.Policy
	validator SchemaValidator
	inferrer  SchemaInferrer
	now       func() time.Time
}

// NewService constructs a content Service.
func NewService(repos Repositories) *Service {
	return &Service{
		articles: repos.Articles,
		products: repos.Products,
		banners:  repos.Banners,
		photos:   repos.Photos,
		jsonData: repos.JSONData,
		policy:   newArticlePolicy(),
		now:      time.Now,
	}
}

// WithSchemaValidator enables schema enforcement for JSON documents.
func (s *Service) WithSchemaValidator(v SchemaValidator) *Service {
	s.validator = v
	return s
}

// WithInferrer enables schema pinning for JSON documents.
func (s *Service) WithInferrer(i SchemaInferrer) *Service {
	s.inferrer = i
	return s
}

// newArticlePolicy allows the rich markup the admin editor produces but no scripts or handlers.
func newArticlePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "span", "div", "pre", "code", "figure", "img")
	p.AllowElements("figure", "figcaption")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

func (s *Service) sanitize(html string) string {
	return s.policy.Sanitize(html)
}

func (s *Service) sanitizePtr(html *string) *string {
	if html == nil {
		return nil
	}
	clean := s.sanitize(*html)
	return &clean
}
