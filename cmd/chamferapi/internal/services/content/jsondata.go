package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// JSONDataInput replaces a stored document.
type JSONDataInput struct {
	ID   string
	Data string
	// Schema replaces the stored schema; an empty string removes it, nil keeps it.
	Schema *string
	// PinSchema infers a schema from Data when no schema is stored or given.
	PinSchema bool
}

// GetJSONData returns document id, or nil when there is none.
func (s *Service) GetJSONData(ctx context.Context, id string) (*models.JSONData, error) {
	doc, err := s.jsonData.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// SetJSONData stores a document, enforcing its schema when one applies.
func (s *Service) SetJSONData(ctx context.Context, in JSONDataInput) (*models.JSONData, error) {
	if !json.Valid([]byte(in.Data)) {
		return nil, gqlerr.Invalid("data is not valid JSON")
	}

	schema, err := s.resolveSchema(ctx, in)
	if err != nil {
		return nil, err
	}

	if schema != nil && s.validator != nil {
		if err := s.validator.Validate(*schema, in.Data); err != nil {
			return nil, gqlerr.Invalid(err.Error())
		}
	}

	doc := &models.JSONData{ID: in.ID, Data: in.Data, Schema: schema}
	if err := s.jsonData.Put(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) resolveSchema(ctx context.Context, in JSONDataInput) (*string, error) {
	if in.Schema != nil {
		if *in.Schema == "" {
			return nil, nil
		}
		if s.validator != nil {
			if err := s.validator.CheckSchema(*in.Schema); err != nil {
				return nil, gqlerr.Invalid(err.Error())
			}
		}
		return in.Schema, nil
	}

	existing, err := s.GetJSONData(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Schema != nil {
		return existing.Schema, nil
	}

	if in.PinSchema && s.inferrer != nil {
		inferred, err := s.inferrer.Infer(in.Data)
		if err != nil {
			return nil, gqlerr.Invalid(err.Error())
		}
		return &inferred, nil
	}
	return nil, nil
}
