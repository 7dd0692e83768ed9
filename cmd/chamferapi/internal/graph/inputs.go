package graph

import (
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

type listSearchInput struct {
	OrderBy        *string
	OrderDirection string
	SearchTargets  *[]string
	SearchValue    *string
}

type pagingInput struct {
	Skip *int32
	Take *int32
}

type listArgs struct {
	Search *listSearchInput
	Paging *pagingInput
}

func (in *listSearchInput) search() repository.ListSearch {
	if in == nil {
		return repository.ListSearch{}
	}
	return repository.ListSearch{
		OrderBy:        deref(in.OrderBy),
		OrderDirection: in.OrderDirection,
		SearchTargets:  derefList(in.SearchTargets),
		SearchValue:    deref(in.SearchValue),
	}
}

func (in *pagingInput) paging() *repository.Paging {
	if in == nil {
		return nil
	}
	p := &repository.Paging{}
	if in.Skip != nil {
		skip := int(*in.Skip)
		p.Skip = &skip
	}
	if in.Take != nil {
		take := int(*in.Take)
		p.Take = &take
	}
	return p
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func derefList(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

func int64Ptr(p *int32) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}

func fromGraphQLTime(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func toGraphQLTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}
