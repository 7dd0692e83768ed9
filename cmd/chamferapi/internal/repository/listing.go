package repository

import (
	"fmt"
	"math"
	"strings"

	"github.com/uptrace/bun"
)

// ListSearch sorts and filters a list query.
type ListSearch struct {
	// OrderBy is a public field name, mapped through the entity's Columns.
	OrderBy        string
	OrderDirection string // ASC or DESC, defaults to ASC
	// SearchTargets are public field names matched with LIKE against SearchValue.
	SearchTargets []string
	SearchValue   string
}

// Paging slices a list query.
type Paging struct {
	Skip *int
	Take *int
}

// Columns maps public field names to sortable/searchable columns.
type Columns map[string]string

func (c Columns) resolve(field string) (string, error) {
	col, ok := c[field]
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", ErrInvalidSearch, field)
	}
	return col, nil
}

// likeEscaper makes SearchValue match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// applySearch adds ORDER BY and the OR-ed LIKE group to q.
func applySearch(q *bun.SelectQuery, cols Columns, search ListSearch) (*bun.SelectQuery, error) {
	if search.OrderBy != "" {
		col, err := cols.resolve(search.OrderBy)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		switch strings.ToUpper(search.OrderDirection) {
		case "", "ASC":
		case "DESC":
			dir = "DESC"
		default:
			return nil, fmt.Errorf("%w: order direction %q", ErrInvalidSearch, search.OrderDirection)
		}
		q = q.OrderExpr("? "+dir, bun.Ident(col))
	}

	if search.SearchValue != "" && len(search.SearchTargets) > 0 {
		targets := make([]string, 0, len(search.SearchTargets))
		for _, field := range search.SearchTargets {
			col, err := cols.resolve(field)
			if err != nil {
				return nil, err
			}
			targets = append(targets, col)
		}
		pattern := "%" + likeEscaper.Replace(search.SearchValue) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range targets {
				q = q.WhereOr("? LIKE ? ESCAPE '!'", bun.Ident(col), pattern)
			}
			return q
		})
	}

	return q, nil
}

func applyPaging(q *bun.SelectQuery, paging *Paging) *bun.SelectQuery {
	if paging == nil {
		return q
	}
	if paging.Take != nil {
		q = q.Limit(*paging.Take)
	}
	if paging.Skip != nil {
		// SQLite rejects OFFSET without LIMIT
		if paging.Take == nil {
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(*paging.Skip)
	}
	return q
}
