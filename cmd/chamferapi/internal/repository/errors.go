package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by every lookup that matched no live row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSearch is returned when a list search names a column that cannot be sorted or searched.
	ErrInvalidSearch = errors.New("invalid search")
)

// Collision names one unique field that clashed with an existing row.
type Collision struct {
	Target string
	Value  string
}

// DuplicateError reports unique-field collisions on create or update.
type DuplicateError struct {
	Collisions []Collision
}

func (e *DuplicateError) Error() string {
	targets := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		targets = append(targets, c.Target)
	}
	return fmt.Sprintf("duplicated: %s", strings.Join(targets, ", "))
}

func notFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
}
