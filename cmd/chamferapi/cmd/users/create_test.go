package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownRoles(t *testing.T) {
	assert.Empty(t, unknownRoles([]string{"common", "admin", "deus"}))
	assert.Equal(t, []string{"root", "Admin"}, unknownRoles([]string{"root", "admin", "Admin"}))
}
