package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
)

func newTestUser(email, username string) *models.User {
	return &models.User{
		Email:    email,
		Username: username,
		Password: strPtr("digest"),
		Provider: models.ProviderEmail,
		Roles:    models.StringList{models.RoleCommon},
	}
}

func TestBunUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	t.Run("create valid user", func(t *testing.T) {
		user := newTestUser("alice@example.com", "alice")
		require.NoError(t, repo.Create(ctx, user))
		assert.NotEmpty(t, user.ID)
		assert.NotZero(t, user.JoinedAt)

		retrieved, err := repo.GetActiveByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", retrieved.Email)
		assert.Equal(t, models.StringList{models.RoleCommon}, retrieved.Roles)
		assert.False(t, retrieved.Deleted)
	})

	t.Run("duplicate email and username", func(t *testing.T) {
		err := repo.Create(ctx, newTestUser("alice@example.com", "alice"))
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, []Collision{
			{Target: "email", Value: "alice@example.com"},
			{Target: "username", Value: "alice"},
		}, dup.Collisions)
	})

	t.Run("duplicate username only", func(t *testing.T) {
		err := repo.Create(ctx, newTestUser("other@example.com", "alice"))
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, []Collision{{Target: "username", Value: "alice"}}, dup.Collisions)
	})

	t.Run("invalid email rejected before insert", func(t *testing.T) {
		err := repo.Create(ctx, newTestUser("not-an-email", "bob"))
		require.Error(t, err)
	})
}

func TestBunUserRepository_SoftDeletedRowsAreHidden(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := newTestUser("carol@example.com", "carol")
	require.NoError(t, repo.Create(ctx, user))

	user.Deleted = true
	user.Email = "18f0a1b2c3d.tombstone"
	user.Username = "18f0a1b2c3d.tombstone-u"
	require.NoError(t, repo.Update(ctx, user))

	_, err := repo.GetActiveByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindActiveByLogin(ctx, models.ProviderEmail, "carol@example.com", "")
	assert.ErrorIs(t, err, ErrNotFound)

	users, total, err := repo.ListActive(ctx, ListSearch{}, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Zero(t, total)

	// the original login is free again
	require.NoError(t, repo.Create(ctx, newTestUser("carol@example.com", "carol")))
}

func TestBunUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	first := newTestUser("dave@example.com", "dave")
	second := newTestUser("erin@example.com", "erin")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("rename to free username", func(t *testing.T) {
		first.Username = "david"
		require.NoError(t, repo.Update(ctx, first))

		retrieved, err := repo.GetActiveByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "david", retrieved.Username)
	})

	t.Run("rename onto another user's email", func(t *testing.T) {
		first.Email = "erin@example.com"
		err := repo.Update(ctx, first)
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "email", dup.Collisions[0].Target)
		first.Email = "dave@example.com"
	})

	t.Run("missing user", func(t *testing.T) {
		ghost := newTestUser("ghost@example.com", "ghost")
		ghost.ID = "0192d5f0-0000-7000-8000-000000000000"
		err := repo.Update(ctx, ghost)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunUserRepository_FindActiveByLogin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	user := newTestUser("frank@example.com", "frank")
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.FindActiveByLogin(ctx, models.ProviderEmail, "frank@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.FindActiveByLogin(ctx, models.ProviderEmail, "", "frank")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = repo.FindActiveByLogin(ctx, models.ProviderEmail, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_ListActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"gina", "hank", "gabe"} {
		require.NoError(t, repo.Create(ctx, newTestUser(name+"@example.com", name)))
	}

	t.Run("search and order", func(t *testing.T) {
		users, total, err := repo.ListActive(ctx, ListSearch{
			OrderBy:        "username",
			OrderDirection: "DESC",
			SearchTargets:  []string{"username"},
			SearchValue:    "g",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, users, 2)
		assert.Equal(t, "gina", users[0].Username)
		assert.Equal(t, "gabe", users[1].Username)
	})

	t.Run("paging keeps total", func(t *testing.T) {
		users, total, err := repo.ListActive(ctx, ListSearch{OrderBy: "username"}, &Paging{Skip: intPtr(1), Take: intPtr(1)})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, users, 1)
		assert.Equal(t, "gina", users[0].Username)
	})

	t.Run("skip without take", func(t *testing.T) {
		users, _, err := repo.ListActive(ctx, ListSearch{OrderBy: "username"}, &Paging{Skip: intPtr(2)})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "hank", users[0].Username)
	})

	t.Run("unknown order field", func(t *testing.T) {
		_, _, err := repo.ListActive(ctx, ListSearch{OrderBy: "password"}, nil)
		assert.ErrorIs(t, err, ErrInvalidSearch)
	})

	t.Run("unknown search target", func(t *testing.T) {
		_, _, err := repo.ListActive(ctx, ListSearch{SearchTargets: []string{"roles"}, SearchValue: "x"}, nil)
		assert.ErrorIs(t, err, ErrInvalidSearch)
	})
}

func TestBunUserRepository_ListActive_LiteralSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	for i, name := range []string{"a_b", "axb", "50%off", "500ff", "hey!"} {
		require.NoError(t, repo.Create(ctx, newTestUser(fmt.Sprintf("lit%d@example.com", i), name)))
	}

	tests := []struct {
		value string
		want  []string
	}{
		{value: "_", want: []string{"a_b"}},
		{value: "%", want: []string{"50%off"}},
		{value: "0%o", want: []string{"50%off"}},
		{value: "!", want: []string{"hey!"}},
		{value: "x", want: []string{"axb"}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			users, total, err := repo.ListActive(ctx, ListSearch{
				OrderBy:       "username",
				SearchTargets: []string{"username"},
				SearchValue:   tt.value,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.Username)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestBunUserRepository_GetActiveByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	a := newTestUser("ivy@example.com", "ivy")
	b := newTestUser("jack@example.com", "jack")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	users, err := repo.GetActiveByIDs(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.GetActiveByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
