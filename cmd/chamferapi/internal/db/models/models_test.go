package models

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr string
	}{
		{
			name: "valid",
			user: User{Email: "a@example.com", Username: "a", Roles: StringList{RoleCommon}},
		},
		{
			name:    "bad email",
			user:    User{Email: "nope", Username: "a"},
			wantErr: "email",
		},
		{
			name: "tombstone skips email format",
			user: User{Email: "18f0a1b2c3d.xyz", Username: "18f0a1b2c3d.abc", Deleted: true},
		},
		{
			name:    "unknown role",
			user:    User{Email: "a@example.com", Username: "a", Roles: StringList{"root"}},
			wantErr: "roles",
		},
		{
			name:    "missing username",
			user:    User{Email: "a@example.com"},
			wantErr: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.wantErr)
		})
	}
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Roles: StringList{RoleAdmin}}
	assert.True(t, u.HasRole(RoleAdmin))
	assert.False(t, u.HasRole(RoleDeus))
	assert.True(t, u.HasAnyRole(RoleDeus, RoleAdmin))
	assert.False(t, u.HasAnyRole())

	var nobody *User
	assert.False(t, nobody.HasRole(RoleCommon))
}

func TestStringList_ScanAndValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan(`["c"]`))
	assert.Equal(t, StringList{"c"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, v)
}

func TestContentValidation(t *testing.T) {
	assert.Error(t, (&Article{Title: "", Content: "x"}).Validate())
	assert.NoError(t, (&Article{Title: "t", Content: "x"}).Validate())

	assert.Error(t, (&Product{Type: "other", Title: "t"}).Validate())
	assert.NoError(t, (&Product{Type: ProductTypeForward, Title: "t"}).Validate())

	blank := BannerLinkBlank
	assert.NoError(t, (&Banner{Name: "n", ThumbnailURL: "t", LinkTarget: &blank}).Validate())
	bad := "top"
	assert.Error(t, (&Banner{Name: "n", ThumbnailURL: "t", LinkTarget: &bad}).Validate())

	assert.Error(t, (&Photo{Name: "n"}).Validate())
	assert.Error(t, (&JSONData{ID: "k"}).Validate())
}

func TestProvider_String(t *testing.T) {
	assert.Equal(t, "email", ProviderEmail.String())
	assert.Equal(t, "provider(3)", Provider(3).String())
}
