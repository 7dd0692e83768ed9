package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStrategy(t *testing.T, opts ...StrategyOption) *Strategy {
	t.Helper()
	s, err := NewStrategy(testCipher(t), opts...)
	require.NoError(t, err)
	return s
}

func issuedCookie(t *testing.T, s *Strategy, id string) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	token, err := s.IssueToken(rec, "Bearer", Payload{ID: id})
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0], token
}

func TestStrategy_IssueToken(t *testing.T) {
	s := newTestStrategy(t, WithDomain("example.com"))
	cookie, token := issuedCookie(t, s, "u1")

	assert.Equal(t, CredentialKey, cookie.Name)
	assert.Equal(t, "Bearer "+token, cookie.Value)
	assert.Equal(t, "example.com", cookie.Domain)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestStrategy_Resolve(t *testing.T) {
	s := newTestStrategy(t)
	cookie, token := issuedCookie(t, s, "u1")

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    *AuthState
	}{
		{
			name:    "no credential",
			prepare: func(r *http.Request) {},
		},
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(cookie) },
			want:    &AuthState{Type: "bearer", Credential: token, Payload: Payload{ID: "u1"}},
		},
		{
			name:    "header fallback",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, "BEARER "+token) },
			want:    &AuthState{Type: "bearer", Credential: token, Payload: Payload{ID: "u1"}},
		},
		{
			name: "cookie wins over header",
			prepare: func(r *http.Request) {
				r.AddCookie(cookie)
				r.Header.Set(CredentialKey, "Bearer garbage")
			},
			want: &AuthState{Type: "bearer", Credential: token, Payload: Payload{ID: "u1"}},
		},
		{
			name:    "other scheme keeps its name",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, "Service "+token) },
			want:    &AuthState{Type: "service", Credential: token, Payload: Payload{ID: "u1"}},
		},
		{
			name:    "single token",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, token) },
		},
		{
			name:    "three tokens",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, "Bearer "+token+" extra") },
		},
		{
			name:    "double space",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, "Bearer  "+token) },
		},
		{
			name:    "bad signature",
			prepare: func(r *http.Request) { r.Header.Set(CredentialKey, "Bearer "+token+"x") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			tt.prepare(r)
			assert.Equal(t, tt.want, s.Resolve(r))
		})
	}
}

func TestStrategy_ResolveUsesCache(t *testing.T) {
	var outcomes []Outcome
	s := newTestStrategy(t, WithObserver(func(o Outcome) { outcomes = append(outcomes, o) }))
	_, token := issuedCookie(t, s, "u2")

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		r.Header.Set(CredentialKey, "Bearer "+token)
		require.NotNil(t, s.Resolve(r))
	}
	assert.Equal(t, []Outcome{OutcomeVerified, OutcomeCached}, outcomes)
}

func TestStrategy_CachedTokenStillExpires(t *testing.T) {
	s := newTestStrategy(t, WithTokenTTL(time.Hour))
	_, token := issuedCookie(t, s, "u3")

	r := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	r.Header.Set(CredentialKey, "Bearer "+token)
	require.NotNil(t, s.Resolve(r))

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Nil(t, s.Resolve(r))
}

func TestStrategy_RevokeToken(t *testing.T) {
	s := newTestStrategy(t)
	rec := httptest.NewRecorder()
	s.RevokeToken(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CredentialKey, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, "localhost", cookies[0].Domain)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestNewStrategy_RequiresCipher(t *testing.T) {
	_, err := NewStrategy(nil)
	assert.Error(t, err)
}
