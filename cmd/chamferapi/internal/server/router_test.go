package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/middleware"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

type mapLookup map[string]*models.User

func (m mapLookup) GetActiveByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newTestRouter(t *testing.T, whiteList []string, users mapLookup) (http.Handler, *auth.Strategy, *auth.Cipher) {
	t.Helper()
	cipher, err := auth.NewCipher("router-secret")
	require.NoError(t, err)
	strategy, err := auth.NewStrategy(cipher)
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := "anonymous"
		if u := auth.UserFromContext(r.Context()); u != nil {
			name = u.Username
		}
		_, _ = w.Write([]byte(name))
	})

	r := NewRouter(RouterOptions{
		GraphQL:     echo,
		GraphQLPath: "/graphql",
		Strategy:    strategy,
		Hydrator:    middleware.NewHydrator(users),
		Cipher:      cipher,
		WhiteList:   whiteList,
	})
	return r, strategy, cipher
}

func TestRouter_GraphQLHydratesBearer(t *testing.T) {
	users := mapLookup{"u1": {ID: "u1", Username: "alice"}}
	h, strategy, _ := newTestRouter(t, nil, users)

	token, err := strategy.IssueToken(httptest.NewRecorder(), "Bearer", auth.Payload{ID: "u1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRouter_UnknownUserIsUnauthorized(t *testing.T) {
	h, strategy, _ := newTestRouter(t, nil, mapLookup{})

	token, err := strategy.IssueToken(httptest.NewRecorder(), "Bearer", auth.Payload{ID: "gone"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_OriginWhiteList(t *testing.T) {
	h, _, _ := newTestRouter(t, []string{"https://admin.example.com"}, mapLookup{})

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{name: "listed origin", origin: "https://admin.example.com", want: http.StatusOK},
		{name: "unlisted origin", origin: "https://evil.example.com", want: http.StatusUnauthorized},
		{name: "no origin", origin: "", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_AnyOriginIsReflected(t *testing.T) {
	h, _, _ := newTestRouter(t, []string{"*"}, mapLookup{})

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://anything.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_JWKS(t *testing.T) {
	h, _, cipher := newTestRouter(t, nil, mapLookup{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var set jose.JSONWebKeySet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	require.Len(t, set.Keys, 1)
	assert.Equal(t, cipher.KeyID(), set.Keys[0].KeyID)
}

func TestRouter_DefaultHealth(t *testing.T) {
	h, _, _ := newTestRouter(t, nil, mapLookup{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(pinger{}, true)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, HealthResponse{Status: "ok", Database: "ok", Uploads: true}, resp)

	rec = httptest.NewRecorder()
	HandleHealth(pinger{err: errors.New("down")}, false)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unreachable", resp.Database)
}
