package handler_test

import (
	"net/http"
	"testing"

	"posapp/internal/domain/model"
	auth "posapp/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginAndMe(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, "", http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[auth.LoginOutput](t, rec)
	assert.Equal(t, "u-staff", out.User.ID)
	assert.Empty(t, out.User.PasswordHash)
	require.NotEmpty(t, out.Token.AccessToken)

	a.tokens["fresh"] = out.Token.AccessToken
	rec = a.do(t, "fresh", http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[model.User](t, rec).Username)

	rec = a.do(t, "", http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(t, "", http.MethodPost, "/auth/login", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_UserManagement(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, "dave", http.MethodPost, "/admin/users", map[string]string{"username": "erin", "password": "s3cret-pass", "role": "staff"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	erin := decode[model.User](t, rec)

	rec = a.do(t, "dave", http.MethodPost, "/admin/users", map[string]string{"username": "erin", "password": "s3cret-pass", "role": "staff"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, "carol", http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, "dave", http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]model.User](t, rec)["items"], 5)

	rec = a.do(t, "dave", http.MethodPut, "/admin/users/"+erin.ID+"/role", map[string]string{"role": "manager"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleManager, decode[model.User](t, rec).Role)
}

// トークンのroleよりDB上のroleが優先される
func TestAuth_RoleChangeTakesEffectImmediately(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "1.00", 1)

	rec := a.do(t, "dave", http.MethodPut, "/admin/users/u-manager/role", map[string]string{"role": "staff"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "carol", http.MethodPost, "/products/p1/increase-stock", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	rec := a.do(t, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
