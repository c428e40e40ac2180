package auth_test

import (
	"context"
	"fmt"
	"testing"

	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	"posapp/internal/infra/memory"
	"posapp/internal/usecase"
	auth "posapp/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("user-%d", g.n)
}

var (
	rootAdmin = policy.Caller{ID: "admin-1", Username: "root", Role: model.RoleAdmin}
	clerk     = policy.Caller{ID: "staff-1", Username: "clerk", Role: model.RoleStaff}
)

func newUserAdmin() (*auth.UserAdminUsecase, *memory.Store) {
	store := memory.NewStore()
	return auth.NewUserAdminUsecase(store.Users(), auth.NewBcryptPasswordHasher(4), &seqIDs{}), store
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	uc, store := newUserAdmin()

	u, err := uc.CreateUser(ctx, rootAdmin, auth.CreateUserInput{Username: "alice", Password: "s3cret-pass", Role: "Staff"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, auth.NewBcryptPasswordVerifier().Verify("s3cret-pass", u.PasswordHash))

	saved, err := store.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, saved.ID)

	_, err = uc.CreateUser(ctx, rootAdmin, auth.CreateUserInput{Username: "alice", Password: "another-pass", Role: "staff"})
	assert.ErrorIs(t, err, usecase.ErrConflict)

	_, err = uc.CreateUser(ctx, clerk, auth.CreateUserInput{Username: "bob", Password: "s3cret-pass", Role: "staff"})
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	tests := []struct {
		name string
		in   auth.CreateUserInput
	}{
		{"shortUsername", auth.CreateUserInput{Username: "ab", Password: "s3cret-pass", Role: "staff"}},
		{"shortPassword", auth.CreateUserInput{Username: "carol", Password: "short", Role: "staff"}},
		{"weakPassword", auth.CreateUserInput{Username: "carol", Password: "password123", Role: "staff"}},
		{"badRole", auth.CreateUserInput{Username: "carol", Password: "s3cret-pass", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateUser(ctx, rootAdmin, tt.in)
			assert.ErrorIs(t, err, usecase.ErrValidation)
		})
	}
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUserAdmin()

	u, err := uc.CreateUser(ctx, rootAdmin, auth.CreateUserInput{Username: "alice", Password: "s3cret-pass", Role: "staff"})
	require.NoError(t, err)

	updated, err := uc.UpdateRole(ctx, rootAdmin, u.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)

	_, err = uc.UpdateRole(ctx, rootAdmin, "missing", "manager")
	assert.ErrorIs(t, err, usecase.ErrNotFound)

	_, err = uc.UpdateRole(ctx, rootAdmin, rootAdmin.ID, "staff")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	_, err = uc.UpdateRole(ctx, clerk, u.ID, "admin")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestListUsersAndMe(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUserAdmin()

	bob, err := uc.CreateUser(ctx, rootAdmin, auth.CreateUserInput{Username: "bob", Password: "s3cret-pass", Role: "staff"})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, rootAdmin, auth.CreateUserInput{Username: "alice", Password: "s3cret-pass", Role: "manager"})
	require.NoError(t, err)

	users, err := uc.ListUsers(ctx, rootAdmin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	_, err = uc.ListUsers(ctx, clerk)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	me, err := uc.Me(ctx, policy.Caller{ID: bob.ID, Username: "bob", Role: model.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, "bob", me.Username)

	_, err = uc.Me(ctx, policy.Caller{ID: "gone"})
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	uc, store := newUserAdmin()

	created, err := uc.EnsureAdmin(ctx, "root", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "root", "bootstrap-pass")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := store.Users().FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
