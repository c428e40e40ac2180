package auth

import (
	"context"
	"errors"
	"strings"

	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	"posapp/internal/repository"
	"posapp/internal/usecase"
	"posapp/internal/validator"
	"posapp/pkg/e"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// ユーザー作成の入力
type CreateUserInput struct {
	Username string
	Password string
	Role     string
}

// UserAdminUsecase はadminによるユーザー管理と /auth/me
type UserAdminUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
}

// DI
func NewUserAdminUsecase(userRepo repository.UserRepository, hasher PasswordHasher, idGen IDGenerator) *UserAdminUsecase {
	return &UserAdminUsecase{userRepo: userRepo, hasher: hasher, idGen: idGen}
}

func (u *UserAdminUsecase) CreateUser(ctx context.Context, caller policy.Caller, in CreateUserInput) (model.User, error) {
	const op = "UserAdminUsecase.CreateUser"

	if !policy.CanManageUsers(caller) {
		return model.User{}, e.Wrap(op, usecase.ErrUnauthorized)
	}
	user, err := u.create(ctx, in)
	if err != nil {
		return model.User{}, e.Wrap(op, err)
	}
	return user, nil
}

func (u *UserAdminUsecase) create(ctx context.Context, in CreateUserInput) (model.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validator.ValidateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := validator.ValidatePassword(in.Password); err != nil {
		return model.User{}, err
	}
	role, err := validator.ValidateRole(in.Role)
	if err != nil {
		return model.User{}, err
	}

	// パスワードをハッシュ化（平文は保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user := &model.User{
		ID:           u.idGen.NewID(),
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, usecase.ErrConflict
		}
		return model.User{}, err
	}
	return *user, nil
}

func (u *UserAdminUsecase) ListUsers(ctx context.Context, caller policy.Caller) ([]model.User, error) {
	const op = "UserAdminUsecase.ListUsers"

	if !policy.CanManageUsers(caller) {
		return nil, e.Wrap(op, usecase.ErrUnauthorized)
	}
	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return users, nil
}

// ロール変更。自分自身のadmin権限は外せない
func (u *UserAdminUsecase) UpdateRole(ctx context.Context, caller policy.Caller, userID string, role string) (model.User, error) {
	const op = "UserAdminUsecase.UpdateRole"

	if !policy.CanManageUsers(caller) {
		return model.User{}, e.Wrap(op, usecase.ErrUnauthorized)
	}
	r, err := validator.ValidateRole(role)
	if err != nil {
		return model.User{}, e.Wrap(op, err)
	}
	if userID == caller.ID && r != model.RoleAdmin {
		return model.User{}, e.Wrap(op, usecase.NewValidationError("cannot remove your own admin role"))
	}

	if err := u.userRepo.UpdateRole(ctx, userID, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, e.Wrap(op, usecase.ErrNotFound)
		}
		return model.User{}, e.Wrap(op, err)
	}
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, e.Wrap(op, err)
	}
	return *user, nil
}

func (u *UserAdminUsecase) Me(ctx context.Context, caller policy.Caller) (model.User, error) {
	const op = "UserAdminUsecase.Me"

	user, err := u.userRepo.FindByID(ctx, caller.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, e.Wrap(op, usecase.ErrNotFound)
	}
	if err != nil {
		return model.User{}, e.Wrap(op, err)
	}
	return *user, nil
}

// EnsureAdmin は起動時に初期adminを用意する。既にいれば何もしない
func (u *UserAdminUsecase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	const op = "UserAdminUsecase.EnsureAdmin"

	_, err := u.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, e.Wrap(op, err)
	}

	if _, err := u.create(ctx, CreateUserInput{Username: username, Password: password, Role: string(model.RoleAdmin)}); err != nil {
		return false, e.Wrap(op, err)
	}
	return true, nil
}
