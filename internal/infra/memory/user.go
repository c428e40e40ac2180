package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
)

// ユーザーは取引txの外でしか触らないので別ロック
type userRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
	now   func() time.Time
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return repo.ErrDuplicate
		}
	}
	if _, exists := r.users[user.ID]; exists {
		return repo.ErrDuplicate
	}
	now := r.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = r.now()
	r.users[userID] = u
	return nil
}
