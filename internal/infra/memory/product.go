package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
)

type productRepo struct {
	run func(fn func(st *state) error) error
	now func() time.Time
}

func (r *productRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var out []model.Product
	var total int64
	err := r.run(func(st *state) error {
		name := strings.ToLower(strings.TrimSpace(q.Name))
		matched := make([]model.Product, 0, len(st.products))
		for _, p := range st.products {
			if name == "" || strings.Contains(strings.ToLower(p.Name), name) {
				matched = append(matched, p)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Name != matched[j].Name {
				return matched[i].Name < matched[j].Name
			}
			return matched[i].ID < matched[j].ID
		})

		total = int64(len(matched))
		start, end := paginate(len(matched), q.Page, q.Limit)
		out = append([]model.Product{}, matched[start:end]...)
		return nil
	})
	return out, total, err
}

func (r *productRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.run(func(st *state) error {
		found, ok := st.products[id]
		if !ok {
			return repo.ErrNotFound
		}
		p = found
		return nil
	})
	return p, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(ids))
	err := r.run(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.run(func(st *state) error {
		if _, exists := st.products[p.ID]; exists {
			return repo.ErrDuplicate
		}
		now := r.now()
		p.CreatedAt, p.UpdatedAt = now, now
		st.products[p.ID] = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
