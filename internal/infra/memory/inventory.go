package memory

import (
	"context"
	"time"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
)

type inventoryRepo struct {
	run func(fn func(st *state) error) error
	now func() time.Time
}

func (r *inventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	ok := false
	err := r.run(func(st *state) error {
		p, found := st.products[productID]
		if !found || p.Stock < qty {
			return nil
		}
		p.Stock -= qty
		p.UpdatedAt = r.now()
		st.products[productID] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r *inventoryRepo) IncreaseStock(ctx context.Context, productID string, qty int64) (model.Product, bool, error) {
	var out model.Product
	ok := false
	err := r.run(func(st *state) error {
		p, found := st.products[productID]
		if !found {
			return repo.ErrNotFound
		}
		if p.Stock+qty < 0 {
			out = p
			return nil
		}
		p.Stock += qty
		p.UpdatedAt = r.now()
		st.products[productID] = p
		out, ok = p, true
		return nil
	})
	return out, ok, err
}

func (r *inventoryRepo) SetStock(ctx context.Context, productID string, newStock int64) (model.Product, error) {
	var out model.Product
	err := r.run(func(st *state) error {
		p, found := st.products[productID]
		if !found {
			return repo.ErrNotFound
		}
		p.Stock = newStock
		p.UpdatedAt = r.now()
		st.products[productID] = p
		out = p
		return nil
	})
	return out, err
}

func (r *inventoryRepo) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.run(func(st *state) error {
		adj.CreatedAt = r.now()
		st.adjustments = append(st.adjustments, adj)
		return nil
	})
}
