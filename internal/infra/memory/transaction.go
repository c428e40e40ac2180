package memory

import (
	"context"
	"sort"
	"time"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
)

type transactionRepo struct {
	run func(fn func(st *state) error) error
	now func() time.Time
}

func (r *transactionRepo) Create(ctx context.Context, tx model.Transaction) error {
	return r.run(func(st *state) error {
		if _, exists := st.transactions[tx.ID]; exists {
			return repo.ErrDuplicate
		}
		now := r.now()
		tx.CreatedAt, tx.UpdatedAt = now, now
		tx = copyTransaction(tx)
		for i := range tx.LineItems {
			tx.LineItems[i].TransactionID = tx.ID
		}
		st.transactions[tx.ID] = tx
		return nil
	})
}

func (r *transactionRepo) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	var out model.Transaction
	err := r.run(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = copyTransaction(t)
		return nil
	})
	return out, err
}

// ストア全体が1つのロックで直列なので FindByID と同じ
func (r *transactionRepo) FindByIDForUpdate(ctx context.Context, id string) (model.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *transactionRepo) List(ctx context.Context, f repo.TransactionListFilter) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	var total int64
	err := r.run(func(st *state) error {
		matched := make([]model.Transaction, 0, len(st.transactions))
		for _, t := range st.transactions {
			if f.SellerID != "" && t.SellerID != f.SellerID {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			matched = append(matched, copyTransaction(t))
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID > matched[j].ID
		})

		total = int64(len(matched))
		start, end := paginate(len(matched), f.Page, f.Limit)
		out = matched[start:end]
		return nil
	})
	return out, total, err
}

func (r *transactionRepo) ReplaceLineItems(ctx context.Context, id string, items []model.LineItem) (bool, error) {
	replaced := false
	err := r.run(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		if t.Status != model.TransactionStatusPending {
			return nil
		}
		lines := make([]model.LineItem, len(items))
		for i, li := range items {
			li.TransactionID = id
			li.Position = i
			lines[i] = li
		}
		t.LineItems = lines
		t.UpdatedAt = r.now()
		st.transactions[id] = t
		replaced = true
		return nil
	})
	return replaced, err
}

func (r *transactionRepo) UpdateStatusIf(ctx context.Context, id string, from, to model.TransactionStatus) (bool, error) {
	swapped := false
	err := r.run(func(st *state) error {
		t, ok := st.transactions[id]
		if !ok || t.Status != from {
			return nil
		}
		t.Status = to
		t.UpdatedAt = r.now()
		st.transactions[id] = t
		swapped = true
		return nil
	})
	return swapped, err
}
