// Package memory はプロセス内で完結するストア実装。
// STORAGE_DRIVER=memory の開発起動とテストで使う。
package memory

import (
	"context"
	"sync"
	"time"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
)

type state struct {
	products     map[string]model.Product
	transactions map[string]model.Transaction
	adjustments  []model.InventoryAdjustment
}

func newState() *state {
	return &state{
		products:     map[string]model.Product{},
		transactions: map[string]model.Transaction{},
	}
}

// txの作業用コピー。明細スライスも複製する
func (s *state) clone() *state {
	c := &state{
		products:     make(map[string]model.Product, len(s.products)),
		transactions: make(map[string]model.Transaction, len(s.transactions)),
		adjustments:  append([]model.InventoryAdjustment(nil), s.adjustments...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	return c
}

func copyTransaction(t model.Transaction) model.Transaction {
	t.LineItems = append([]model.LineItem(nil), t.LineItems...)
	return t
}

// Store は商品・取引・ユーザーを保持する。
// WithinTx はコピーに対して fn を実行し、成功したときだけ差し替える。
type Store struct {
	mu    sync.Mutex
	st    *state
	users *userRepo
	now   func() time.Time
}

func NewStore() *Store {
	s := &Store{st: newState(), now: time.Now}
	s.users = &userRepo{users: map[string]model.User{}, now: s.now}
	return s
}

// 1操作ぶんだけロックして現在の状態で実行する
func (s *Store) locked(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Products() repo.ProductRepository {
	return &productRepo{run: s.locked, now: s.now}
}

func (s *Store) Inventory() repo.InventoryRepository {
	return &inventoryRepo{run: s.locked, now: s.now}
}

func (s *Store) Transactions() repo.TransactionRepository {
	return &transactionRepo{run: s.locked, now: s.now}
}

func (s *Store) Users() repo.UserRepository { return s.users }

// 在庫調整履歴（確認用）
func (s *Store) Adjustments() []model.InventoryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.st.adjustments...)
}

type txRepos struct {
	transactions repo.TransactionRepository
	inventory    repo.InventoryRepository
	products     repo.ProductRepository
}

func (r *txRepos) Transactions() repo.TransactionRepository { return r.transactions }
func (r *txRepos) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txRepos) Products() repo.ProductRepository         { return r.products }

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	run := func(f func(st *state) error) error { return f(work) }
	r := &txRepos{
		transactions: &transactionRepo{run: run, now: s.now},
		inventory:    &inventoryRepo{run: run, now: s.now},
		products:     &productRepo{run: run, now: s.now},
	}

	if err := fn(r); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func paginate(total, page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return 0, 0
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}
