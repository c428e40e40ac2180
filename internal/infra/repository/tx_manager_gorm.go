package repository

import (
	"context"

	repo "posapp/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	transactions repo.TransactionRepository
	inventory    repo.InventoryRepository
	products     repo.ProductRepository
}

func (r *txReposGorm) Transactions() repo.TransactionRepository { return r.transactions }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			transactions: NewTransactionGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			products:     NewProductGormRepository(tx),
		}
		return fn(r)
	})
	// commit時の直列化失敗もConflictとして返す
	return translate(err)
}
