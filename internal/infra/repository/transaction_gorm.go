package repository

import (
	"context"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

// 明細はposition順
func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// 取引と明細をまとめて作成
func (r *TransactionGormRepository) Create(ctx context.Context, tx model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *TransactionGormRepository) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("LineItems", preloadLines).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return model.Transaction{}, translate(err)
	}
	return t, nil
}

// SELECT ... FOR UPDATE。明細の入れ替えは同じ行をUPDATEするので、ロック中は割り込めない
func (r *TransactionGormRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("LineItems", preloadLines).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return model.Transaction{}, translate(err)
	}
	return t, nil
}

// 新しい順に返す
func (r *TransactionGormRepository) List(ctx context.Context, f repo.TransactionListFilter) ([]model.Transaction, int64, error) {
	var items []model.Transaction
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Transaction{})
	if f.SellerID != "" {
		tx = tx.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Transaction{}, 0, translate(err)
	}

	offset := (f.Page - 1) * f.Limit
	err := tx.Preload("LineItems", preloadLines).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return []model.Transaction{}, 0, translate(err)
	}
	return items, total, nil
}

// pendingのときだけ明細を入れ替える
func (r *TransactionGormRepository) ReplaceLineItems(ctx context.Context, id string, items []model.LineItem) (bool, error) {
	replaced := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//pendingの行をロックしてから触る
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND status = ?", id, model.TransactionStatusPending).
			Update("updated_at", gorm.Expr("NOW()"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("transaction_id = ?", id).Delete(&model.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			rows := make([]model.LineItem, len(items))
			for i, li := range items {
				li.TransactionID = id
				li.Position = i
				rows[i] = li
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		replaced = true
		return nil
	})
	if err != nil {
		return false, translate(err)
	}
	return replaced, nil
}

// statusのCAS
func (r *TransactionGormRepository) UpdateStatusIf(ctx context.Context, id string, from, to model.TransactionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
