package repository

import (
	"context"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID string, newStock int64) (model.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", newStock)

	if res.Error != nil {
		return model.Product{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Product{}, repo.ErrNotFound
	}
	return r.reload(ctx, productID)
}

// 在庫が足りるときだけ減らす
// 行ロックで同じ商品への更新は直列になる
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫を足す。結果が負になる場合は更新しない
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID string, qty int64) (model.Product, bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, qty).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return model.Product{}, false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// 商品がないのか、負になるのかを見分ける
		p, err := r.reload(ctx, productID)
		if err != nil {
			return model.Product{}, false, err
		}
		return p, false, nil
	}

	p, err := r.reload(ctx, productID)
	if err != nil {
		return model.Product{}, false, err
	}
	return p, true, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *InventoryGormRepository) reload(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}
