package repository

import (
	"context"

	"posapp/internal/domain/model"
)

// 在庫の更新と履歴保存をまとめた約束。
// どの操作も stock < 0 になる更新はしない。
type InventoryRepository interface {
	// 在庫が足りるときだけ減らす。足りなければ false
	DecreaseStockIfEnough(ctx context.Context, productID string, qty int64) (bool, error)
	// 加算後の商品を返す。結果が負になるなら false
	IncreaseStock(ctx context.Context, productID string, qty int64) (model.Product, bool, error)
	SetStock(ctx context.Context, productID string, newStock int64) (model.Product, error)
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
