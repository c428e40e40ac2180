package repository

import (
	"context"

	"posapp/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
	Name  string // 部分一致（大文字小文字を区別しない）
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	// 見つからないIDは結果に含めない
	FindByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
