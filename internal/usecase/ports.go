package usecase

import (
	"context"

	"posapp/internal/domain/model"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 商品詳細の読み取りキャッシュ。失敗は実装側で握りつぶす
type ProductCache interface {
	Get(ctx context.Context, id string) (model.Product, bool)
	Set(ctx context.Context, p model.Product)
	Delete(ctx context.Context, ids ...string)
}
