package repository

import (
	"context"

	"posapp/internal/domain/model"
)

type TransactionListFilter struct {
	SellerID string
	Status   model.TransactionStatus
	Page     int
	Limit    int
}

// 取引と明細の永続化。明細は position 順で返す。
type TransactionRepository interface {
	Create(ctx context.Context, tx model.Transaction) error
	FindByID(ctx context.Context, id string) (model.Transaction, error)
	// tx内で取引行をロックしてから明細ごと読む
	FindByIDForUpdate(ctx context.Context, id string) (model.Transaction, error)
	List(ctx context.Context, f TransactionListFilter) ([]model.Transaction, int64, error)

	// pending のときだけ明細を丸ごと置き換える。pendingでなければ false
	ReplaceLineItems(ctx context.Context, id string, items []model.LineItem) (bool, error)
	// status が from のときだけ to にする（CAS）。一致しなければ false
	UpdateStatusIf(ctx context.Context, id string, from, to model.TransactionStatus) (bool, error)
}
