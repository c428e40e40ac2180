package usecase

import (
	"context"
	"errors"
	"sort"

	"posapp/internal/domain/model"
	repo "posapp/internal/repository"
	"posapp/pkg/e"
)

// QuantityDecision は要求数量をカタログ在庫に照らした結果
type QuantityDecision struct {
	Requested int64
	Applied   int64
	Clamped   bool // Applied が Requested と違う
	Remove    bool // 明細を消す
}

// 1商品が持てる在庫の上限。DBのbigintに届く前に止める
const MaxStock int64 = 1_000_000_000_000

// StockReconciler は数量の検証と在庫の増減を受け持つ。
// 判定は常にストアの現在値で行い、キャッシュは見ない。
type StockReconciler struct {
	txm   repo.TransactionManager
	idGen IDGenerator
	cache ProductCache
	retry RetryPolicy
}

func NewStockReconciler(txm repo.TransactionManager, idGen IDGenerator, cache ProductCache, retry RetryPolicy) *StockReconciler {
	return &StockReconciler{txm: txm, idGen: idGen, cache: cache, retry: retry}
}

// ValidateQuantity は要求数量を [1, 在庫] に収める。
// 0以下は明細削除の合図。在庫0の商品は置けない。
func (s *StockReconciler) ValidateQuantity(p model.Product, requested int64) (QuantityDecision, error) {
	d := QuantityDecision{Requested: requested}
	if requested <= 0 {
		d.Remove = true
		return d, nil
	}
	if p.Stock <= 0 {
		return d, &InsufficientStockError{ProductID: p.ID, Requested: requested, Available: 0}
	}

	d.Applied = requested
	if requested > p.Stock {
		d.Applied = p.Stock
		d.Clamped = true
	}
	return d, nil
}

// ValidateChange は明細を current から target にする変更を判定する。
// 在庫で丸めるのは増やすときだけで、減らす変更は在庫0でも通す。
func (s *StockReconciler) ValidateChange(p model.Product, current, target int64) (QuantityDecision, error) {
	if target > 0 && target <= current {
		return QuantityDecision{Requested: target, Applied: target}, nil
	}
	return s.ValidateQuantity(p, target)
}

// ApplyFinalization は呼び出し側のtxの中で全明細の在庫を減らす。
// 1つでも足りなければエラーを返し、txごと巻き戻してもらう。
func (s *StockReconciler) ApplyFinalization(ctx context.Context, r repo.TxRepos, lines []model.LineItem) error {
	const op = "StockReconciler.ApplyFinalization"

	// ロック順を揃えてデッドロックを避ける
	ordered := append([]model.LineItem(nil), lines...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	for _, li := range ordered {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, li.ProductID, li.Quantity)
		if err != nil {
			return e.Wrap(op, err)
		}
		if ok {
			continue
		}

		available := int64(0)
		p, err := r.Products().FindByID(ctx, li.ProductID)
		switch {
		case err == nil:
			available = p.Stock
		case !errors.Is(err, repo.ErrNotFound):
			return e.Wrap(op, err)
		}
		return &InsufficientStockError{ProductID: li.ProductID, Requested: li.Quantity, Available: available}
	}
	return nil
}

// AdjustStock はカタログ保守としての在庫変更。
// increase は1以上を足す、set は0以上で上書き。結果が負になる変更は通さない。
func (s *StockReconciler) AdjustStock(ctx context.Context, actorID, productID string, action model.StockAction, amount int64) (model.Product, error) {
	const op = "StockReconciler.AdjustStock"

	switch action {
	case model.StockActionIncrease:
		if amount < 1 || amount > MaxStock {
			return model.Product{}, e.Wrap(op, ErrInvalidQuantity)
		}
	case model.StockActionSet:
		if amount < 0 || amount > MaxStock {
			return model.Product{}, e.Wrap(op, ErrInvalidQuantity)
		}
	default:
		return model.Product{}, e.Wrap(op, invalid("invalid stock action"))
	}

	var out model.Product
	err := s.retry.do(ctx, func() error {
		return s.txm.WithinTx(ctx, func(r repo.TxRepos) error {
			before, err := r.Products().FindByID(ctx, productID)
			if err != nil {
				return fromRepo(err)
			}

			var after model.Product
			switch action {
			case model.StockActionIncrease:
				if before.Stock > MaxStock-amount {
					return ErrInvalidQuantity
				}
				p, ok, err := r.Inventory().IncreaseStock(ctx, productID, amount)
				if err != nil {
					return fromRepo(err)
				}
				if !ok {
					return ErrInvalidQuantity
				}
				after = p
			case model.StockActionSet:
				p, err := r.Inventory().SetStock(ctx, productID, amount)
				if err != nil {
					return fromRepo(err)
				}
				after = p
			}

			//履歴
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ID:          s.idGen.NewID(),
				ProductID:   productID,
				ActorUserID: actorID,
				Action:      action,
				Amount:      amount,
				Before:      before.Stock,
				After:       after.Stock,
			}); err != nil {
				return err
			}

			out = after
			return nil
		})
	})
	if err != nil {
		return model.Product{}, e.Wrap(op, err)
	}

	s.cache.Delete(ctx, productID)
	return out, nil
}
