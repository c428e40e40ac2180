package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	repo "posapp/internal/repository"
	"posapp/pkg/e"
	"posapp/pkg/logger"
)

// TransactionUsecase は販売取引の状態遷移を受け持つ。
// pending -> completed / cancelled の一方向のみ。
type TransactionUsecase struct {
	txm          repo.TransactionManager
	transactions repo.TransactionRepository
	products     repo.ProductRepository
	engine       *StockReconciler
	idGen        IDGenerator
	cache        ProductCache
	retry        RetryPolicy
	logger       logger.Logger
}

// DI
func NewTransactionUsecase(
	txm repo.TransactionManager,
	transactions repo.TransactionRepository,
	products repo.ProductRepository,
	engine *StockReconciler,
	idGen IDGenerator,
	cache ProductCache,
	retry RetryPolicy,
	l logger.Logger,
) *TransactionUsecase {
	return &TransactionUsecase{
		txm:          txm,
		transactions: transactions,
		products:     products,
		engine:       engine,
		idGen:        idGen,
		cache:        cache,
		retry:        retry,
		logger:       l,
	}
}

type LineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// 作成・一括置換の結果。調整があった明細だけ Adjustments に入る
type TransactionEditOutput struct {
	Transaction TransactionView `json:"transaction"`
	Adjustments []LineChange    `json:"adjustments"`
}

type LineEditOutput struct {
	Transaction TransactionView `json:"transaction"`
	Change      LineChange      `json:"change"`
}

type ListTransactionsInput struct {
	SellerID string
	Status   string
	Page     int
	Limit    int
}

type TransactionListOutput struct {
	Items []TransactionView `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// 数量の加算。int64の端で止める
func addQty(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// 同じ商品をまとめる（数量は合算、位置は最初に出た場所）
func mergeLines(lines []LineInput) []LineInput {
	out := make([]LineInput, 0, len(lines))
	index := map[string]int{}
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity = addQty(out[i].Quantity, l.Quantity)
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

func checkProductIDs(lines []LineInput) error {
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return invalid("product_id is required")
		}
	}
	return nil
}

// 商品を引いて数量を検証し、保存する明細を作る。
// current は今の明細数量（新規作成なら nil）。減らす行は在庫で弾かない
func (u *TransactionUsecase) buildLines(ctx context.Context, products repo.ProductRepository, lines []LineInput, current map[string]int64) ([]model.LineItem, []LineChange, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.LineItem, 0, len(lines))
	changes := make([]LineChange, 0)
	for _, l := range lines {
		p, ok := found[l.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("product %s: %w", l.ProductID, ErrNotFound)
		}
		d, err := u.engine.ValidateChange(p, current[p.ID], l.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if d.Remove {
			return nil, nil, ErrInvalidQuantity
		}
		if d.Clamped {
			changes = append(changes, changeOf(p.ID, d))
		}
		items = append(items, model.LineItem{
			ProductID: p.ID,
			Position:  len(items),
			Quantity:  d.Applied,
		})
	}
	return items, changes, nil
}

// pendingかつ操作が許されている取引を取り出す
func loadEditable(ctx context.Context, transactions repo.TransactionRepository, caller policy.Caller, id string, allowed func(model.Transaction, policy.Caller) bool) (model.Transaction, error) {
	t, err := transactions.FindByIDForUpdate(ctx, id)
	if err != nil {
		return model.Transaction{}, fromRepo(err)
	}
	if t.Status.IsTerminal() {
		return model.Transaction{}, ErrInvalidTransition
	}
	if !allowed(t, caller) {
		return model.Transaction{}, ErrUnauthorized
	}
	return t, nil
}

// Create は pending の取引を作る。販売者は呼び出したユーザー
func (u *TransactionUsecase) Create(ctx context.Context, caller policy.Caller, lines []LineInput) (TransactionEditOutput, error) {
	const op = "TransactionUsecase.Create"

	if len(lines) == 0 {
		return TransactionEditOutput{}, e.Wrap(op, ErrEmptyTransaction)
	}
	if err := checkProductIDs(lines); err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return TransactionEditOutput{}, e.Wrap(op, ErrInvalidQuantity)
		}
	}

	items, changes, err := u.buildLines(ctx, u.products, mergeLines(lines), nil)
	if err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}

	t := model.Transaction{
		ID:         u.idGen.NewID(),
		SellerID:   caller.ID,
		SellerName: caller.Username,
		Status:     model.TransactionStatusPending,
		LineItems:  items,
	}
	if err := u.transactions.Create(ctx, t); err != nil {
		return TransactionEditOutput{}, e.Wrap(op, fromRepo(err))
	}

	view, err := u.reload(ctx, t.ID)
	if err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}
	return TransactionEditOutput{Transaction: view, Adjustments: changes}, nil
}

// AddOrUpdateLine は数量を既存明細に足し込む（なければ追加）。
// 合計が0以下になったら明細を消す。
func (u *TransactionUsecase) AddOrUpdateLine(ctx context.Context, caller policy.Caller, id string, in LineInput) (LineEditOutput, error) {
	const op = "TransactionUsecase.AddOrUpdateLine"

	if err := checkProductIDs([]LineInput{in}); err != nil {
		return LineEditOutput{}, e.Wrap(op, err)
	}

	var change LineChange
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := loadEditable(ctx, r.Transactions(), caller, id, policy.CanEdit)
		if err != nil {
			return err
		}

		p, err := r.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			return fromRepo(err)
		}

		idx := t.LineIndex(in.ProductID)
		if idx < 0 && in.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		var current int64
		if idx >= 0 {
			current = t.LineItems[idx].Quantity
		}

		d, err := u.engine.ValidateChange(p, current, addQty(current, in.Quantity))
		if err != nil {
			return err
		}
		change = changeOf(p.ID, d)

		lines := t.LineItems
		switch {
		case d.Remove:
			lines = append(lines[:idx:idx], lines[idx+1:]...)
		case idx >= 0:
			lines[idx].Quantity = d.Applied
		default:
			lines = append(lines, model.LineItem{ProductID: p.ID, Quantity: d.Applied})
		}

		return u.saveLines(ctx, r.Transactions(), id, lines)
	})
	if err != nil {
		return LineEditOutput{}, e.Wrap(op, err)
	}

	view, err := u.reload(ctx, id)
	if err != nil {
		return LineEditOutput{}, e.Wrap(op, err)
	}
	return LineEditOutput{Transaction: view, Change: change}, nil
}

// RemoveLine は明細を1行消す
func (u *TransactionUsecase) RemoveLine(ctx context.Context, caller policy.Caller, id, productID string) (TransactionView, error) {
	const op = "TransactionUsecase.RemoveLine"

	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := loadEditable(ctx, r.Transactions(), caller, id, policy.CanEdit)
		if err != nil {
			return err
		}
		idx := t.LineIndex(productID)
		if idx < 0 {
			return fmt.Errorf("line for product %s: %w", productID, ErrNotFound)
		}
		lines := append(t.LineItems[:idx:idx], t.LineItems[idx+1:]...)
		return u.saveLines(ctx, r.Transactions(), id, lines)
	})
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}

	view, err := u.reload(ctx, id)
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}
	return view, nil
}

// ReplaceLineItems はクライアントで編集した明細一式を1回で保存する。
// 全行を検証し直す。0以下の行は削除扱い。
func (u *TransactionUsecase) ReplaceLineItems(ctx context.Context, caller policy.Caller, id string, lines []LineInput) (TransactionEditOutput, error) {
	const op = "TransactionUsecase.ReplaceLineItems"

	if err := checkProductIDs(lines); err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}

	merged := mergeLines(lines)
	kept := make([]LineInput, 0, len(merged))
	removed := make([]LineChange, 0)
	for _, l := range merged {
		if l.Quantity <= 0 {
			removed = append(removed, LineChange{ProductID: l.ProductID, Requested: l.Quantity, Removed: true})
			continue
		}
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		return TransactionEditOutput{}, e.Wrap(op, ErrEmptyTransaction)
	}

	var changes []LineChange
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := loadEditable(ctx, r.Transactions(), caller, id, policy.CanEdit)
		if err != nil {
			return err
		}
		current := make(map[string]int64, len(t.LineItems))
		for _, li := range t.LineItems {
			current[li.ProductID] = li.Quantity
		}
		items, clamped, err := u.buildLines(ctx, r.Products(), kept, current)
		if err != nil {
			return err
		}
		changes = append(clamped, removed...)
		return u.saveLines(ctx, r.Transactions(), id, items)
	})
	if err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}

	view, err := u.reload(ctx, id)
	if err != nil {
		return TransactionEditOutput{}, e.Wrap(op, err)
	}
	return TransactionEditOutput{Transaction: view, Adjustments: changes}, nil
}

// Finalize は在庫をまとめて減らして completed にする。
// 在庫不足なら何も変えず pending のまま ErrInsufficientStock を返す。
func (u *TransactionUsecase) Finalize(ctx context.Context, caller policy.Caller, id string) (TransactionView, error) {
	const op = "TransactionUsecase.Finalize"

	var productIDs []string
	err := u.retry.do(ctx, func() error {
		return u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
			t, err := loadEditable(ctx, r.Transactions(), caller, id, policy.CanFinalize)
			if err != nil {
				return err
			}
			if len(t.LineItems) == 0 {
				return ErrEmptyTransaction
			}

			if err := u.engine.ApplyFinalization(ctx, r, t.LineItems); err != nil {
				return err
			}

			ok, err := r.Transactions().UpdateStatusIf(ctx, id, model.TransactionStatusPending, model.TransactionStatusCompleted)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInvalidTransition
			}

			productIDs = productIDs[:0]
			for _, li := range t.LineItems {
				productIDs = append(productIDs, li.ProductID)
			}
			return nil
		})
	})
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}

	u.cache.Delete(ctx, productIDs...)
	u.logger.Infof("transaction %s completed by %s", id, caller.ID)

	view, err := u.reload(ctx, id)
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}
	return view, nil
}

// Cancel は在庫に触らず cancelled にする
func (u *TransactionUsecase) Cancel(ctx context.Context, caller policy.Caller, id string) (TransactionView, error) {
	const op = "TransactionUsecase.Cancel"

	if _, err := loadEditable(ctx, u.transactions, caller, id, policy.CanCancel); err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}

	//その間にfinalize/cancelされていたら遷移できない
	ok, err := u.transactions.UpdateStatusIf(ctx, id, model.TransactionStatusPending, model.TransactionStatusCancelled)
	if err != nil {
		return TransactionView{}, e.Wrap(op, fromRepo(err))
	}
	if !ok {
		return TransactionView{}, e.Wrap(op, ErrInvalidTransition)
	}
	u.logger.Infof("transaction %s cancelled by %s", id, caller.ID)

	view, err := u.reload(ctx, id)
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}
	return view, nil
}

func (u *TransactionUsecase) Get(ctx context.Context, caller policy.Caller, id string) (TransactionView, error) {
	const op = "TransactionUsecase.Get"

	view, err := u.reload(ctx, id)
	if err != nil {
		return TransactionView{}, e.Wrap(op, err)
	}
	return view, nil
}

func (u *TransactionUsecase) List(ctx context.Context, caller policy.Caller, in ListTransactionsInput) (TransactionListOutput, error) {
	const op = "TransactionUsecase.List"

	if in.Page < 1 {
		return TransactionListOutput{}, e.Wrap(op, invalid("invalid page"))
	}
	if in.Limit < 1 || in.Limit > 100 {
		return TransactionListOutput{}, e.Wrap(op, invalid("invalid limit"))
	}
	status := model.TransactionStatus(in.Status)
	if status != "" && !status.IsValid() {
		return TransactionListOutput{}, e.Wrap(op, invalid("invalid status"))
	}

	items, total, err := u.transactions.List(ctx, repo.TransactionListFilter{
		SellerID: strings.TrimSpace(in.SellerID),
		Status:   status,
		Page:     in.Page,
		Limit:    in.Limit,
	})
	if err != nil {
		return TransactionListOutput{}, e.Wrap(op, fromRepo(err))
	}

	views, err := u.render(ctx, items)
	if err != nil {
		return TransactionListOutput{}, e.Wrap(op, err)
	}
	return TransactionListOutput{Items: views, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 明細を保存。その間に終端になっていたら遷移エラー
func (u *TransactionUsecase) saveLines(ctx context.Context, transactions repo.TransactionRepository, id string, lines []model.LineItem) error {
	ok, err := transactions.ReplaceLineItems(ctx, id, lines)
	if err != nil {
		return fromRepo(err)
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

func (u *TransactionUsecase) reload(ctx context.Context, id string) (TransactionView, error) {
	t, err := u.transactions.FindByID(ctx, id)
	if err != nil {
		return TransactionView{}, fromRepo(err)
	}
	return u.renderOne(ctx, t)
}
