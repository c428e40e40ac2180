package usecase

import (
	"context"
	"time"

	"posapp/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 取引をクライアントに返す形。合計は毎回計算する
type TransactionView struct {
	ID         string                  `json:"id"`
	SellerID   string                  `json:"seller_id"`
	SellerName string                  `json:"seller_name"`
	Status     model.TransactionStatus `json:"status"`
	Items      []LineView              `json:"items"`
	Total      decimal.Decimal         `json:"total"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

type LineView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LineChange は要求と実際に入った数量の差をクライアントに伝える
type LineChange struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Applied   int64  `json:"applied"`
	Clamped   bool   `json:"clamped"`
	Removed   bool   `json:"removed"`
}

func changeOf(productID string, d QuantityDecision) LineChange {
	return LineChange{
		ProductID: productID,
		Requested: d.Requested,
		Applied:   d.Applied,
		Clamped:   d.Clamped,
		Removed:   d.Remove,
	}
}

// 現在のカタログ価格で表示用に組み立てる
func (u *TransactionUsecase) render(ctx context.Context, txs []model.Transaction) ([]TransactionView, error) {
	ids := make([]string, 0)
	seen := map[string]struct{}{}
	for _, t := range txs {
		for _, li := range t.LineItems {
			if _, ok := seen[li.ProductID]; !ok {
				seen[li.ProductID] = struct{}{}
				ids = append(ids, li.ProductID)
			}
		}
	}

	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}

	views := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		items := make([]LineView, 0, len(t.LineItems))
		for _, li := range t.LineItems {
			price := prices[li.ProductID]
			items = append(items, LineView{
				ProductID:   li.ProductID,
				ProductName: products[li.ProductID].Name,
				UnitPrice:   price,
				Quantity:    li.Quantity,
				Subtotal:    li.Subtotal(price),
			})
		}
		views = append(views, TransactionView{
			ID:         t.ID,
			SellerID:   t.SellerID,
			SellerName: t.SellerName,
			Status:     t.Status,
			Items:      items,
			Total:      t.Total(prices),
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
		})
	}
	return views, nil
}

func (u *TransactionUsecase) renderOne(ctx context.Context, t model.Transaction) (TransactionView, error) {
	views, err := u.render(ctx, []model.Transaction{t})
	if err != nil {
		return TransactionView{}, err
	}
	return views[0], nil
}
