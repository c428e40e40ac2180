package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// 終端状態（completed / cancelled）からは遷移しない
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

type Transaction struct {
	ID         string            `gorm:"type:varchar(64);primaryKey" json:"id"`
	SellerID   string            `gorm:"type:varchar(64);not null;index" json:"seller_id"`
	SellerName string            `gorm:"type:varchar(255);not null" json:"seller_name"`
	Status     TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	LineItems  []LineItem        `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt  time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品IDに一致する明細の位置。なければ -1
func (t *Transaction) LineIndex(productID string) int {
	for i, li := range t.LineItems {
		if li.ProductID == productID {
			return i
		}
	}
	return -1
}

// 合計は保存しない。明細 × 現在価格から毎回出す。
// prices にない商品は 0 円として扱う。
func (t *Transaction) Total(prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, li := range t.LineItems {
		total = total.Add(li.Subtotal(prices[li.ProductID]))
	}
	return total
}
