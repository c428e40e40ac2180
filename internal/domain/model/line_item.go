package model

import "github.com/shopspring/decimal"

// 取引の明細。(transaction_id, product_id) で一意
type LineItem struct {
	TransactionID string `gorm:"type:varchar(64);primaryKey" json:"-"`
	ProductID     string `gorm:"type:varchar(64);primaryKey;index" json:"product_id"`
	Position      int    `gorm:"not null" json:"position"`
	Quantity      int64  `gorm:"not null;check:chk_line_items_quantity_positive,quantity >= 1" json:"quantity"`
}

func (li LineItem) Subtotal(unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(li.Quantity))
}
