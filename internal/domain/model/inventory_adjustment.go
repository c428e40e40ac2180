package model

import "time"

type StockAction string

const (
	StockActionIncrease StockAction = "increase"
	StockActionSet      StockAction = "set"
)

//在庫調整の履歴（finalizeによる減算は含まない）

type InventoryAdjustment struct {
	ID          string      `gorm:"type:varchar(64);primaryKey" json:"id"`
	ProductID   string      `gorm:"type:varchar(64);not null;index" json:"product_id"`
	ActorUserID string      `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`
	Action      StockAction `gorm:"type:varchar(20);not null" json:"action"`
	Amount      int64       `gorm:"not null" json:"amount"`
	Before      int64       `gorm:"not null" json:"before"`
	After       int64       `gorm:"not null" json:"after"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
