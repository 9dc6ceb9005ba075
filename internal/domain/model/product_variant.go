package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 販売単位（色・サイズ等の組み合わせ）。価格と在庫を持つ。
// Quantityは在庫調整リポジトリのロック付き更新以外で書き換えない。
type ProductVariant struct {
	ID            int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"price"`
	PreviousPrice *decimal.Decimal `gorm:"type:numeric(10,2)" json:"previous_price,omitempty"`
	Quantity      int64            `gorm:"not null;default:0" json:"quantity"`
	StoreID       *int64           `gorm:"index" json:"store_id,omitempty"`
	CreatedAt     time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
