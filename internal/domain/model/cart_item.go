package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。(user, variant)の組で一意。
// Priceは追加時点のスナップショット。追加・数量変更時に最新価格へ更新される。
type CartItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64           `gorm:"not null;index;uniqueIndex:idx_cart_user_variant" json:"user_id"`
	VariantID int64           `gorm:"not null;index;uniqueIndex:idx_cart_user_variant" json:"variant_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細合計（スナップショット価格 × 数量）
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
