package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// プロモコード。percentかamountのどちらか一方は必ず設定される。
// UsageCountは条件付きUPDATEでのみ加算し、減らさない。
type PromoCode struct {
	ID              int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string           `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Description     string           `gorm:"type:varchar(255)" json:"description"`
	DiscountPercent *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_amount,omitempty"`
	MinOrderTotal   decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0" json:"min_order_total"`
	IsActive        bool             `gorm:"not null;default:true" json:"is_active"`
	ValidFrom       *time.Time       `json:"valid_from,omitempty"`
	ValidTo         *time.Time       `json:"valid_to,omitempty"`
	UsageLimit      *int64           `json:"usage_limit,omitempty"`
	UsageCount      int64            `gorm:"not null;default:0" json:"usage_count"`
}

// コードは大文字で保存する
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
