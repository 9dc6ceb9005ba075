package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ステータスラベルのカタログ（「В обработке」「Отменён」など）
type OrderStatus struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

// 作成時の初期ステータス
const StatusProcessing = "В обработке"

// キャンセル時のステータス
const StatusCancelled = "Отменён"

// 作成履歴のフォールバックラベル
const StatusCreatedLabel = "Создан"

// このキーワードを含むステータスの注文はキャンセル不可
var nonCancelKeywords = []string{"отмен", "достав", "выполн", "заверш", "closed", "shipp"}

// 現在のラベルからキャンセル可否を判定
func CanCancelStatus(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range nonCancelKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// 注文。明細・在庫・決済と同一トランザクションで作成され、削除はしない。
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	StatusID       int64           `gorm:"not null;index" json:"status_id"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	PromoCodeID    *int64          `json:"promo_code_id,omitempty"`
	StoreID        *int64          `json:"store_id,omitempty"`
	CreatedMeta    string          `gorm:"type:varchar(1024)" json:"created_meta"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
