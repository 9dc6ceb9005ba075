package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 決済ステータス（実ゲートウェイ連携はしない）
const (
	PaymentStatusProcessing = "В обработке"
	PaymentStatusAwaiting   = "Ожидает оплаты"
)

// 注文1件につき1行。Amountは割引後の注文合計と等しい。
type Payment struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	Method    string          `gorm:"type:varchar(100);not null" json:"method"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status    string          `gorm:"type:varchar(100);not null" json:"status"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
