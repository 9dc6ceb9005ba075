package model

import "time"

// ステータス変更ごとに注文の持ち主へ1件作成。IsRead以外は変更しない。
type OrderNotification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	OldStatus string    `gorm:"type:varchar(255)" json:"old_status"`
	NewStatus string    `gorm:"type:varchar(255)" json:"new_status"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
