package model

import "time"

// ステータス変更の追記専用ログ。更新・削除はしない。
type OrderStatusHistory struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	StatusID    *int64    `json:"status_id,omitempty"`
	StatusName  string    `gorm:"type:varchar(255)" json:"status_name"`
	ChangedByID *int64    `json:"changed_by_id,omitempty"`
	ChangedAt   time.Time `gorm:"not null;autoCreateTime" json:"changed_at"`
}
