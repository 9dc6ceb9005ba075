package usecase

import (
	"context"
	"time"
)

type OrderCreatedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Total     string    `json:"total"`
	Discount  string    `json:"discount"`
	PromoCode string    `json:"promo_code,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderStatusChangedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// 注文イベントの外部ミラー。送信失敗は警告どまりで、
// 注文トランザクションを失敗させてはならない。
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, ev OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, ev OrderStatusChangedEvent) error
}
