package repository

import (
	"context"

	"lumiere/internal/domain/model"
)

// 追記専用
type StatusHistoryRepository interface {
	Create(ctx context.Context, h model.OrderStatusHistory) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n model.OrderNotification) error
	ListByUserID(ctx context.Context, userID int64) ([]model.OrderNotification, error)

	// 既読フラグだけを立てる。他人の通知はErrNotFound。
	MarkRead(ctx context.Context, userID int64, notificationID int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) error
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error)
}
