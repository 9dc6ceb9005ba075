package repository

import (
	"context"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// 割引確定後の合計・割引額・使用プロモを書き込む
	UpdateTotals(ctx context.Context, orderID int64, total decimal.Decimal, discount decimal.Decimal, promoCodeID *int64) error

	UpdateStatus(ctx context.Context, orderID int64, statusID int64) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
