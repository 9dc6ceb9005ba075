package repository

import (
	"context"

	"lumiere/internal/domain/model"
)

type StatusRepository interface {
	FindByID(ctx context.Context, statusID int64) (model.OrderStatus, error)

	// ラベルで取得し、無ければ作る
	GetOrCreateByName(ctx context.Context, name string) (model.OrderStatus, error)
}
