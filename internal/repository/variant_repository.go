package repository

import (
	"context"

	"lumiere/internal/domain/model"
)

type VariantRepository interface {
	FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error)

	// 在庫調整。行ロックを取ってから増減し、結果がマイナスになるなら
	// ErrOutOfStockを返す。必ず注文トランザクションの中で呼ぶ。
	AdjustStock(ctx context.Context, variantID int64, delta int64) error
}

type StoreRepository interface {
	FindByID(ctx context.Context, storeID int64) (model.Store, error)
}
