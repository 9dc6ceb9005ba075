package repository

import (
	"context"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)

	// 同一バリアントは数量加算。priceはスナップショットとして上書き保存する。
	Upsert(ctx context.Context, userID int64, variantID int64, addQty int64, price decimal.Decimal) error

	// 数量変更。価格もそのとき点の値へ更新する。
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, price decimal.Decimal) error

	DeleteByID(ctx context.Context, cartItemID int64) error

	// ユーザーの全明細を削除（クリア／注文確定後）
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
