package repository

import (
	"context"

	"lumiere/internal/domain/model"
)

type PromoRepository interface {
	// 大文字小文字を区別しない検索
	FindByCode(ctx context.Context, code string) (model.PromoCode, error)

	Create(ctx context.Context, promo model.PromoCode) (model.PromoCode, error)

	// usage_countを条件付きで+1する。usage_limit到達で負けた側はfalse。
	// アプリ内のread-modify-writeは使わない（同時チェックアウトで更新が消えるため）。
	RegisterUse(ctx context.Context, promoID int64) (bool, error)
}
