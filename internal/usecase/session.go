package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// カート削除の取り消し用に退避する内容
type UndoEntry struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// 「今すぐ支払う」選択時にフォームへ戻す保存カード（CVVは保存しない）
type SavedCard struct {
	Number string `json:"card_number"`
	Holder string `json:"card_holder"`
	Expiry string `json:"card_expiry"`
}

// リクエストをまたぐカート状態の置き場。適用中のプロモコードは
// 注文が確定するまでDBではなくここに置き、毎回現在の小計で再評価する。
type SessionStore interface {
	GetPromoCode(ctx context.Context, userID int64) (string, error)
	SetPromoCode(ctx context.Context, userID int64, code string) error
	ClearPromoCode(ctx context.Context, userID int64) error

	PutUndo(ctx context.Context, userID int64, token string, entry UndoEntry) error
	// 取り出しと同時に削除する。復元に失敗してもトークンは消費済み。
	TakeUndo(ctx context.Context, userID int64, token string) (UndoEntry, bool, error)

	SaveCard(ctx context.Context, userID int64, card SavedCard) error
	GetCard(ctx context.Context, userID int64) (SavedCard, bool, error)
}
