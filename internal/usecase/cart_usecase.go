package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// 小計は必ずスナップショット価格で計算する（カート滞留中の値上げに影響されない）。
type CartUsecase struct {
	cartItems repo.CartItemRepository
	variants  repo.VariantRepository
	promos    repo.PromoRepository
	session   SessionStore
	logger    *zap.Logger
}

func NewCartUsecase(
	cartItems repo.CartItemRepository,
	variants repo.VariantRepository,
	promos repo.PromoRepository,
	session SessionStore,
	logger *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		cartItems: cartItems,
		variants:  variants,
		promos:    promos,
		session:   session,
		logger:    logger,
	}
}

type CartItemResponse struct {
	ID               int64  `json:"id"`
	VariantID        int64  `json:"variant_id"`
	Name             string `json:"name"`
	Price            string `json:"price"`
	PriceDisplay     string `json:"price_display"`
	Quantity         int64  `json:"quantity"`
	LineTotal        string `json:"line_total"`
	LineTotalDisplay string `json:"line_total_display"`
}

type CartResponse struct {
	Items  []CartItemResponse `json:"items"`
	Totals CartTotals         `json:"totals"`
	Promo  PromoState         `json:"promo"`

	// 削除直後のみ設定される
	UndoToken string `json:"undo_token,omitempty"`
}

type AddCartInput struct {
	VariantID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

type ApplyPromoInput struct {
	Code   string
	Intent string // "apply" | "clear"
}

// プロモ適用の結果。StatusはHTTPステータス（200適用/202保留/400/404）。
type ApplyPromoOutput struct {
	Status  int        `json:"-"`
	Message string     `json:"message"`
	Totals  CartTotals `json:"totals"`
	Promo   PromoState `json:"promo"`
}

// カート取得
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// カート追加（同一バリアントは数量加算、価格は追加時点で取り直す）
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.VariantID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	v, err := u.variants.FindByID(ctx, in.VariantID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Вариант товара не найден.")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//既存数量と合わせて在庫を超えないか
	items, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	var existingQty int64 = 0
	for _, it := range items {
		if it.VariantID == in.VariantID {
			existingQty = it.Quantity
			break
		}
	}
	if existingQty+in.Quantity > v.Quantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Недостаточно товара на складе.")
	}

	if err := u.cartItems.Upsert(ctx, userID, in.VariantID, in.Quantity, v.Price); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。qty<=0は行削除。価格はそのとき点の値へ取り直す。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItems.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if in.Quantity <= 0 {
		if err := u.cartItems.DeleteByID(ctx, cartItemID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
			}
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.buildCartResponse(ctx, userID)
	}

	item, err := u.cartItems.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	v, err := u.variants.FindByID(ctx, item.VariantID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Вариант товара не найден.")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > v.Quantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Недостаточно товара на складе.")
	}

	if err := u.cartItems.UpdateQuantity(ctx, cartItemID, in.Quantity, v.Price); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除。ワンショットの取り消しトークンを発行する。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	owned, err := u.cartItems.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItems.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token := uuid.NewString()
	entry := UndoEntry{
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		Price:     item.Price,
	}
	if err := u.session.PutUndo(ctx, userID, token, entry); err != nil {
		//取り消しはおまけ機能なので失敗しても削除は続ける
		u.logger.Warn("cart undo token not stored", zap.Int64("user_id", userID), zap.Error(err))
		token = ""
	}

	if err := u.cartItems.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out, err := u.buildCartResponse(ctx, userID)
	if err != nil {
		return CartResponse{}, err
	}
	out.UndoToken = token
	return out, nil
}

// 削除の取り消し。トークンは成否に関わらず消費する。
func (u *CartUsecase) UndoRemove(ctx context.Context, userID int64, token string) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(token) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "missing token")
	}

	entry, found, err := u.session.TakeUndo(ctx, userID, token)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	if !found {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Истекло время на отмену.")
	}

	if _, err := u.variants.FindByID(ctx, entry.VariantID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "Не удалось вернуть товар.")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	qty := entry.Quantity
	if qty < 1 {
		qty = 1
	}
	if err := u.cartItems.Upsert(ctx, userID, entry.VariantID, qty, entry.Price); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cleared, err := u.cartItems.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cleared, nil
}

// プロモコード適用／解除。
// 適用200 / 最低額未満で保留202 / 不明404 / その他の不適用400。
func (u *CartUsecase) ApplyPromo(ctx context.Context, userID int64, in ApplyPromoInput) (ApplyPromoOutput, error) {
	if userID <= 0 {
		return ApplyPromoOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	subtotal, err := u.cartSubtotal(ctx, userID)
	if err != nil {
		return ApplyPromoOutput{}, err
	}

	if in.Intent == "clear" {
		if err := u.session.ClearPromoCode(ctx, userID); err != nil {
			return ApplyPromoOutput{}, NewHTTPError(http.StatusInternalServerError, "session error")
		}
		return u.promoRespond(ctx, userID, subtotal, http.StatusOK, "Промокод удалён.")
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return ApplyPromoOutput{}, NewHTTPError(http.StatusBadRequest, "Введите промокод.")
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		_ = u.session.ClearPromoCode(ctx, userID)
		return ApplyPromoOutput{}, NewHTTPError(http.StatusBadRequest, "Добавьте товары в корзину, чтобы применить промокод.")
	}

	promo, err := u.promos.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		_ = u.session.ClearPromoCode(ctx, userID)
		return ApplyPromoOutput{}, NewHTTPError(http.StatusNotFound, "Промокод не найден.")
	}
	if err != nil {
		return ApplyPromoOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	eval := EvaluatePromo(promo, subtotal, time.Now())
	if eval.Reason != "" && !eval.Recoverable {
		_ = u.session.ClearPromoCode(ctx, userID)
		return ApplyPromoOutput{}, NewHTTPError(http.StatusBadRequest, eval.Reason)
	}

	if err := u.session.SetPromoCode(ctx, userID, promo.Code); err != nil {
		return ApplyPromoOutput{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}

	if eval.Reason != "" {
		//最低額未満：保存はするが未適用
		return u.promoRespond(ctx, userID, subtotal, http.StatusAccepted, eval.Reason)
	}
	return u.promoRespond(ctx, userID, subtotal, http.StatusOK, "Промокод "+promo.Code+" применён.")
}

func (u *CartUsecase) promoRespond(ctx context.Context, userID int64, subtotal decimal.Decimal, status int, message string) (ApplyPromoOutput, error) {
	state, err := u.resolvePromo(ctx, userID, subtotal)
	if err != nil {
		return ApplyPromoOutput{}, err
	}
	return ApplyPromoOutput{
		Status:  status,
		Message: message,
		Totals:  buildCartTotals(subtotal, state),
		Promo:   state,
	}, nil
}

// セッションに保存されたコードを現在の小計で再評価する。
// コードが見つからないときだけセッションから消す。
func (u *CartUsecase) resolvePromo(ctx context.Context, userID int64, subtotal decimal.Decimal) (PromoState, error) {
	code, err := u.session.GetPromoCode(ctx, userID)
	if err != nil {
		return PromoState{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	if code == "" {
		return emptyPromoState(), nil
	}

	promo, err := u.promos.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		_ = u.session.ClearPromoCode(ctx, userID)
		state := emptyPromoState()
		state.Code = model.NormalizePromoCode(code)
		msg := "Промокод не найден."
		state.Message = &msg
		return state, nil
	}
	if err != nil {
		return PromoState{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return promoStateFrom(promo, EvaluatePromo(promo, subtotal, time.Now())), nil
}

func (u *CartUsecase) cartSubtotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	items, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	return subtotal, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	items, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	subtotal := decimal.Zero

	for _, it := range items {
		name := ""
		if v, err := u.variants.FindByID(ctx, it.VariantID); err == nil {
			name = v.Name
		}

		lineTotal := it.LineTotal()
		subtotal = subtotal.Add(lineTotal)

		respItems = append(respItems, CartItemResponse{
			ID:               it.ID,
			VariantID:        it.VariantID,
			Name:             name,
			Price:            amountString(it.Price),
			PriceDisplay:     FormatCurrency(it.Price),
			Quantity:         it.Quantity,
			LineTotal:        amountString(lineTotal),
			LineTotalDisplay: FormatCurrency(lineTotal),
		})
	}

	state, err := u.resolvePromo(ctx, userID, subtotal)
	if err != nil {
		return CartResponse{}, err
	}

	return CartResponse{
		Items:  respItems,
		Totals: buildCartTotals(subtotal, state),
		Promo:  state,
	}, nil
}
