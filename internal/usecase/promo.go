package usecase

import (
	"strings"
	"time"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// 金額表示。「4000 ₽」のように末尾ゼロを落とす。
func FormatCurrency(v decimal.Decimal) string {
	s := v.StringFixed(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " ₽"
}

// JSONに載せる金額。ゼロは"0"、それ以外は2桁固定。
func amountString(v decimal.Decimal) string {
	if v.IsZero() {
		return "0"
	}
	return v.StringFixed(2)
}

type PromoEvaluation struct {
	Discount decimal.Decimal

	// 適用できない理由。空なら適用可。
	Reason string

	// trueならコードをセッションに残す（小計が増えれば有効になり得る）
	Recoverable bool
}

// プロモコードを小計と現在時刻に対して純粋に評価する。
// 丸めは2桁・四捨五入（round half up）で統一する。
func EvaluatePromo(promo model.PromoCode, subtotal decimal.Decimal, now time.Time) PromoEvaluation {
	if !promo.IsActive {
		return PromoEvaluation{Discount: decimal.Zero, Reason: "Промокод больше не активен."}
	}
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return PromoEvaluation{Discount: decimal.Zero, Reason: "Промокод ещё не начал действовать."}
	}
	if promo.ValidTo != nil && now.After(*promo.ValidTo) {
		return PromoEvaluation{Discount: decimal.Zero, Reason: "Срок действия промокода истёк."}
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return PromoEvaluation{Discount: decimal.Zero, Reason: "Промокод больше недоступен."}
	}
	if subtotal.LessThan(promo.MinOrderTotal) {
		return PromoEvaluation{
			Discount:    decimal.Zero,
			Reason:      "Минимальная сумма заказа для промокода — " + FormatCurrency(promo.MinOrderTotal) + ".",
			Recoverable: true,
		}
	}

	discount := decimal.Zero
	if promo.DiscountPercent != nil && !promo.DiscountPercent.IsZero() {
		discount = subtotal.Mul(promo.DiscountPercent.Div(decimalHundred)).Round(2)
	} else if promo.DiscountAmount != nil && !promo.DiscountAmount.IsZero() {
		discount = decimal.Min(*promo.DiscountAmount, subtotal).Round(2)
	}

	if discount.LessThanOrEqual(decimal.Zero) {
		return PromoEvaluation{Discount: decimal.Zero, Reason: "Скидка не может быть применена к этой сумме."}
	}
	return PromoEvaluation{Discount: discount}
}

// カート／チェックアウト画面に返すプロモの状態
type PromoState struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Discount        string  `json:"discount"`
	DiscountDisplay *string `json:"discount_display"`
	Message         *string `json:"message"`
	Recoverable     bool    `json:"recoverable"`
	IsApplied       bool    `json:"is_applied"`
	MinTotalDisplay *string `json:"min_total_display"`

	discount decimal.Decimal
	promoID  *int64
}

// 割引額（内部計算用）
func (s PromoState) DiscountValue() decimal.Decimal {
	return s.discount
}

// 適用中のプロモのID。未適用ならnil。
func (s PromoState) PromoID() *int64 {
	return s.promoID
}

func emptyPromoState() PromoState {
	return PromoState{Discount: "0", discount: decimal.Zero}
}

func promoStateFrom(promo model.PromoCode, eval PromoEvaluation) PromoState {
	state := PromoState{
		Code:        promo.Code,
		Description: promo.Description,
		Discount:    amountString(eval.Discount),
		Recoverable: eval.Recoverable,
		IsApplied:   eval.Reason == "" && eval.Discount.GreaterThan(decimal.Zero),
		discount:    eval.Discount,
	}
	if eval.Reason != "" {
		msg := eval.Reason
		state.Message = &msg
	}
	if eval.Discount.GreaterThan(decimal.Zero) {
		display := "-" + FormatCurrency(eval.Discount)
		state.DiscountDisplay = &display
	}
	if !promo.MinOrderTotal.IsZero() {
		display := FormatCurrency(promo.MinOrderTotal)
		state.MinTotalDisplay = &display
	}
	if state.IsApplied {
		id := promo.ID
		state.promoID = &id
	}
	return state
}

// 合計欄。discountは小計を超えない。
type CartTotals struct {
	Subtotal        string  `json:"subtotal"`
	SubtotalDisplay string  `json:"subtotal_display"`
	Discount        string  `json:"discount"`
	DiscountDisplay *string `json:"discount_display"`
	Total           string  `json:"total"`
	TotalDisplay    string  `json:"total_display"`
	PromoCode       *string `json:"promo_code"`
}

func buildCartTotals(subtotal decimal.Decimal, promoState PromoState) CartTotals {
	discount := decimal.Min(promoState.discount, subtotal)
	total := decimal.Max(decimal.Zero, subtotal.Sub(discount))

	t := CartTotals{
		Subtotal:        amountString(subtotal),
		SubtotalDisplay: FormatCurrency(subtotal),
		Discount:        amountString(discount),
		Total:           amountString(total),
		TotalDisplay:    FormatCurrency(total),
	}
	if discount.GreaterThan(decimal.Zero) {
		display := "-" + FormatCurrency(discount)
		t.DiscountDisplay = &display
	}
	if promoState.Code != "" && promoState.IsApplied {
		code := promoState.Code
		t.PromoCode = &code
	}
	return t
}
