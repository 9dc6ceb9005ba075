package usecase

import (
	"testing"
	"time"

	"lumiere/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func activePercentPromo(code string, percent string) model.PromoCode {
	return model.PromoCode{
		ID:              1,
		Code:            code,
		DiscountPercent: dp(percent),
		MinOrderTotal:   decimal.Zero,
		IsActive:        true,
	}
}

func TestEvaluatePromo_PercentDiscount(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")

	eval := EvaluatePromo(promo, d("40000"), time.Now())

	assert.Empty(t, eval.Reason)
	assert.Equal(t, "4000.00", eval.Discount.StringFixed(2))
}

func TestEvaluatePromo_PercentRounding(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")

	// 10% от 333.33 = 33.333 → 33.33
	eval := EvaluatePromo(promo, d("333.33"), time.Now())

	assert.Equal(t, "33.33", eval.Discount.StringFixed(2))
}

func TestEvaluatePromo_FixedAmountCappedBySubtotal(t *testing.T) {
	promo := model.PromoCode{
		ID:             2,
		Code:           "MINUS500",
		DiscountAmount: dp("500"),
		MinOrderTotal:  decimal.Zero,
		IsActive:       true,
	}

	eval := EvaluatePromo(promo, d("300"), time.Now())

	assert.Empty(t, eval.Reason)
	assert.Equal(t, "300.00", eval.Discount.StringFixed(2))
}

func TestEvaluatePromo_Inactive(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")
	promo.IsActive = false

	eval := EvaluatePromo(promo, d("1000"), time.Now())

	assert.Equal(t, "Промокод больше не активен.", eval.Reason)
	assert.False(t, eval.Recoverable)
	assert.True(t, eval.Discount.IsZero())
}

func TestEvaluatePromo_NotStartedYet(t *testing.T) {
	now := time.Now()
	from := now.Add(time.Hour)
	promo := activePercentPromo("VIP10", "10")
	promo.ValidFrom = &from

	eval := EvaluatePromo(promo, d("1000"), now)

	assert.Equal(t, "Промокод ещё не начал действовать.", eval.Reason)
	assert.False(t, eval.Recoverable)
}

func TestEvaluatePromo_Expired(t *testing.T) {
	now := time.Now()
	to := now.Add(-time.Hour)
	promo := activePercentPromo("VIP10", "10")
	promo.ValidTo = &to

	eval := EvaluatePromo(promo, d("1000"), now)

	assert.Equal(t, "Срок действия промокода истёк.", eval.Reason)
}

func TestEvaluatePromo_UsageLimitReached(t *testing.T) {
	limit := int64(5)
	promo := activePercentPromo("VIP10", "10")
	promo.UsageLimit = &limit
	promo.UsageCount = 5

	eval := EvaluatePromo(promo, d("1000"), time.Now())

	assert.Equal(t, "Промокод больше недоступен.", eval.Reason)
	assert.False(t, eval.Recoverable)
}

func TestEvaluatePromo_BelowMinimumIsRecoverable(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")
	promo.MinOrderTotal = d("5000")

	eval := EvaluatePromo(promo, d("4999.99"), time.Now())

	assert.Equal(t, "Минимальная сумма заказа для промокода — 5000 ₽.", eval.Reason)
	assert.True(t, eval.Recoverable)
	assert.True(t, eval.Discount.IsZero())
}

func TestEvaluatePromo_ZeroDiscount(t *testing.T) {
	promo := model.PromoCode{
		ID:            3,
		Code:          "BROKEN",
		MinOrderTotal: decimal.Zero,
		IsActive:      true,
	}

	eval := EvaluatePromo(promo, d("1000"), time.Now())

	assert.Equal(t, "Скидка не может быть применена к этой сумме.", eval.Reason)
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0", amountString(decimal.Zero))
	assert.Equal(t, "36000.00", amountString(d("36000")))
	assert.Equal(t, "99.90", amountString(d("99.9")))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "5000 ₽", FormatCurrency(d("5000")))
	assert.Equal(t, "99.9 ₽", FormatCurrency(d("99.90")))
	assert.Equal(t, "0 ₽", FormatCurrency(decimal.Zero))
}

func TestBuildCartTotals_AppliedDiscount(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")
	state := promoStateFrom(promo, EvaluatePromo(promo, d("40000"), time.Now()))

	totals := buildCartTotals(d("40000"), state)

	assert.Equal(t, "40000.00", totals.Subtotal)
	assert.Equal(t, "4000.00", totals.Discount)
	assert.Equal(t, "36000.00", totals.Total)
	assert.Equal(t, "36000 ₽", totals.TotalDisplay)
	if assert.NotNil(t, totals.DiscountDisplay) {
		assert.Equal(t, "-4000 ₽", *totals.DiscountDisplay)
	}
	if assert.NotNil(t, totals.PromoCode) {
		assert.Equal(t, "VIP10", *totals.PromoCode)
	}
}

func TestBuildCartTotals_DiscountNeverExceedsSubtotal(t *testing.T) {
	promo := model.PromoCode{
		ID:             4,
		Code:           "BIG",
		DiscountAmount: dp("10000"),
		MinOrderTotal:  decimal.Zero,
		IsActive:       true,
	}
	// 評価時点の小計は大きく、合計計算時点の小計は小さいケース
	state := promoStateFrom(promo, EvaluatePromo(promo, d("10000"), time.Now()))

	totals := buildCartTotals(d("100"), state)

	assert.Equal(t, "100.00", totals.Discount)
	assert.Equal(t, "0", totals.Total)
}

func TestBuildCartTotals_NoPromo(t *testing.T) {
	totals := buildCartTotals(d("1500"), emptyPromoState())

	assert.Equal(t, "1500.00", totals.Subtotal)
	assert.Equal(t, "0", totals.Discount)
	assert.Nil(t, totals.DiscountDisplay)
	assert.Equal(t, "1500.00", totals.Total)
	assert.Nil(t, totals.PromoCode)
}

func TestPromoStateFrom_AppliedCarriesPromoID(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")

	state := promoStateFrom(promo, EvaluatePromo(promo, d("40000"), time.Now()))

	assert.True(t, state.IsApplied)
	assert.Nil(t, state.Message)
	if assert.NotNil(t, state.PromoID()) {
		assert.Equal(t, int64(1), *state.PromoID())
	}
	assert.Equal(t, "4000.00", state.DiscountValue().StringFixed(2))
}

func TestPromoStateFrom_RecoverableKeepsMessage(t *testing.T) {
	promo := activePercentPromo("VIP10", "10")
	promo.MinOrderTotal = d("5000")

	state := promoStateFrom(promo, EvaluatePromo(promo, d("100"), time.Now()))

	assert.False(t, state.IsApplied)
	assert.True(t, state.Recoverable)
	assert.Nil(t, state.PromoID())
	if assert.NotNil(t, state.Message) {
		assert.Contains(t, *state.Message, "Минимальная сумма заказа")
	}
	if assert.NotNil(t, state.MinTotalDisplay) {
		assert.Equal(t, "5000 ₽", *state.MinTotalDisplay)
	}
}
