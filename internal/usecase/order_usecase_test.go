package usecase

import (
	"context"
	"net/http"
	"testing"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type orderFixture struct {
	uc            *OrderUsecase
	orders        *OrderRepoMock
	orderItems    *OrderItemRepoMock
	cartItems     *CartItemRepoMock
	variants      *VariantRepoMock
	stores        *StoreRepoMock
	promos        *PromoRepoMock
	statuses      *StatusRepoMock
	history       *HistoryRepoMock
	notifications *NotificationRepoMock
	payments      *PaymentRepoMock
	audit         *AuditRepoMock
	session       *sessionFake
	publisher     *publisherFake
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:        new(OrderRepoMock),
		orderItems:    new(OrderItemRepoMock),
		cartItems:     new(CartItemRepoMock),
		variants:      new(VariantRepoMock),
		stores:        new(StoreRepoMock),
		promos:        new(PromoRepoMock),
		statuses:      new(StatusRepoMock),
		history:       new(HistoryRepoMock),
		notifications: new(NotificationRepoMock),
		payments:      new(PaymentRepoMock),
		audit:         new(AuditRepoMock),
		session:       newSessionFake(),
		publisher:     &publisherFake{},
	}

	txRepos := &TxReposStub{
		orders:        f.orders,
		orderItems:    f.orderItems,
		cartItems:     f.cartItems,
		variants:      f.variants,
		promos:        f.promos,
		statuses:      f.statuses,
		history:       f.history,
		notifications: f.notifications,
		payments:      f.payments,
	}

	f.uc = NewOrderUsecase(OrderUsecaseDeps{
		Tx:            &TxManagerMock{Repos: txRepos},
		Orders:        f.orders,
		OrderItems:    f.orderItems,
		CartItems:     f.cartItems,
		Variants:      f.variants,
		Stores:        f.stores,
		Promos:        f.promos,
		Statuses:      f.statuses,
		History:       f.history,
		Notifications: f.notifications,
		Payments:      f.payments,
		Audit:         f.audit,
		Session:       f.session,
		Tracker:       NewStatusTracker(),
		Publisher:     f.publisher,
		Logger:        zap.NewNop(),
	})
	return f
}

// decimalは指数表現が揺れるのでEqualで比較する
func eqDec(s string) interface{} {
	want := d(s)
	return mock.MatchedBy(func(v decimal.Decimal) bool { return v.Equal(want) })
}

func validForm() validator.CheckoutForm {
	return validator.CheckoutForm{
		FirstName:      "Анна",
		LastName:       "Иванова",
		Phone:          "+79991234567",
		DeliveryMethod: validator.DeliveryCourier,
		Address:        "ул. Ленина, 1",
		City:           "Москва",
		PaymentMethod:  validator.PaymentCashOnDelivery,
	}
}

func (f *orderFixture) expectProcessingStatus() {
	f.statuses.On("GetOrCreateByName", mock.Anything, model.StatusProcessing).
		Return(model.OrderStatus{ID: 1, Name: model.StatusProcessing}, nil)
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	f := newOrderFixture()

	cart := []model.CartItem{
		{ID: 1, UserID: 7, VariantID: 10, Quantity: 2, Price: d("1000")},
		{ID: 2, UserID: 7, VariantID: 11, Quantity: 1, Price: d("500")},
	}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)

	// 現在価格はスナップショットと異なる（注文は現在価格で確定する）
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Name: "Платье", Price: d("1200"), Quantity: 5}, nil)
	f.variants.On("FindByID", mock.Anything, int64(11)).
		Return(model.ProductVariant{ID: 11, Name: "Шарф", Price: d("500"), Quantity: 3}, nil)

	f.expectProcessingStatus()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(100), nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(-2)).Return(nil)
	f.variants.On("AdjustStock", mock.Anything, int64(11), int64(-1)).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil)

	// 2*1200 + 1*500 = 2900
	f.orders.On("UpdateTotals", mock.Anything, int64(100), eqDec("2900"), eqDec("0"), (*int64)(nil)).Return(nil)
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.OrderID == 100 &&
			p.Method == "Оплата при получении (наличные)" &&
			p.Status == model.PaymentStatusAwaiting &&
			p.Amount.Equal(d("2900"))
	})).Return(nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cartItems.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(2), nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.OrderID)
	assert.Equal(t, model.StatusProcessing, out.Status)
	assert.Equal(t, "2900.00", out.Total)
	assert.Equal(t, "0", out.Discount)

	f.history.AssertNumberOfCalls(t, "Create", 1)
	f.notifications.AssertNumberOfCalls(t, "Create", 1)
	f.cartItems.AssertCalled(t, "DeleteByUserID", mock.Anything, int64(7))
	assert.Len(t, f.publisher.created, 1)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()

	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Ваша корзина пуста.", he.Message)
}

func TestPlaceOrder_FormErrorsCollected(t *testing.T) {
	f := newOrderFixture()

	form := validator.CheckoutForm{
		DeliveryMethod: validator.DeliveryCourier,
		PaymentMethod:  validator.PaymentCashOnDelivery,
	}

	_, err := f.uc.PlaceOrder(context.Background(), 7, form)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Contains(t, he.Details, "Укажите имя.")
	assert.Contains(t, he.Details, "Укажите фамилию.")
	assert.Contains(t, he.Details, "Укажите телефон.")
	assert.Contains(t, he.Details, "Укажите адрес доставки.")
	assert.Contains(t, he.Details, "Укажите город доставки.")
}

func TestPlaceOrder_OutOfStockAborts(t *testing.T) {
	f := newOrderFixture()

	cart := []model.CartItem{{ID: 1, UserID: 7, VariantID: 10, Quantity: 5, Price: d("1000")}}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Name: "Платье", Price: d("1000"), Quantity: 2}, nil)

	f.expectProcessingStatus()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(100), nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(-5)).Return(repo.ErrOutOfStock)

	_, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Недостаточно товара на складе: Платье.", he.Message)

	// 注文は確定していない
	f.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	f.cartItems.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.created)
}

func TestPlaceOrder_StaleCartLineIsDropped(t *testing.T) {
	f := newOrderFixture()

	cart := []model.CartItem{{ID: 1, UserID: 7, VariantID: 10, Quantity: 1, Price: d("1000")}}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{}, repo.ErrNotFound)
	f.expectProcessingStatus()
	f.cartItems.On("DeleteByID", mock.Anything, int64(1)).Return(nil)

	_, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	f.cartItems.AssertCalled(t, "DeleteByID", mock.Anything, int64(1))
}

func TestPlaceOrder_RejectsMultipleStores(t *testing.T) {
	f := newOrderFixture()

	storeA, storeB := int64(1), int64(2)
	cart := []model.CartItem{
		{ID: 1, UserID: 7, VariantID: 10, Quantity: 1, Price: d("1000")},
		{ID: 2, UserID: 7, VariantID: 11, Quantity: 1, Price: d("500")},
	}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Price: d("1000"), Quantity: 5, StoreID: &storeA}, nil)
	f.variants.On("FindByID", mock.Anything, int64(11)).
		Return(model.ProductVariant{ID: 11, Price: d("500"), Quantity: 5, StoreID: &storeB}, nil)
	f.expectProcessingStatus()

	_, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "В корзине есть товары из нескольких бутиков. Пожалуйста, оформите отдельный заказ для каждого бутика.", he.Message)
}

func TestPlaceOrder_PromoApplied(t *testing.T) {
	f := newOrderFixture()

	f.session.promos[7] = "VIP10"
	promo := activePercentPromo("VIP10", "10")

	cart := []model.CartItem{{ID: 1, UserID: 7, VariantID: 10, Quantity: 1, Price: d("40000")}}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.promos.On("FindByCode", mock.Anything, "VIP10").Return(promo, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Name: "Пальто", Price: d("40000"), Quantity: 3}, nil)

	f.expectProcessingStatus()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(100), nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(-1)).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil)
	f.promos.On("RegisterUse", mock.Anything, int64(1)).Return(true, nil)

	promoID := int64(1)
	f.orders.On("UpdateTotals", mock.Anything, int64(100), eqDec("36000"), eqDec("4000"), &promoID).Return(nil)
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.Amount.Equal(d("36000"))
	})).Return(nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cartItems.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(1), nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	assert.NoError(t, err)
	assert.Equal(t, "36000.00", out.Total)
	assert.Equal(t, "4000.00", out.Discount)

	// セッションのプロモは消える
	assert.Empty(t, f.session.promos[7])
	if assert.Len(t, f.publisher.created, 1) {
		assert.Equal(t, "VIP10", f.publisher.created[0].PromoCode)
	}
}

func TestPlaceOrder_PromoRaceLostDropsDiscount(t *testing.T) {
	f := newOrderFixture()

	f.session.promos[7] = "VIP10"
	promo := activePercentPromo("VIP10", "10")

	cart := []model.CartItem{{ID: 1, UserID: 7, VariantID: 10, Quantity: 1, Price: d("40000")}}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.promos.On("FindByCode", mock.Anything, "VIP10").Return(promo, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Price: d("40000"), Quantity: 3}, nil)

	f.expectProcessingStatus()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(100), nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(-1)).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil)

	// 別の注文が最後の利用枠を取った
	f.promos.On("RegisterUse", mock.Anything, int64(1)).Return(false, nil)

	f.orders.On("UpdateTotals", mock.Anything, int64(100), eqDec("40000"), eqDec("0"), (*int64)(nil)).Return(nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cartItems.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(1), nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 7, validForm())

	assert.NoError(t, err)
	assert.Equal(t, "40000.00", out.Total)
	assert.Equal(t, "0", out.Discount)
}

func TestPlaceOrder_OnlinePaymentSavesCard(t *testing.T) {
	f := newOrderFixture()

	form := validForm()
	form.PaymentMethod = validator.PaymentOnline
	form.CardNumber = "4111 1111 1111 1111"
	form.CardHolder = "anna ivanova"
	form.CardExpiry = "12/39"
	form.CardCVV = "123"

	cart := []model.CartItem{{ID: 1, UserID: 7, VariantID: 10, Quantity: 1, Price: d("1000")}}
	f.cartItems.On("ListByUserID", mock.Anything, int64(7)).Return(cart, nil)
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Price: d("1000"), Quantity: 3}, nil)

	f.expectProcessingStatus()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(int64(100), nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(-1)).Return(nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).Return(nil)
	f.orders.On("UpdateTotals", mock.Anything, int64(100), eqDec("1000"), eqDec("0"), (*int64)(nil)).Return(nil)
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.Method == "Онлайн оплата картой ••••1111" && p.Status == model.PaymentStatusProcessing
	})).Return(nil)
	f.history.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.cartItems.On("DeleteByUserID", mock.Anything, int64(7)).Return(int64(1), nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 7, form)

	assert.NoError(t, err)
	assert.Equal(t, model.PaymentStatusProcessing, out.PaymentStatus)

	card, ok, _ := f.session.GetCard(context.Background(), 7)
	assert.True(t, ok)
	assert.Equal(t, "4111 1111 1111 1111", card.Number)
	assert.Equal(t, "ANNA IVANOVA", card.Holder)
}

func TestCheckoutPrefill_ReturnsSavedCard(t *testing.T) {
	f := newOrderFixture()

	out, err := f.uc.CheckoutPrefill(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, out.Card)

	f.session.cards[7] = SavedCard{Number: "4111 1111 1111 1111", Holder: "ANNA IVANOVA", Expiry: "12/39"}

	out, err = f.uc.CheckoutPrefill(context.Background(), 7)
	assert.NoError(t, err)
	if assert.NotNil(t, out.Card) {
		assert.Equal(t, "ANNA IVANOVA", out.Card.Holder)
	}
}

func TestCancelOrder_RestocksAndRecords(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 7, StatusID: 1, TotalAmount: d("2900")}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)
	f.statuses.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderStatus{ID: 1, Name: model.StatusProcessing}, nil)

	items := []model.OrderItem{
		{ID: 1, OrderID: 100, VariantID: 10, Quantity: 2, Price: d("1200")},
		{ID: 2, OrderID: 100, VariantID: 11, Quantity: 1, Price: d("500")},
	}
	f.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return(items, nil)
	f.variants.On("AdjustStock", mock.Anything, int64(10), int64(2)).Return(nil)
	f.variants.On("AdjustStock", mock.Anything, int64(11), int64(1)).Return(nil)
	f.statuses.On("GetOrCreateByName", mock.Anything, model.StatusCancelled).
		Return(model.OrderStatus{ID: 2, Name: model.StatusCancelled}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(100), int64(2)).Return(nil)
	f.history.On("Create", mock.Anything, mock.MatchedBy(func(h model.OrderStatusHistory) bool {
		return h.OrderID == 100 && h.StatusName == model.StatusCancelled
	})).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n model.OrderNotification) bool {
		return n.OldStatus == model.StatusProcessing && n.NewStatus == model.StatusCancelled
	})).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.CancelOrder(context.Background(), 7, 100)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Status)
	f.variants.AssertCalled(t, "AdjustStock", mock.Anything, int64(10), int64(2))
	assert.Len(t, f.publisher.statusChanged, 1)
}

func TestCancelOrder_BlockedByStatusKeyword(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 7, StatusID: 3}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)
	f.statuses.On("FindByID", mock.Anything, int64(3)).
		Return(model.OrderStatus{ID: 3, Name: "Доставлен"}, nil)

	_, err := f.uc.CancelOrder(context.Background(), 7, 100)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Этот заказ нельзя отменить.", he.Message)
	f.variants.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
}

// 所有チェック後〜Txの間にマネージャーが配送ステータスへ進めたケース。
// Tx内で読み直した状態で判定するので取り消しは拒否される。
func TestCancelOrder_StatusAdvancedBeforeCommit(t *testing.T) {
	f := newOrderFixture()

	pending := model.Order{ID: 100, UserID: 7, StatusID: 1}
	shipped := model.Order{ID: 100, UserID: 7, StatusID: 4}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(pending, nil).Once()
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(shipped, nil).Once()
	f.statuses.On("FindByID", mock.Anything, int64(4)).
		Return(model.OrderStatus{ID: 4, Name: "Доставлен"}, nil)

	_, err := f.uc.CancelOrder(context.Background(), 7, 100)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Этот заказ нельзя отменить.", he.Message)
	f.variants.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.statusChanged)
}

func TestCancelOrder_ForeignOrderHidden(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 42, StatusID: 1}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)

	_, err := f.uc.CancelOrder(context.Background(), 7, 100)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestRepeatOrder_SkipsUnavailable(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 7, StatusID: 1}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)

	items := []model.OrderItem{
		{ID: 1, OrderID: 100, VariantID: 10, Quantity: 2, Price: d("1200")},
		{ID: 2, OrderID: 100, VariantID: 11, Quantity: 1, Price: d("500")},
	}
	f.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return(items, nil)

	// 10は現在価格1300で在庫あり、11は消えている
	f.variants.On("FindByID", mock.Anything, int64(10)).
		Return(model.ProductVariant{ID: 10, Price: d("1300"), Quantity: 5}, nil)
	f.variants.On("FindByID", mock.Anything, int64(11)).
		Return(model.ProductVariant{}, repo.ErrNotFound)
	f.cartItems.On("Upsert", mock.Anything, int64(7), int64(10), int64(2), d("1300")).Return(nil)

	out, err := f.uc.RepeatOrder(context.Background(), 7, 100)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.Skipped)
	f.cartItems.AssertCalled(t, "Upsert", mock.Anything, int64(7), int64(10), int64(2), d("1300"))
}

func TestUpdateStatus_RecordsHistoryAndNotification(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 7, StatusID: 1}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)
	f.statuses.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderStatus{ID: 1, Name: model.StatusProcessing}, nil)
	f.statuses.On("GetOrCreateByName", mock.Anything, "Доставлен").
		Return(model.OrderStatus{ID: 4, Name: "Доставлен"}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(100), int64(4)).Return(nil)

	actorID := int64(99)
	f.history.On("Create", mock.Anything, mock.MatchedBy(func(h model.OrderStatusHistory) bool {
		return h.StatusName == "Доставлен" && h.ChangedByID != nil && *h.ChangedByID == actorID
	})).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n model.OrderNotification) bool {
		return n.UserID == 7 && n.OldStatus == model.StatusProcessing && n.NewStatus == "Доставлен"
	})).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.UpdateStatus(context.Background(), actorID, 100, UpdateStatusInput{StatusName: "Доставлен"})

	assert.NoError(t, err)
	assert.Equal(t, "Доставлен", out.Status)
	assert.Len(t, f.publisher.statusChanged, 1)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newOrderFixture()

	order := model.Order{ID: 100, UserID: 7, StatusID: 1}
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(order, nil)
	f.statuses.On("FindByID", mock.Anything, int64(1)).
		Return(model.OrderStatus{ID: 1, Name: model.StatusProcessing}, nil)

	out, err := f.uc.UpdateStatus(context.Background(), 99, 100, UpdateStatusInput{StatusName: model.StatusProcessing})

	assert.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, out.Status)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.statusChanged)
}
