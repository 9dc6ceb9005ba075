package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
	"lumiere/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderUsecase は注文の作成・照会・キャンセル・再注文を担当する。
// 作成とキャンセルは在庫・決済・履歴まで含めて単一トランザクションで行う。
type OrderUsecase struct {
	tx            repo.TransactionManager
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	cartItems     repo.CartItemRepository
	variants      repo.VariantRepository
	stores        repo.StoreRepository
	promos        repo.PromoRepository
	statuses      repo.StatusRepository
	history       repo.StatusHistoryRepository
	notifications repo.NotificationRepository
	payments      repo.PaymentRepository
	audit         repo.AuditLogRepository
	session       SessionStore
	tracker       *StatusTracker
	publisher     EventPublisher
	logger        *zap.Logger
}

type OrderUsecaseDeps struct {
	Tx            repo.TransactionManager
	Orders        repo.OrderRepository
	OrderItems    repo.OrderItemRepository
	CartItems     repo.CartItemRepository
	Variants      repo.VariantRepository
	Stores        repo.StoreRepository
	Promos        repo.PromoRepository
	Statuses      repo.StatusRepository
	History       repo.StatusHistoryRepository
	Notifications repo.NotificationRepository
	Payments      repo.PaymentRepository
	Audit         repo.AuditLogRepository
	Session       SessionStore
	Tracker       *StatusTracker
	Publisher     EventPublisher
	Logger        *zap.Logger
}

func NewOrderUsecase(d OrderUsecaseDeps) *OrderUsecase {
	return &OrderUsecase{
		tx:            d.Tx,
		orders:        d.Orders,
		orderItems:    d.OrderItems,
		cartItems:     d.CartItems,
		variants:      d.Variants,
		stores:        d.Stores,
		promos:        d.Promos,
		statuses:      d.Statuses,
		history:       d.History,
		notifications: d.Notifications,
		payments:      d.Payments,
		audit:         d.Audit,
		session:       d.Session,
		tracker:       d.Tracker,
		publisher:     d.Publisher,
		logger:        d.Logger,
	}
}

// 注文直後のレスポンス
type PlaceOrderOutput struct {
	OrderID         int64   `json:"order_id"`
	Status          string  `json:"status"`
	Total           string  `json:"total"`
	TotalDisplay    string  `json:"total_display"`
	Discount        string  `json:"discount"`
	DiscountDisplay *string `json:"discount_display"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentStatus   string  `json:"payment_status"`
}

type OrderItemResponse struct {
	ID               int64  `json:"id"`
	VariantID        int64  `json:"variant_id"`
	Name             string `json:"name"`
	Quantity         int64  `json:"quantity"`
	Price            string `json:"price"`
	PriceDisplay     string `json:"price_display"`
	LineTotal        string `json:"line_total"`
	LineTotalDisplay string `json:"line_total_display"`
}

type OrderSummaryResponse struct {
	ID              int64     `json:"id"`
	Status          string    `json:"status"`
	Total           string    `json:"total"`
	TotalDisplay    string    `json:"total_display"`
	Discount        string    `json:"discount"`
	DiscountDisplay *string   `json:"discount_display"`
	CanCancel       bool      `json:"can_cancel"`
	CreatedAt       time.Time `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderSummaryResponse `json:"orders"`
	Total  int64                  `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

type StatusHistoryResponse struct {
	StatusName string    `json:"status_name"`
	ChangedAt  time.Time `json:"changed_at"`
}

type PaymentResponse struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

type OrderDetailResponse struct {
	ID              int64                   `json:"id"`
	Status          string                  `json:"status"`
	Total           string                  `json:"total"`
	TotalDisplay    string                  `json:"total_display"`
	Discount        string                  `json:"discount"`
	DiscountDisplay *string                 `json:"discount_display"`
	StoreLabel      string                  `json:"store_label,omitempty"`
	CanCancel       bool                    `json:"can_cancel"`
	CreatedAt       time.Time               `json:"created_at"`
	Items           []OrderItemResponse     `json:"items"`
	Payment         *PaymentResponse        `json:"payment,omitempty"`
	History         []StatusHistoryResponse `json:"history"`
	Meta            json.RawMessage         `json:"meta,omitempty"`
}

type RepeatOrderOutput struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// 配送先・連絡先をCreatedMetaへJSONで保存する
type orderMeta struct {
	PlacedAt       string `json:"placed_at"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	DeliveryMethod string `json:"delivery_method"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	PickupStore    string `json:"pickup_store,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

// トランザクション中断用（ロールバック後にハンドリングする）
type staleCartItemError struct {
	cartItemID int64
}

func (e *staleCartItemError) Error() string {
	return fmt.Sprintf("cart item %d refers to a missing variant", e.cartItemID)
}

type stockShortageError struct {
	variantName string
}

func (e *stockShortageError) Error() string {
	return "insufficient stock: " + e.variantName
}

var errMultipleStores = errors.New("cart spans multiple stores")

var errNotCancellable = errors.New("order status forbids cancellation")

// 注文作成。検証→在庫引当→明細確定→割引確定→決済行→履歴・通知→カート掃除
// までを1トランザクションで行い、どこかで失敗したら全部巻き戻す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, form validator.CheckoutForm) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := time.Now()
	data, formErrs := validator.ValidateCheckout(form, now)
	if len(formErrs) > 0 {
		return PlaceOrderOutput{}, NewValidationError(http.StatusBadRequest, "Проверьте правильность заполнения формы.", formErrs)
	}

	cart, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(cart) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "Ваша корзина пуста.")
	}

	//セッションのプロモはTx内で注文小計に対して評価し直す
	var promo *model.PromoCode
	if code, serr := u.session.GetPromoCode(ctx, userID); serr == nil && code != "" {
		if p, perr := u.promos.FindByCode(ctx, code); perr == nil {
			promo = &p
		}
	}

	meta := orderMeta{
		PlacedAt:       now.Format("2006-01-02 15:04"),
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Phone:          data.Phone,
		DeliveryMethod: data.DeliveryMethod,
		Address:        data.Address,
		City:           data.City,
		Comment:        data.Comment,
	}
	if data.DeliveryMethod == validator.DeliveryPickup {
		store, serr := u.stores.FindByID(ctx, data.PickupStoreID)
		if errors.Is(serr, repo.ErrNotFound) {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "Выберите точку самовывоза.")
		}
		if serr != nil {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		meta.PickupStore = store.Label()
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var out PlaceOrderOutput
	var appliedPromoCode string

	txErr := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		status, err := r.Statuses().GetOrCreateByName(ctx, model.StatusProcessing)
		if err != nil {
			return err
		}

		//1周目：バリアント存在と店舗の単一性を確認し、確定価格を拾う
		subtotal := decimal.Zero
		prices := make(map[int64]decimal.Decimal, len(cart))
		var storeID *int64
		for _, item := range cart {
			v, err := r.Variants().FindByID(ctx, item.VariantID)
			if errors.Is(err, repo.ErrNotFound) {
				return &staleCartItemError{cartItemID: item.ID}
			}
			if err != nil {
				return err
			}
			prices[item.VariantID] = v.Price
			subtotal = subtotal.Add(v.Price.Mul(decimal.NewFromInt(item.Quantity)))

			//店舗なしの品はどの店舗とも同居できる
			if v.StoreID != nil {
				if storeID != nil && *storeID != *v.StoreID {
					return errMultipleStores
				}
				if storeID == nil {
					id := *v.StoreID
					storeID = &id
				}
			}
		}

		order := model.Order{
			UserID:         userID,
			StatusID:       status.ID,
			TotalAmount:    decimal.Zero,
			DiscountAmount: decimal.Zero,
			StoreID:        storeID,
			CreatedMeta:    string(metaJSON),
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}

		//2周目：行ロック付きで在庫を引き当てながら明細を作る
		items := make([]model.OrderItem, 0, len(cart))
		for _, item := range cart {
			if err := r.Variants().AdjustStock(ctx, item.VariantID, -item.Quantity); err != nil {
				if errors.Is(err, repo.ErrOutOfStock) {
					name := ""
					if v, verr := r.Variants().FindByID(ctx, item.VariantID); verr == nil {
						name = v.Name
					}
					return &stockShortageError{variantName: name}
				}
				return err
			}
			items = append(items, model.OrderItem{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Price:     prices[item.VariantID],
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		//割引確定。使用回数カウンタで負けたら割引なしで続行する。
		discount := decimal.Zero
		var promoCodeID *int64
		if promo != nil {
			eval := EvaluatePromo(*promo, subtotal, now)
			if eval.Reason == "" && eval.Discount.GreaterThan(decimal.Zero) {
				ok, err := r.Promos().RegisterUse(ctx, promo.ID)
				if err != nil {
					return err
				}
				if ok {
					discount = decimal.Min(eval.Discount, subtotal)
					id := promo.ID
					promoCodeID = &id
					appliedPromoCode = promo.Code
				} else {
					u.logger.Info("promo usage limit reached at checkout",
						zap.Int64("user_id", userID),
						zap.String("code", promo.Code))
				}
			}
		}
		total := decimal.Max(decimal.Zero, subtotal.Sub(discount))
		if err := r.Orders().UpdateTotals(ctx, orderID, total, discount, promoCodeID); err != nil {
			return err
		}

		method, payStatus := paymentFor(data)
		if err := r.Payments().Create(ctx, model.Payment{
			OrderID: orderID,
			Method:  method,
			Amount:  total,
			Status:  payStatus,
		}); err != nil {
			return err
		}

		statusID := status.ID
		if err := u.tracker.RecordCreation(ctx, r.History(), r.Notifications(), orderID, userID, &statusID, status.Name); err != nil {
			return err
		}

		if _, err := r.CartItems().DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		var discountDisplay *string
		if discount.GreaterThan(decimal.Zero) {
			d := "-" + FormatCurrency(discount)
			discountDisplay = &d
		}
		out = PlaceOrderOutput{
			OrderID:         orderID,
			Status:          status.Name,
			Total:           amountString(total),
			TotalDisplay:    FormatCurrency(total),
			Discount:        amountString(discount),
			DiscountDisplay: discountDisplay,
			PaymentMethod:   method,
			PaymentStatus:   payStatus,
		}
		return nil
	})

	if txErr != nil {
		return PlaceOrderOutput{}, u.placeOrderError(ctx, txErr)
	}

	if err := u.session.ClearPromoCode(ctx, userID); err != nil {
		u.logger.Warn("promo session not cleared after checkout", zap.Int64("user_id", userID), zap.Error(err))
	}
	if data.PaymentMethod == validator.PaymentOnline {
		card := SavedCard{Number: data.CardNumber, Holder: data.CardHolder, Expiry: data.CardExpiry}
		if err := u.session.SaveCard(ctx, userID, card); err != nil {
			u.logger.Warn("card not saved to session", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	u.writeAudit(ctx, &userID, model.AuditActionCreateOrder, model.AuditResourceOrder, out.OrderID, "", out)
	u.publishCreated(ctx, out, userID, appliedPromoCode)

	return out, nil
}

func (u *OrderUsecase) placeOrderError(ctx context.Context, txErr error) error {
	var stale *staleCartItemError
	if errors.As(txErr, &stale) {
		//消えたバリアントを指す行はここで掃除してから伝える
		if err := u.cartItems.DeleteByID(ctx, stale.cartItemID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			u.logger.Warn("stale cart item not removed", zap.Int64("cart_item_id", stale.cartItemID), zap.Error(err))
		}
		return NewHTTPError(http.StatusBadRequest, "Часть товаров из корзины больше недоступна и была удалена. Проверьте корзину и попробуйте снова.")
	}

	var shortage *stockShortageError
	if errors.As(txErr, &shortage) {
		msg := "Недостаточно товара на складе."
		if shortage.variantName != "" {
			msg = "Недостаточно товара на складе: " + shortage.variantName + "."
		}
		return NewHTTPError(http.StatusBadRequest, msg)
	}

	if errors.Is(txErr, errMultipleStores) {
		return NewHTTPError(http.StatusBadRequest, "В корзине есть товары из нескольких бутиков. Пожалуйста, оформите отдельный заказ для каждого бутика.")
	}

	u.logger.Error("order transaction failed", zap.Error(txErr))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

func paymentFor(data validator.CheckoutData) (method string, status string) {
	switch data.PaymentMethod {
	case validator.PaymentOnline:
		return "Онлайн оплата картой ••••" + data.CardLast4, model.PaymentStatusProcessing
	case validator.PaymentCashOnDelivery:
		return "Оплата при получении (наличные)", model.PaymentStatusAwaiting
	default:
		return "Оплата при получении (карта)", model.PaymentStatusAwaiting
	}
}

type CheckoutPrefillOutput struct {
	// 前回「オンライン決済」で使ったカード。無ければnil。
	Card *SavedCard `json:"card,omitempty"`
}

// チェックアウトフォームの事前入力。CVVは保存していないので返らない。
func (u *OrderUsecase) CheckoutPrefill(ctx context.Context, userID int64) (CheckoutPrefillOutput, error) {
	if userID <= 0 {
		return CheckoutPrefillOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	card, found, err := u.session.GetCard(ctx, userID)
	if err != nil {
		return CheckoutPrefillOutput{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	if !found {
		return CheckoutPrefillOutput{}, nil
	}
	return CheckoutPrefillOutput{Card: &card}, nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListResponse, error) {
	if userID <= 0 {
		return OrderListResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	summaries := make([]OrderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		statusName := ""
		if s, err := u.statuses.FindByID(ctx, o.StatusID); err == nil {
			statusName = s.Name
		}
		summaries = append(summaries, u.summarize(o, statusName))
	}

	return OrderListResponse{
		Orders: summaries,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

func (u *OrderUsecase) summarize(o model.Order, statusName string) OrderSummaryResponse {
	var discountDisplay *string
	if o.DiscountAmount.GreaterThan(decimal.Zero) {
		d := "-" + FormatCurrency(o.DiscountAmount)
		discountDisplay = &d
	}
	return OrderSummaryResponse{
		ID:              o.ID,
		Status:          statusName,
		Total:           amountString(o.TotalAmount),
		TotalDisplay:    FormatCurrency(o.TotalAmount),
		Discount:        amountString(o.DiscountAmount),
		DiscountDisplay: discountDisplay,
		CanCancel:       model.CanCancelStatus(statusName),
		CreatedAt:       o.CreatedAt,
	}
}

// 注文詳細。他人の注文は存在ごと隠す（404）。
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetailResponse, error) {
	if userID <= 0 {
		return OrderDetailResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := u.findOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return OrderDetailResponse{}, err
	}

	statusName := ""
	if s, err := u.statuses.FindByID(ctx, order.StatusID); err == nil {
		statusName = s.Name
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	respItems := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		name := ""
		if v, err := u.variants.FindByID(ctx, it.VariantID); err == nil {
			name = v.Name
		}
		lineTotal := it.LineTotal()
		respItems = append(respItems, OrderItemResponse{
			ID:               it.ID,
			VariantID:        it.VariantID,
			Name:             name,
			Quantity:         it.Quantity,
			Price:            amountString(it.Price),
			PriceDisplay:     FormatCurrency(it.Price),
			LineTotal:        amountString(lineTotal),
			LineTotalDisplay: FormatCurrency(lineTotal),
		})
	}

	var payment *PaymentResponse
	if p, err := u.payments.FindByOrderID(ctx, orderID); err == nil {
		payment = &PaymentResponse{
			Method:        p.Method,
			Status:        p.Status,
			Amount:        amountString(p.Amount),
			AmountDisplay: FormatCurrency(p.Amount),
		}
	}

	historyRows, err := u.history.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	historyResp := make([]StatusHistoryResponse, 0, len(historyRows))
	for _, h := range historyRows {
		historyResp = append(historyResp, StatusHistoryResponse{
			StatusName: h.StatusName,
			ChangedAt:  h.ChangedAt,
		})
	}

	storeLabel := ""
	if order.StoreID != nil {
		if s, err := u.stores.FindByID(ctx, *order.StoreID); err == nil {
			storeLabel = s.Label()
		}
	}

	summary := u.summarize(order, statusName)
	var meta json.RawMessage
	if order.CreatedMeta != "" {
		meta = json.RawMessage(order.CreatedMeta)
	}

	return OrderDetailResponse{
		ID:              order.ID,
		Status:          statusName,
		Total:           summary.Total,
		TotalDisplay:    summary.TotalDisplay,
		Discount:        summary.Discount,
		DiscountDisplay: summary.DiscountDisplay,
		StoreLabel:      storeLabel,
		CanCancel:       summary.CanCancel,
		CreatedAt:       order.CreatedAt,
		Items:           respItems,
		Payment:         payment,
		History:         historyResp,
		Meta:            meta,
	}, nil
}

// キャンセル。在庫を戻し、ステータス・履歴・通知を同一Txで更新する。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) (OrderSummaryResponse, error) {
	if userID <= 0 {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := u.findOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return OrderSummaryResponse{}, err
	}

	var oldStatus, newStatusName string
	txErr := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//可否判定はTx内で読み直した状態に対して行う
		//（判定とコミットの間に配送ステータスへ進むと取り消せてしまう）
		current, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if s, err := r.Statuses().FindByID(ctx, current.StatusID); err == nil {
			oldStatus = s.Name
		}
		if !model.CanCancelStatus(oldStatus) {
			return errNotCancellable
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Variants().AdjustStock(ctx, it.VariantID, it.Quantity); err != nil {
				//バリアントが消えていても残りは戻す
				if errors.Is(err, repo.ErrNotFound) {
					continue
				}
				return err
			}
		}

		status, err := r.Statuses().GetOrCreateByName(ctx, model.StatusCancelled)
		if err != nil {
			return err
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, status.ID); err != nil {
			return err
		}

		statusID := status.ID
		newStatusName = status.Name
		return u.tracker.Record(ctx, r.History(), r.Notifications(), StatusChange{
			OrderID:     orderID,
			UserID:      order.UserID,
			StatusID:    &statusID,
			OldStatus:   oldStatus,
			NewStatus:   status.Name,
			ChangedByID: &userID,
		})
	})
	if errors.Is(txErr, errNotCancellable) {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusBadRequest, "Этот заказ нельзя отменить.")
	}
	if txErr != nil {
		u.logger.Error("order cancellation failed", zap.Int64("order_id", orderID), zap.Error(txErr))
		return OrderSummaryResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, &userID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID, oldStatus, newStatusName)
	u.publishStatusChanged(ctx, orderID, order.UserID, oldStatus, newStatusName)

	order.UpdatedAt = time.Now()
	return u.summarize(order, newStatusName), nil
}

// 過去の注文の明細を現在価格でカートへ戻す。消えた・在庫切れの品は飛ばす。
func (u *OrderUsecase) RepeatOrder(ctx context.Context, userID int64, orderID int64) (RepeatOrderOutput, error) {
	if userID <= 0 {
		return RepeatOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if _, err := u.findOwnedOrder(ctx, userID, orderID); err != nil {
		return RepeatOrderOutput{}, err
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return RepeatOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	added, skipped := 0, 0
	for _, it := range items {
		v, err := u.variants.FindByID(ctx, it.VariantID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && v.Quantity <= 0) {
			skipped++
			continue
		}
		if err != nil {
			return RepeatOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		qty := it.Quantity
		if qty > v.Quantity {
			qty = v.Quantity
		}
		if err := u.cartItems.Upsert(ctx, userID, it.VariantID, qty, v.Price); err != nil {
			return RepeatOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		added++
	}

	msg := "Товары добавлены в корзину."
	if skipped > 0 && added > 0 {
		msg = "Часть товаров недоступна и не была добавлена в корзину."
	} else if added == 0 {
		msg = "Товары из этого заказа больше недоступны."
	}
	return RepeatOrderOutput{Added: added, Skipped: skipped, Message: msg}, nil
}

type UpdateStatusInput struct {
	StatusName string
}

// マネージャーによるステータス変更。同じラベルへの変更は何もしない。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorID int64, orderID int64, in UpdateStatusInput) (OrderSummaryResponse, error) {
	if actorID <= 0 {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	newName := in.StatusName
	if newName == "" {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderSummaryResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	oldStatus := ""
	if s, err := u.statuses.FindByID(ctx, order.StatusID); err == nil {
		oldStatus = s.Name
	}
	if oldStatus == newName {
		return u.summarize(order, oldStatus), nil
	}

	txErr := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		status, err := r.Statuses().GetOrCreateByName(ctx, newName)
		if err != nil {
			return err
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, status.ID); err != nil {
			return err
		}
		statusID := status.ID
		return u.tracker.Record(ctx, r.History(), r.Notifications(), StatusChange{
			OrderID:     orderID,
			UserID:      order.UserID,
			StatusID:    &statusID,
			OldStatus:   oldStatus,
			NewStatus:   status.Name,
			ChangedByID: &actorID,
		})
	})
	if txErr != nil {
		u.logger.Error("status update failed", zap.Int64("order_id", orderID), zap.Error(txErr))
		return OrderSummaryResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, &actorID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID, oldStatus, newName)
	u.publishStatusChanged(ctx, orderID, order.UserID, oldStatus, newName)

	return u.summarize(order, newName), nil
}

func (u *OrderUsecase) findOwnedOrder(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if order.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return order, nil
}

// 監査ログ。失敗しても本処理は失敗させない。
func (u *OrderUsecase) writeAudit(ctx context.Context, actorID *int64, action model.AuditAction, resource model.AuditResourceType, resourceID int64, before any, after any) {
	beforeJSON, _ := json.Marshal(before)
	afterJSON, _ := json.Marshal(after)
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
	}); err != nil {
		u.logger.Warn("audit log write failed", zap.String("action", string(action)), zap.Error(err))
	}
}

func (u *OrderUsecase) publishCreated(ctx context.Context, out PlaceOrderOutput, userID int64, promoCode string) {
	ev := OrderCreatedEvent{
		EventID:   uuid.NewString(),
		OrderID:   out.OrderID,
		UserID:    userID,
		Total:     out.Total,
		Discount:  out.Discount,
		PromoCode: promoCode,
		Status:    out.Status,
		Timestamp: time.Now(),
	}
	if err := u.publisher.PublishOrderCreated(ctx, ev); err != nil {
		u.logger.Warn("order created event not published", zap.Int64("order_id", out.OrderID), zap.Error(err))
	}
}

func (u *OrderUsecase) publishStatusChanged(ctx context.Context, orderID int64, userID int64, oldStatus string, newStatus string) {
	ev := OrderStatusChangedEvent{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		UserID:    userID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Timestamp: time.Now(),
	}
	if err := u.publisher.PublishOrderStatusChanged(ctx, ev); err != nil {
		u.logger.Warn("status changed event not published", zap.Int64("order_id", orderID), zap.Error(err))
	}
}
