package usecase

import (
	"context"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks
// =====================

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) Upsert(ctx context.Context, userID int64, variantID int64, addQty int64, price decimal.Decimal) error {
	args := m.Called(ctx, userID, variantID, addQty, price)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64, price decimal.Decimal) error {
	args := m.Called(ctx, cartItemID, qty, price)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) AdjustStock(ctx context.Context, variantID int64, delta int64) error {
	args := m.Called(ctx, variantID, delta)
	return args.Error(0)
}

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

type PromoRepoMock struct{ mock.Mock }

func (m *PromoRepoMock) FindByCode(ctx context.Context, code string) (model.PromoCode, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.PromoCode)
	return p, args.Error(1)
}

func (m *PromoRepoMock) Create(ctx context.Context, promo model.PromoCode) (model.PromoCode, error) {
	panic("not used in these tests")
}

func (m *PromoRepoMock) RegisterUse(ctx context.Context, promoID int64) (bool, error) {
	args := m.Called(ctx, promoID)
	return args.Bool(0), args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateTotals(ctx context.Context, orderID int64, total decimal.Decimal, discount decimal.Decimal, promoCodeID *int64) error {
	args := m.Called(ctx, orderID, total, discount, promoCodeID)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, statusID int64) error {
	args := m.Called(ctx, orderID, statusID)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type StatusRepoMock struct{ mock.Mock }

func (m *StatusRepoMock) FindByID(ctx context.Context, statusID int64) (model.OrderStatus, error) {
	args := m.Called(ctx, statusID)
	s, _ := args.Get(0).(model.OrderStatus)
	return s, args.Error(1)
}

func (m *StatusRepoMock) GetOrCreateByName(ctx context.Context, name string) (model.OrderStatus, error) {
	args := m.Called(ctx, name)
	s, _ := args.Get(0).(model.OrderStatus)
	return s, args.Error(1)
}

type HistoryRepoMock struct{ mock.Mock }

func (m *HistoryRepoMock) Create(ctx context.Context, h model.OrderStatusHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *HistoryRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	rows, _ := args.Get(0).([]model.OrderStatusHistory)
	return rows, args.Error(1)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, n model.OrderNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.OrderNotification, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]model.OrderNotification)
	return rows, args.Error(1)
}

func (m *NotificationRepoMock) MarkRead(ctx context.Context, userID int64, notificationID int64) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, p model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PaymentRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// =====================
// TxManager / TxRepos
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxReposStub struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	cartItems     repo.CartItemRepository
	variants      repo.VariantRepository
	promos        repo.PromoRepository
	statuses      repo.StatusRepository
	history       repo.StatusHistoryRepository
	notifications repo.NotificationRepository
	payments      repo.PaymentRepository
}

func (r *TxReposStub) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposStub) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposStub) CartItems() repo.CartItemRepository         { return r.cartItems }
func (r *TxReposStub) Variants() repo.VariantRepository           { return r.variants }
func (r *TxReposStub) Promos() repo.PromoRepository               { return r.promos }
func (r *TxReposStub) Statuses() repo.StatusRepository            { return r.statuses }
func (r *TxReposStub) History() repo.StatusHistoryRepository      { return r.history }
func (r *TxReposStub) Notifications() repo.NotificationRepository { return r.notifications }
func (r *TxReposStub) Payments() repo.PaymentRepository           { return r.payments }

// =====================
// Session / Publisher fakes
// =====================

// sessionFake はSessionStoreの素朴なインメモリ実装
type sessionFake struct {
	promos map[int64]string
	undos  map[string]UndoEntry
	cards  map[int64]SavedCard
}

func newSessionFake() *sessionFake {
	return &sessionFake{
		promos: make(map[int64]string),
		undos:  make(map[string]UndoEntry),
		cards:  make(map[int64]SavedCard),
	}
}

func (s *sessionFake) GetPromoCode(_ context.Context, userID int64) (string, error) {
	return s.promos[userID], nil
}

func (s *sessionFake) SetPromoCode(_ context.Context, userID int64, code string) error {
	s.promos[userID] = code
	return nil
}

func (s *sessionFake) ClearPromoCode(_ context.Context, userID int64) error {
	delete(s.promos, userID)
	return nil
}

func (s *sessionFake) PutUndo(_ context.Context, _ int64, token string, entry UndoEntry) error {
	s.undos[token] = entry
	return nil
}

func (s *sessionFake) TakeUndo(_ context.Context, _ int64, token string) (UndoEntry, bool, error) {
	entry, ok := s.undos[token]
	if ok {
		delete(s.undos, token)
	}
	return entry, ok, nil
}

func (s *sessionFake) SaveCard(_ context.Context, userID int64, card SavedCard) error {
	s.cards[userID] = card
	return nil
}

func (s *sessionFake) GetCard(_ context.Context, userID int64) (SavedCard, bool, error) {
	card, ok := s.cards[userID]
	return card, ok, nil
}

// publisherFake は発行されたイベントを記録するだけ
type publisherFake struct {
	created       []OrderCreatedEvent
	statusChanged []OrderStatusChangedEvent
}

func (p *publisherFake) PublishOrderCreated(_ context.Context, ev OrderCreatedEvent) error {
	p.created = append(p.created, ev)
	return nil
}

func (p *publisherFake) PublishOrderStatusChanged(_ context.Context, ev OrderStatusChangedEvent) error {
	p.statusChanged = append(p.statusChanged, ev)
	return nil
}
