package repository

import (
	"context"

	repo "lumiere/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
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

func (r *txReposGorm) Orders() repo.OrderRepository                { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository        { return r.orderItems }
func (r *txReposGorm) CartItems() repo.CartItemRepository          { return r.cartItems }
func (r *txReposGorm) Variants() repo.VariantRepository            { return r.variants }
func (r *txReposGorm) Promos() repo.PromoRepository                { return r.promos }
func (r *txReposGorm) Statuses() repo.StatusRepository             { return r.statuses }
func (r *txReposGorm) History() repo.StatusHistoryRepository       { return r.history }
func (r *txReposGorm) Notifications() repo.NotificationRepository  { return r.notifications }
func (r *txReposGorm) Payments() repo.PaymentRepository            { return r.payments }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			cartItems:     NewCartItemGormRepository(tx),
			variants:      NewVariantGormRepository(tx),
			promos:        NewPromoGormRepository(tx),
			statuses:      NewStatusGormRepository(tx),
			history:       NewStatusHistoryGormRepository(tx),
			notifications: NewNotificationGormRepository(tx),
			payments:      NewPaymentGormRepository(tx),
		}
		return fn(r)
	})
}
