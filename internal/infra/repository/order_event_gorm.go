package repository

import (
	"context"
	"errors"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"gorm.io/gorm"
)

type StatusHistoryGormRepository struct {
	db *gorm.DB
}

func NewStatusHistoryGormRepository(db *gorm.DB) *StatusHistoryGormRepository {
	return &StatusHistoryGormRepository{db: db}
}

func (r *StatusHistoryGormRepository) Create(ctx context.Context, h model.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(&h).Error
}

func (r *StatusHistoryGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	var items []model.OrderStatusHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at asc").
		Find(&items).Error; err != nil {
		return []model.OrderStatusHistory{}, err
	}
	return items, nil
}

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n model.OrderNotification) error {
	return r.db.WithContext(ctx).Create(&n).Error
}

func (r *NotificationGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.OrderNotification, error) {
	var items []model.OrderNotification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return []model.OrderNotification{}, err
	}
	return items, nil
}

// 既読フラグだけを更新。所有チェック込み。
func (r *NotificationGormRepository) MarkRead(ctx context.Context, userID int64, notificationID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) error {
	return r.db.WithContext(ctx).Create(&p).Error
}

func (r *PaymentGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}
