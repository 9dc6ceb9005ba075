package repository

import (
	"context"
	"errors"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"gorm.io/gorm"
)

type StatusGormRepository struct {
	db *gorm.DB
}

func NewStatusGormRepository(db *gorm.DB) *StatusGormRepository {
	return &StatusGormRepository{db: db}
}

func (r *StatusGormRepository) FindByID(ctx context.Context, statusID int64) (model.OrderStatus, error) {
	var s model.OrderStatus
	err := r.db.WithContext(ctx).Where("id = ?", statusID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderStatus{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderStatus{}, err
	}
	return s, nil
}

// ラベルで探す→無ければ作る
func (r *StatusGormRepository) GetOrCreateByName(ctx context.Context, name string) (model.OrderStatus, error) {
	var s model.OrderStatus

	err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderStatus{}, err
	}

	s = model.OrderStatus{Name: name}
	if createErr := r.db.WithContext(ctx).Create(&s).Error; createErr != nil {
		//競合したらもう一度探す
		retryErr := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error
		if retryErr == nil {
			return s, nil
		}
		return model.OrderStatus{}, createErr
	}
	return s, nil
}
