package repository

import (
	"context"
	"errors"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"gorm.io/gorm"
)

type PromoGormRepository struct {
	db *gorm.DB
}

func NewPromoGormRepository(db *gorm.DB) *PromoGormRepository {
	return &PromoGormRepository{db: db}
}

func (r *PromoGormRepository) FindByCode(ctx context.Context, code string) (model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", model.NormalizePromoCode(code)).
		First(&promo).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PromoCode{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PromoCode{}, err
	}
	return promo, nil
}

func (r *PromoGormRepository) Create(ctx context.Context, promo model.PromoCode) (model.PromoCode, error) {
	promo.Code = model.NormalizePromoCode(promo.Code)
	if err := r.db.WithContext(ctx).Create(&promo).Error; err != nil {
		return model.PromoCode{}, err
	}
	return promo, nil
}

// usage_countの条件付き加算。limit到達で負けた側はfalseを受け取り、
// 呼び出し側は割引なしで注文を続行する。
func (r *PromoGormRepository) RegisterUse(ctx context.Context, promoID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PromoCode{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", promoID).
		Update("usage_count", gorm.Expr("usage_count + ?", 1))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
