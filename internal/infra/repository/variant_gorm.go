package repository

import (
	"context"
	"errors"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

func (r *VariantGormRepository) FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Where("id = ?", variantID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

// 在庫数の変更を検算する。負になる変更はErrOutOfStockで拒否する。
func applyStockDelta(current int64, delta int64) (int64, error) {
	next := current + delta
	if next < 0 {
		return 0, repo.ErrOutOfStock
	}
	return next, nil
}

// 在庫調整。行をFOR UPDATEでロックしてから現在値を読む。
// 同時チェックアウトが両方「在庫あり」を見て売り越すのを防ぐ。
func (r *VariantGormRepository) AdjustStock(ctx context.Context, variantID int64, delta int64) error {
	var v model.ProductVariant

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", variantID).
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if err != nil {
		return err
	}

	next, err := applyStockDelta(v.Quantity, delta)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Update("quantity", next)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type StoreGormRepository struct {
	db *gorm.DB
}

func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}
