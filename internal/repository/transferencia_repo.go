package repository

import (
	"context"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferenciaRepository interface {
	Create(ctx context.Context, t *model.TransferenciaVenta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TransferenciaVenta, error)
	// Latest returns the most recent record of the sale or ErrNotFound.
	Latest(ctx context.Context, ventaID uuid.UUID) (*model.TransferenciaVenta, error)
	CountByVenta(ctx context.Context, ventaID uuid.UUID) (int64, error)
	// ListByVenta returns the custody history, oldest first, with users preloaded.
	ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.TransferenciaVenta, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type transferenciaRepo struct{ db *gorm.DB }

func NewTransferenciaRepository(db *gorm.DB) TransferenciaRepository {
	return &transferenciaRepo{db: db}
}

func (r *transferenciaRepo) Create(ctx context.Context, t *model.TransferenciaVenta) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *transferenciaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TransferenciaVenta, error) {
	var t model.TransferenciaVenta
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transferenciaRepo) Latest(ctx context.Context, ventaID uuid.UUID) (*model.TransferenciaVenta, error) {
	var t model.TransferenciaVenta
	err := r.db.WithContext(ctx).
		Where("venta_id = ?", ventaID).
		Order("created_at DESC").
		First(&t).Error
	return &t, err
}

func (r *transferenciaRepo) CountByVenta(ctx context.Context, ventaID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TransferenciaVenta{}).
		Where("venta_id = ?", ventaID).
		Count(&n).Error
	return n, err
}

func (r *transferenciaRepo) ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.TransferenciaVenta, error) {
	var ts []model.TransferenciaVenta
	err := r.db.WithContext(ctx).
		Preload("UsuarioOrigen").
		Preload("UsuarioDestino").
		Preload("RealizadaPor").
		Where("venta_id = ?", ventaID).
		Order("created_at ASC").
		Find(&ts).Error
	return ts, err
}

func (r *transferenciaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TransferenciaVenta{}, "id = ?", id).Error
}
