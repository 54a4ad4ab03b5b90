package repository

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComisionQuery struct {
	UsuarioID *uuid.UUID
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	Pagado    *bool
}

type ComisionRepository interface {
	Create(ctx context.Context, c *model.Comision) error
	List(ctx context.Context, q ComisionQuery) ([]model.Comision, error)
	DeleteByAbono(ctx context.Context, abonoID uuid.UUID) error
	DeleteByVenta(ctx context.Context, ventaID uuid.UUID) error
	// MarcarPagadas flags the given unpaid commissions as paid and returns how many changed.
	MarcarPagadas(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type comisionRepo struct{ db *gorm.DB }

func NewComisionRepository(db *gorm.DB) ComisionRepository { return &comisionRepo{db: db} }

func (r *comisionRepo) Create(ctx context.Context, c *model.Comision) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comisionRepo) List(ctx context.Context, q ComisionQuery) ([]model.Comision, error) {
	db := r.db.WithContext(ctx).Preload("Usuario")
	if q.UsuarioID != nil {
		db = db.Where("usuario_id = ?", *q.UsuarioID)
	}
	if q.Desde != nil {
		db = db.Where("created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		db = db.Where("created_at < ?", *q.Hasta)
	}
	if q.Pagado != nil {
		db = db.Where("pagado = ?", *q.Pagado)
	}
	var comisiones []model.Comision
	err := db.Order("created_at DESC").Find(&comisiones).Error
	return comisiones, err
}

func (r *comisionRepo) DeleteByAbono(ctx context.Context, abonoID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("abono_id = ?", abonoID).Delete(&model.Comision{}).Error
}

func (r *comisionRepo) DeleteByVenta(ctx context.Context, ventaID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("venta_id = ?", ventaID).Delete(&model.Comision{}).Error
}

func (r *comisionRepo) MarcarPagadas(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Comision{}).
		Where("id IN ? AND pagado = false", ids).
		Update("pagado", true)
	return res.RowsAffected, res.Error
}
