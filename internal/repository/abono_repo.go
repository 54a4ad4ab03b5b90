package repository

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AbonoQuery struct {
	VentaID     *uuid.UUID
	CobradorID  *uuid.UUID
	Desde       *time.Time
	Hasta       *time.Time // exclusive
	VisiblePara *model.Usuario
	Offset      int
	Limit       int
}

type AbonoRepository interface {
	Create(ctx context.Context, a *model.Abono) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Abono, error)
	Update(ctx context.Context, a *model.Abono) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.Abono, error)
	List(ctx context.Context, q AbonoQuery) ([]model.Abono, int64, error)
	// CountPosteriores counts payments of the sale created strictly after t.
	CountPosteriores(ctx context.Context, ventaID uuid.UUID, t time.Time) (int64, error)
	// SumByVentas returns the paid total per sale; sales without payments are absent.
	SumByVentas(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type abonoRepo struct{ db *gorm.DB }

func NewAbonoRepository(db *gorm.DB) AbonoRepository { return &abonoRepo{db: db} }

func (r *abonoRepo) Create(ctx context.Context, a *model.Abono) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *abonoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Abono, error) {
	var a model.Abono
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *abonoRepo) Update(ctx context.Context, a *model.Abono) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *abonoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Abono{}, "id = ?", id).Error
}

func (r *abonoRepo) ListByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.Abono, error) {
	var abonos []model.Abono
	err := r.db.WithContext(ctx).
		Where("venta_id = ?", ventaID).
		Order("created_at ASC").
		Find(&abonos).Error
	return abonos, err
}

func (r *abonoRepo) List(ctx context.Context, q AbonoQuery) ([]model.Abono, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Abono{})
	if q.VentaID != nil {
		db = db.Where("abonos.venta_id = ?", *q.VentaID)
	}
	if q.CobradorID != nil {
		db = db.Where("abonos.cobrador_id = ?", *q.CobradorID)
	}
	if q.Desde != nil {
		db = db.Where("abonos.created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		db = db.Where("abonos.created_at < ?", *q.Hasta)
	}
	if q.VisiblePara != nil {
		sub := scopeVisible(r.db.WithContext(ctx).Model(&model.Venta{}).Select("id"), q.VisiblePara)
		db = db.Where("abonos.venta_id IN (?)", sub)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		db = db.Offset(q.Offset).Limit(q.Limit)
	}
	var abonos []model.Abono
	err := db.Preload("Venta").Order("abonos.created_at DESC").Find(&abonos).Error
	return abonos, total, err
}

func (r *abonoRepo) CountPosteriores(ctx context.Context, ventaID uuid.UUID, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Abono{}).
		Where("venta_id = ? AND created_at > ?", ventaID, t).
		Count(&n).Error
	return n, err
}

func (r *abonoRepo) SumByVentas(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ventaIDs))
	if len(ventaIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		VentaID uuid.UUID
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&model.Abono{}).
		Select("venta_id, COALESCE(SUM(monto), 0) AS total").
		Where("venta_id IN ?", ventaIDs).
		Group("venta_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.VentaID] = row.Total
	}
	return out, nil
}
