package repository

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoQuery struct {
	Tipo  *model.DireccionMovimiento
	Desde *time.Time
	Hasta *time.Time // exclusive
}

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	List(ctx context.Context) ([]model.Caja, error)
	UpdateSaldo(ctx context.Context, id uuid.UUID, saldo int64) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Movements
	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	DeleteMovimiento(ctx context.Context, id uuid.UUID) error
	ListMovimientos(ctx context.Context, cajaID uuid.UUID, q MovimientoQuery) ([]model.MovimientoCaja, error)
	ListMovimientosByAbono(ctx context.Context, abonoID uuid.UUID) ([]model.MovimientoCaja, error)
	ListMovimientosByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.MovimientoCaja, error)
	CountMovimientos(ctx context.Context, cajaID uuid.UUID) (int64, error)
	// SumMovimientos returns the entrada and salida totals of a till.
	SumMovimientos(ctx context.Context, cajaID uuid.UUID) (entradas, salidas int64, err error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := forUpdate(r.db.WithContext(ctx)).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) List(ctx context.Context) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) UpdateSaldo(ctx context.Context, id uuid.UUID, saldo int64) error {
	return r.db.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ?", id).
		Update("saldo_actual", saldo).Error
}

func (r *cajaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Caja{}, "id = ?", id).Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) DeleteMovimiento(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MovimientoCaja{}, "id = ?", id).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID, q MovimientoQuery) ([]model.MovimientoCaja, error) {
	db := r.db.WithContext(ctx).Where("caja_id = ?", cajaID)
	if q.Tipo != nil {
		db = db.Where("tipo = ?", *q.Tipo)
	}
	if q.Desde != nil {
		db = db.Where("created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		db = db.Where("created_at < ?", *q.Hasta)
	}
	var movs []model.MovimientoCaja
	err := db.Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListMovimientosByAbono(ctx context.Context, abonoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("abono_id = ?", abonoID).Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListMovimientosByVenta(ctx context.Context, ventaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).Where("venta_id = ? AND abono_id IS NULL", ventaID).Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) CountMovimientos(ctx context.Context, cajaID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Where("caja_id = ? OR caja_destino_id = ?", cajaID, cajaID).
		Count(&n).Error
	return n, err
}

func (r *cajaRepo) SumMovimientos(ctx context.Context, cajaID uuid.UUID) (int64, int64, error) {
	var rows []struct {
		Tipo  model.DireccionMovimiento
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS total").
		Where("caja_id = ?", cajaID).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var entradas, salidas int64
	for _, row := range rows {
		switch row.Tipo {
		case model.MovEntrada:
			entradas = row.Total
		case model.MovSalida:
			salidas = row.Total
		}
	}
	return entradas, salidas, nil
}
