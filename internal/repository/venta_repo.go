package repository

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaQuery narrows VentaRepository.List. Nil fields do not filter.
type VentaQuery struct {
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	Tipo      *model.TipoVenta
	Estado    *model.EstadoVenta
	ClienteID *uuid.UUID
	// VisiblePara restricts the result to sales the user may see. Nil = all.
	VisiblePara *model.Usuario
	Offset      int
	Limit       int
}

type VentaRepository interface {
	NextNumero(ctx context.Context) (int64, error)
	Create(ctx context.Context, v *model.Venta) error
	// FindByID loads the sale with client, seller and line items.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// FindByIDForUpdate locks the sale row; no associations are loaded.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// Update persists the sale's own columns, never its associations.
	Update(ctx context.Context, v *model.Venta) error
	// Delete removes the sale and its line items.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error)
	// ListCreditoPendientes returns credit sales with outstanding balance, client preloaded.
	ListCreditoPendientes(ctx context.Context) ([]model.Venta, error)
	// ListGestionadasPor returns pending credit sales whose effective holder is usuarioID.
	ListGestionadasPor(ctx context.Context, usuarioID uuid.UUID) ([]model.Venta, error)
	// ListTransferidasSinGestor returns sales flagged as transferred with no holder.
	ListTransferidasSinGestor(ctx context.Context) ([]model.Venta, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) NextNumero(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('ventas_numero_seq')").Scan(&n).Error
	return n, err
}

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Vendedor").
		Preload("Detalles.Producto").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := forUpdate(r.db.WithContext(ctx)).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) Update(ctx context.Context, v *model.Venta) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error
}

func (r *ventaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("venta_id = ?", id).Delete(&model.DetalleVenta{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Venta{}, "id = ?", id).Error
}

func (r *ventaRepo) List(ctx context.Context, q VentaQuery) ([]model.Venta, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Venta{})
	if q.Desde != nil {
		db = db.Where("created_at >= ?", *q.Desde)
	}
	if q.Hasta != nil {
		db = db.Where("created_at < ?", *q.Hasta)
	}
	if q.Tipo != nil {
		db = db.Where("tipo = ?", *q.Tipo)
	}
	if q.Estado != nil {
		db = db.Where("estado = ?", *q.Estado)
	}
	if q.ClienteID != nil {
		db = db.Where("cliente_id = ?", *q.ClienteID)
	}
	if q.VisiblePara != nil {
		db = scopeVisible(db, q.VisiblePara)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ventas []model.Venta
	if q.Limit > 0 {
		db = db.Offset(q.Offset).Limit(q.Limit)
	}
	err := db.Preload("Cliente").Order("created_at DESC").Find(&ventas).Error
	return ventas, total, err
}

// scopeVisible mirrors policy.PuedeVer in SQL.
func scopeVisible(db *gorm.DB, u *model.Usuario) *gorm.DB {
	if !u.Activo {
		return db.Where("1 = 0")
	}
	switch u.Rol {
	case model.RolAdministrador:
		return db
	case model.RolVendedor:
		return db.Where(
			"(transferida = false AND vendedor_id = ?) OR (transferida = true AND (usuario_actual_id = ? OR vendedor_original_id = ?))",
			u.ID, u.ID, u.ID)
	case model.RolCobrador:
		return db.Where("transferida = false OR usuario_actual_id = ?", u.ID)
	default:
		return db.Where("1 = 0")
	}
}

func (r *ventaRepo) ListCreditoPendientes(ctx context.Context) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Where("tipo = ? AND saldo_pendiente > 0 AND estado = ?", model.VentaCredito, model.EstadoPendiente).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListGestionadasPor(ctx context.Context, usuarioID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Where("tipo = ? AND saldo_pendiente > 0 AND estado = ?", model.VentaCredito, model.EstadoPendiente).
		Where("(transferida = true AND usuario_actual_id = ?) OR (transferida = false AND vendedor_id = ?)", usuarioID, usuarioID).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListTransferidasSinGestor(ctx context.Context) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("transferida = true AND usuario_actual_id IS NULL").
		Find(&ventas).Error
	return ventas, err
}
