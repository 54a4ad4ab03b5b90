package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type TipoVenta string

const (
	VentaContado TipoVenta = "contado"
	VentaCredito TipoVenta = "credito"
)

type EstadoVenta string

const (
	EstadoPendiente EstadoVenta = "pendiente"
	EstadoPagado    EstadoVenta = "pagado"
)

// Venta is a sale. Money fields are whole currency units.
//
// Custody: while Transferida is false the account belongs to VendedorID and
// UsuarioActualID is nil. The first transfer snapshots VendedorOriginalID and
// from then on UsuarioActualID names the holder.
type Venta struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero         int64       `gorm:"uniqueIndex;not null"`
	ClienteID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	VendedorID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	Total          int64       `gorm:"not null"`
	Tipo           TipoVenta   `gorm:"type:varchar(10);not null"`
	SaldoPendiente int64       `gorm:"not null;default:0"`
	Estado         EstadoVenta `gorm:"type:varchar(15);not null;default:'pendiente'"`
	CreatedAt      time.Time

	Transferida        bool       `gorm:"not null;default:false"`
	VendedorOriginalID *uuid.UUID `gorm:"type:uuid"`
	UsuarioActualID    *uuid.UUID `gorm:"type:uuid;index"`
	FechaTransferencia *time.Time

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Vendedor *Usuario       `gorm:"foreignKey:VendedorID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
}

type DetalleVenta struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID `gorm:"type:uuid;not null"`
	Cantidad       int       `gorm:"not null"`
	PrecioUnitario int64     `gorm:"not null"`
	Subtotal       int64     `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName keeps the plural used across the schema (detalle_ventas → detalles_venta).
func (DetalleVenta) TableName() string { return "detalles_venta" }

var (
	ErrAbonoNoPositivo    = errors.New("el monto del abono debe ser mayor a cero")
	ErrAbonoExcedeSaldo   = errors.New("el monto del abono excede el saldo pendiente")
	ErrVentaNoEsCredito   = errors.New("la venta no es a credito")
	ErrVentaInconsistente = errors.New("venta en estado inconsistente")
)

func (v *Venta) EsCredito() bool { return v.Tipo == VentaCredito }

// GestorID is the effective holder: the current custodian after a transfer,
// the original seller otherwise.
func (v *Venta) GestorID() uuid.UUID {
	if v.Transferida && v.UsuarioActualID != nil {
		return *v.UsuarioActualID
	}
	return v.VendedorID
}

// IniciarSaldo sets balance and status for a freshly created sale.
func (v *Venta) IniciarSaldo() {
	switch v.Tipo {
	case VentaCredito:
		v.SaldoPendiente = v.Total
		v.Estado = EstadoPendiente
		if v.Total == 0 {
			v.Estado = EstadoPagado
		}
	case VentaContado:
		v.SaldoPendiente = 0
		v.Estado = EstadoPagado
	}
}

// AplicarAbono decrements the outstanding balance. Overpayment is rejected, never clamped.
func (v *Venta) AplicarAbono(monto int64) error {
	if !v.EsCredito() {
		return ErrVentaNoEsCredito
	}
	if monto <= 0 {
		return ErrAbonoNoPositivo
	}
	if monto > v.SaldoPendiente {
		return ErrAbonoExcedeSaldo
	}
	v.SaldoPendiente -= monto
	v.derivarEstado()
	return nil
}

// ReemplazarAbono swaps a previously applied amount for a new one.
// The ceiling is the current balance plus the amount being replaced.
func (v *Venta) ReemplazarAbono(anterior, nuevo int64) error {
	if nuevo <= 0 {
		return ErrAbonoNoPositivo
	}
	if nuevo > v.SaldoPendiente+anterior {
		return ErrAbonoExcedeSaldo
	}
	v.SaldoPendiente -= nuevo - anterior
	v.derivarEstado()
	return nil
}

// RevertirAbono is the inverse of AplicarAbono.
func (v *Venta) RevertirAbono(monto int64) {
	v.SaldoPendiente += monto
	v.Estado = EstadoPendiente
}

func (v *Venta) derivarEstado() {
	if v.SaldoPendiente <= 0 {
		v.SaldoPendiente = 0
		v.Estado = EstadoPagado
		return
	}
	v.Estado = EstadoPendiente
}

// Validar checks the balance and custody invariants.
func (v *Venta) Validar() error {
	switch v.Tipo {
	case VentaContado:
		if v.SaldoPendiente != 0 || v.Estado != EstadoPagado {
			return ErrVentaInconsistente
		}
	case VentaCredito:
		if v.SaldoPendiente < 0 || v.SaldoPendiente > v.Total {
			return ErrVentaInconsistente
		}
		if v.SaldoPendiente == 0 && v.Estado != EstadoPagado {
			return ErrVentaInconsistente
		}
	default:
		return ErrVentaInconsistente
	}
	if !v.Transferida && v.UsuarioActualID != nil {
		return ErrVentaInconsistente
	}
	return nil
}
