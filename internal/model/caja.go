package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type TipoCaja string

const (
	CajaEfectivo      TipoCaja = "efectivo"
	CajaNequi         TipoCaja = "nequi"
	CajaDaviplata     TipoCaja = "daviplata"
	CajaTransferencia TipoCaja = "transferencia"
)

func TiposCaja() []TipoCaja {
	return []TipoCaja{CajaEfectivo, CajaNequi, CajaDaviplata, CajaTransferencia}
}

// DireccionMovimiento is the sign of a till movement.
type DireccionMovimiento string

const (
	MovEntrada DireccionMovimiento = "entrada"
	MovSalida  DireccionMovimiento = "salida"
)

var ErrSaldoCajaInsuficiente = errors.New("saldo insuficiente en caja")

// Caja is a till. SaldoActual always equals SaldoInicial plus entradas minus salidas.
type Caja struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"not null"`
	Tipo          TipoCaja  `gorm:"type:varchar(20);not null"`
	SaldoInicial  int64     `gorm:"not null;default:0"`
	SaldoActual   int64     `gorm:"not null;default:0"`
	FechaApertura time.Time `gorm:"not null"`
}

// Aplicar moves the till balance by one movement. Salidas require enough balance.
func (c *Caja) Aplicar(dir DireccionMovimiento, monto int64) error {
	switch dir {
	case MovEntrada:
		c.SaldoActual += monto
	case MovSalida:
		if monto > c.SaldoActual {
			return ErrSaldoCajaInsuficiente
		}
		c.SaldoActual -= monto
	}
	return nil
}

// Revertir undoes a movement previously applied. It never fails: reversals may
// leave the till negative when later salidas already spent the money.
func (c *Caja) Revertir(dir DireccionMovimiento, monto int64) {
	switch dir {
	case MovEntrada:
		c.SaldoActual -= monto
	case MovSalida:
		c.SaldoActual += monto
	}
}

// MovimientoCaja is one signed entry in a till ledger.
type MovimientoCaja struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Tipo          DireccionMovimiento `gorm:"type:varchar(10);not null"`
	Monto         int64               `gorm:"not null"`
	Descripcion   string              `gorm:"not null"`
	VentaID       *uuid.UUID          `gorm:"type:uuid;index"`
	AbonoID       *uuid.UUID          `gorm:"type:uuid;index"`
	CajaDestinoID *uuid.UUID          `gorm:"type:uuid"`
	UsuarioID     *uuid.UUID          `gorm:"type:uuid"`
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_cajas → movimientos_caja).
func (MovimientoCaja) TableName() string { return "movimientos_caja" }
