package model

import (
	"time"

	"github.com/google/uuid"
)

// Abono is a payment against a credit sale.
type Abono struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Monto      int64     `gorm:"not null"`
	CobradorID uuid.UUID `gorm:"type:uuid;not null;index"`
	CajaID     uuid.UUID `gorm:"type:uuid;not null"`
	Notas      *string
	CreatedAt  time.Time `gorm:"index"`

	Venta    *Venta   `gorm:"foreignKey:VentaID"`
	Cobrador *Usuario `gorm:"foreignKey:CobradorID"`
}
