package model

import (
	"time"

	"github.com/google/uuid"
)

// Comision is earned by the seller on a sale and by the collector on a payment.
type Comision struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	MontoBase     int64      `gorm:"not null"`
	Porcentaje    int        `gorm:"not null"`
	MontoComision int64      `gorm:"not null"`
	Periodo       string     `gorm:"type:varchar(15);not null"`
	Pagado        bool       `gorm:"not null;default:false"`
	VentaID       *uuid.UUID `gorm:"type:uuid;index"`
	AbonoID       *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time  `gorm:"index"`

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}
