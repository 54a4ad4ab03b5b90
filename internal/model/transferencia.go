package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferenciaVenta is one custody hop of a credit sale. The latest record of a
// sale defines its holder and is the only one that can be reverted.
type TransferenciaVenta struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID          uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioOrigenID  uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioDestinoID uuid.UUID `gorm:"type:uuid;not null;index"`
	RealizadaPorID   uuid.UUID `gorm:"type:uuid;not null"`
	Motivo           string
	CreatedAt        time.Time `gorm:"index"`

	UsuarioOrigen  *Usuario `gorm:"foreignKey:UsuarioOrigenID"`
	UsuarioDestino *Usuario `gorm:"foreignKey:UsuarioDestinoID"`
	RealizadaPor   *Usuario `gorm:"foreignKey:RealizadaPorID"`
}

// TableName overrides GORM's default pluralization.
func (TransferenciaVenta) TableName() string { return "transferencias_venta" }
