package model

import (
	"time"

	"github.com/google/uuid"
)

// Producto is an inventory item. Prices are whole currency units.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo       string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioCompra *int64
	PrecioVenta  int64  `gorm:"not null"`
	Stock        int    `gorm:"not null;default:0"`
	StockMinimo  int    `gorm:"not null;default:1"`
	Unidad       string `gorm:"not null;default:'und'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Producto) StockBajo() bool { return p.Stock <= p.StockMinimo }
