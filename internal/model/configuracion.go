package model

import "time"

type PeriodoComision string

const (
	PeriodoMensual   PeriodoComision = "mensual"
	PeriodoQuincenal PeriodoComision = "quincenal"
)

// Configuracion is a single-row table with business settings.
type Configuracion struct {
	ID                         uint            `gorm:"primaryKey"`
	NombreEmpresa              string          `gorm:"not null;default:'CreditApp'"`
	Moneda                     string          `gorm:"type:varchar(5);not null;default:'$'"`
	PorcentajeComisionVendedor int             `gorm:"not null;default:5"`
	PorcentajeComisionCobrador int             `gorm:"not null;default:3"`
	PeriodoComision            PeriodoComision `gorm:"type:varchar(15);not null;default:'mensual'"`
	UpdatedAt                  time.Time
}

// TableName keeps the Spanish singular; there is only ever one row.
func (Configuracion) TableName() string { return "configuracion" }

// ConfiguracionPorDefecto is used when the table is still empty.
func ConfiguracionPorDefecto() Configuracion {
	return Configuracion{
		ID:                         1,
		NombreEmpresa:              "CreditApp",
		Moneda:                     "$",
		PorcentajeComisionVendedor: 5,
		PorcentajeComisionCobrador: 3,
		PeriodoComision:            PeriodoMensual,
	}
}
