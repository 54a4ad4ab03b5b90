package dto

import "time"

// AbonoFilter is bound from query string of GET /v1/abonos.
type AbonoFilter struct {
	VentaID    string `form:"venta_id"    validate:"omitempty,uuid"`
	CobradorID string `form:"cobrador_id" validate:"omitempty,uuid"`
	Desde      string `form:"desde"`
	Hasta      string `form:"hasta"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// Monto is validated by the service so that zero and negative amounts
// are reported as invalid payment amounts rather than binding errors.
type RegistrarAbonoRequest struct {
	VentaID string  `json:"venta_id" validate:"required,uuid"`
	Monto   int64   `json:"monto"`
	CajaID  string  `json:"caja_id"  validate:"required,uuid"`
	Notas   *string `json:"notas"    validate:"omitempty,max=500"`
}

type EditarAbonoRequest struct {
	Monto  int64   `json:"monto"`
	CajaID string  `json:"caja_id" validate:"required,uuid"`
	Notas  *string `json:"notas"   validate:"omitempty,max=500"`
}

type AbonoResponse struct {
	ID             string  `json:"id"`
	VentaID        string  `json:"venta_id"`
	VentaNumero    int64   `json:"venta_numero,omitempty"`
	Monto          int64   `json:"monto"`
	CobradorID     string  `json:"cobrador_id"`
	CajaID         string  `json:"caja_id"`
	Notas          *string `json:"notas,omitempty"`
	SaldoPendiente int64   `json:"saldo_pendiente"`
	EstadoVenta    string  `json:"estado_venta"`
	CreatedAt      string  `json:"created_at"`
}

type AbonoListResponse struct {
	Data  []AbonoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ReciboAbono is what the payment receipt prints. Balances are as of the payment.
type ReciboAbono struct {
	AbonoID        string
	VentaNumero    int64
	Fecha          time.Time
	ClienteNombre  string
	ClienteCedula  string
	ClienteEmail   string
	CobradorNombre string
	CajaNombre     string
	Monto          int64
	TotalVenta     int64
	SaldoAnterior  int64
	SaldoPosterior int64
	NombreNegocio  string
	SimboloMoneda  string
}
