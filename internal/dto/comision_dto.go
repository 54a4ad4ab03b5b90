package dto

// ComisionFilter is bound from query string of GET /v1/comisiones.
// Empty Desde/Hasta default to the configured current period.
type ComisionFilter struct {
	UsuarioID string `form:"usuario_id" validate:"omitempty,uuid"`
	Desde     string `form:"desde"`
	Hasta     string `form:"hasta"`
	Pagado    *bool  `form:"pagado"`
}

type ComisionResponse struct {
	ID            string  `json:"id"`
	UsuarioID     string  `json:"usuario_id"`
	UsuarioNombre string  `json:"usuario_nombre,omitempty"`
	MontoBase     int64   `json:"monto_base"`
	Porcentaje    int     `json:"porcentaje"`
	MontoComision int64   `json:"monto_comision"`
	Periodo       string  `json:"periodo"`
	Pagado        bool    `json:"pagado"`
	VentaID       *string `json:"venta_id,omitempty"`
	AbonoID       *string `json:"abono_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type TotalComisionUsuario struct {
	UsuarioID string `json:"usuario_id"`
	Nombre    string `json:"nombre"`
	Cantidad  int    `json:"cantidad"`
	Total     int64  `json:"total"`
	Pendiente int64  `json:"pendiente"`
}

type ComisionesReporteResponse struct {
	Desde       string                 `json:"desde"`
	Hasta       string                 `json:"hasta"`
	Periodo     string                 `json:"periodo"`
	Comisiones  []ComisionResponse     `json:"comisiones"`
	PorUsuario  []TotalComisionUsuario `json:"por_usuario"`
	Total       int64                  `json:"total"`
	TotalPagado int64                  `json:"total_pagado"`
}

type MarcarPagadasRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type LiquidarRequest struct {
	UsuarioID *string `json:"usuario_id" validate:"omitempty,uuid"`
	Desde     string  `json:"desde"      validate:"required,datetime=2006-01-02"`
	Hasta     string  `json:"hasta"      validate:"required,datetime=2006-01-02"`
}

type LiquidacionResponse struct {
	Liquidadas int64 `json:"liquidadas"`
	Monto      int64 `json:"monto"`
}
