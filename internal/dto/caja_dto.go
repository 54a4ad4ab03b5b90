package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCajaRequest struct {
	Nombre       string `json:"nombre"        validate:"required,min=2,max=100"`
	Tipo         string `json:"tipo"          validate:"required,oneof=efectivo nequi daviplata transferencia"`
	SaldoInicial int64  `json:"saldo_inicial" validate:"min=0"`
}

// MovimientoRequest registers a manual movement. Tipo "transferencia" moves
// money to CajaDestinoID.
type MovimientoRequest struct {
	Tipo          string  `json:"tipo"            validate:"required,oneof=entrada salida transferencia"`
	Monto         int64   `json:"monto"           validate:"required,gt=0"`
	Descripcion   string  `json:"descripcion"     validate:"required,max=255"`
	CajaDestinoID *string `json:"caja_destino_id" validate:"omitempty,uuid"`
}

// MovimientoFilter is bound from query string of GET /v1/cajas/:id/movimientos.
type MovimientoFilter struct {
	Tipo  string `form:"tipo" validate:"omitempty,oneof=entrada salida"`
	Desde string `form:"desde"`
	Hasta string `form:"hasta"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID            string `json:"id"`
	Nombre        string `json:"nombre"`
	Tipo          string `json:"tipo"`
	SaldoInicial  int64  `json:"saldo_inicial"`
	SaldoActual   int64  `json:"saldo_actual"`
	FechaApertura string `json:"fecha_apertura"`
}

type CajasResumenResponse struct {
	Cajas          []CajaResponse   `json:"cajas"`
	TotalesPorTipo map[string]int64 `json:"totales_por_tipo"`
	TotalGeneral   int64            `json:"total_general"`
}

type MovimientoResponse struct {
	ID            string  `json:"id"`
	CajaID        string  `json:"caja_id"`
	Tipo          string  `json:"tipo"`
	Monto         int64   `json:"monto"`
	Descripcion   string  `json:"descripcion"`
	VentaID       *string `json:"venta_id,omitempty"`
	AbonoID       *string `json:"abono_id,omitempty"`
	CajaDestinoID *string `json:"caja_destino_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientosResponse struct {
	Caja          CajaResponse         `json:"caja"`
	Movimientos   []MovimientoResponse `json:"movimientos"`
	TotalEntradas int64                `json:"total_entradas"`
	TotalSalidas  int64                `json:"total_salidas"`
}

// ConciliacionResponse compares the stored balance with the one derived from movements.
type ConciliacionResponse struct {
	CajaID        string `json:"caja_id"`
	SaldoInicial  int64  `json:"saldo_inicial"`
	TotalEntradas int64  `json:"total_entradas"`
	TotalSalidas  int64  `json:"total_salidas"`
	SaldoEsperado int64  `json:"saldo_esperado"`
	SaldoActual   int64  `json:"saldo_actual"`
	Diferencia    int64  `json:"diferencia"`
	Cuadra        bool   `json:"cuadra"`
}
