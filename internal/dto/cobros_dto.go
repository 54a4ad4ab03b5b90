package dto

// CobroItem is one installment due on a credit sale.
type CobroItem struct {
	VentaID           string `json:"venta_id"`
	VentaNumero       int64  `json:"venta_numero"`
	ClienteID         string `json:"cliente_id"`
	ClienteNombre     string `json:"cliente_nombre"`
	ClienteTelefono   string `json:"cliente_telefono,omitempty"`
	NumeroCuota       int    `json:"numero_cuota"`
	TotalCuotas       int    `json:"total_cuotas"`
	MontoCuota        int64  `json:"monto_cuota"`
	SaldoPendiente    int64  `json:"saldo_pendiente"`
	FechaVencimiento  string `json:"fecha_vencimiento"`
	DiasDiferencia    int    `json:"dias_diferencia"`
	DiasTranscurridos int    `json:"dias_transcurridos"`
}

type ResumenBucket struct {
	Cantidad int   `json:"cantidad"`
	Monto    int64 `json:"monto"`
}

type CobrosResumen struct {
	ParaHoy  ResumenBucket `json:"para_hoy"`
	Vencidos ResumenBucket `json:"vencidos"`
	Proximos ResumenBucket `json:"proximos"`
}

type CobrosResponse struct {
	Fecha    string        `json:"fecha"`
	ParaHoy  []CobroItem   `json:"para_hoy"`
	Vencidos []CobroItem   `json:"vencidos"`
	Proximos []CobroItem   `json:"proximos"`
	Resumen  CobrosResumen `json:"resumen"`
}

// ResumenCobrosSnapshot is the company-wide summary cached by the scheduler.
type ResumenCobrosSnapshot struct {
	GeneradoEn string        `json:"generado_en"`
	Resumen    CobrosResumen `json:"resumen"`
}

type CuotasResponse struct {
	VentaID          string `json:"venta_id"`
	TotalCuotas      int    `json:"total_cuotas"`
	CuotasPagadas    int    `json:"cuotas_pagadas"`
	MontoCuota       int64  `json:"monto_cuota"`
	TotalPagado      int64  `json:"total_pagado"`
	CuotaActual      int    `json:"cuota_actual"`
	FechaVencimiento string `json:"fecha_vencimiento,omitempty"`
	DiasDiferencia   int    `json:"dias_diferencia"`
	Estado           string `json:"estado"` // para_hoy | vencido | proximo | al_dia
}

type RecordatorioResponse struct {
	VentaID  string `json:"venta_id"`
	Telefono string `json:"telefono"`
	Mensaje  string `json:"mensaje"`
	URL      string `json:"url"`
}
