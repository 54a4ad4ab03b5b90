package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Desde     string `form:"desde"` // YYYY-MM-DD
	Hasta     string `form:"hasta"` // YYYY-MM-DD, inclusive
	Tipo      string `form:"tipo"      validate:"omitempty,oneof=contado credito"`
	Estado    string `form:"estado"    validate:"omitempty,oneof=pendiente pagado"`
	ClienteID string `form:"cliente_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data       []VentaResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	// 0 = product list price
	PrecioUnitario int64 `json:"precio_unitario" validate:"min=0"`
}

type CrearVentaRequest struct {
	ClienteID string             `json:"cliente_id" validate:"required,uuid"`
	Tipo      string             `json:"tipo"       validate:"required,oneof=contado credito"`
	CajaID    *string            `json:"caja_id"    validate:"omitempty,uuid"` // required for contado
	Items     []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string `json:"producto_id"`
	Producto       string `json:"producto"`
	Cantidad       int    `json:"cantidad"`
	PrecioUnitario int64  `json:"precio_unitario"`
	Subtotal       int64  `json:"subtotal"`
}

type VentaResponse struct {
	ID                 string              `json:"id"`
	Numero             int64               `json:"numero"`
	ClienteID          string              `json:"cliente_id"`
	ClienteNombre      string              `json:"cliente_nombre,omitempty"`
	VendedorID         string              `json:"vendedor_id"`
	GestorID           string              `json:"gestor_id"`
	Total              int64               `json:"total"`
	Tipo               string              `json:"tipo"`
	SaldoPendiente     int64               `json:"saldo_pendiente"`
	Estado             string              `json:"estado"`
	Transferida        bool                `json:"transferida"`
	VendedorOriginalID *string             `json:"vendedor_original_id,omitempty"`
	UsuarioActualID    *string             `json:"usuario_actual_id,omitempty"`
	FechaTransferencia *string             `json:"fecha_transferencia,omitempty"`
	Items              []ItemVentaResponse `json:"items,omitempty"`
	CreatedAt          string              `json:"created_at"`
}
