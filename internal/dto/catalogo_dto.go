package dto

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=100"`
	Cedula    string  `json:"cedula"    validate:"required,min=4,max=20"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=20"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=200"`
}

type ClienteResponse struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	Cedula    string  `json:"cedula"`
	Telefono  *string `json:"telefono,omitempty"`
	Email     *string `json:"email,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
}

type CrearProductoRequest struct {
	Codigo       string  `json:"codigo"        validate:"required,max=50"`
	Nombre       string  `json:"nombre"        validate:"required,min=2,max=100"`
	Descripcion  *string `json:"descripcion"   validate:"omitempty,max=500"`
	PrecioCompra *int64  `json:"precio_compra" validate:"omitempty,min=0"`
	PrecioVenta  int64   `json:"precio_venta"  validate:"required,gt=0"`
	Stock        int     `json:"stock"         validate:"min=0"`
	StockMinimo  int     `json:"stock_minimo"  validate:"min=0"`
	Unidad       string  `json:"unidad"        validate:"omitempty,max=20"`
}

type ProductoResponse struct {
	ID          string  `json:"id"`
	Codigo      string  `json:"codigo"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion,omitempty"`
	PrecioVenta int64   `json:"precio_venta"`
	Stock       int     `json:"stock"`
	StockMinimo int     `json:"stock_minimo"`
	StockBajo   bool    `json:"stock_bajo"`
	Unidad      string  `json:"unidad"`
}

// MovimientoStockResponse is one line of a product's stock ledger.
type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	VentaID       *string `json:"venta_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}
