package dto

type TransferirVentaRequest struct {
	VentaID          string `json:"venta_id"           validate:"required,uuid"`
	UsuarioDestinoID string `json:"usuario_destino_id" validate:"required,uuid"`
	Motivo           string `json:"motivo"             validate:"max=255"`
}

type TransferenciaResponse struct {
	ID                   string `json:"id"`
	VentaID              string `json:"venta_id"`
	UsuarioOrigenID      string `json:"usuario_origen_id"`
	UsuarioOrigenNombre  string `json:"usuario_origen_nombre,omitempty"`
	UsuarioDestinoID     string `json:"usuario_destino_id"`
	UsuarioDestinoNombre string `json:"usuario_destino_nombre,omitempty"`
	RealizadaPorID       string `json:"realizada_por_id"`
	Motivo               string `json:"motivo"`
	Revertible           bool   `json:"revertible"`
	CreatedAt            string `json:"created_at"`
}

type VentaTransferibleResponse struct {
	VentaID        string `json:"venta_id"`
	Numero         int64  `json:"numero"`
	ClienteNombre  string `json:"cliente_nombre"`
	SaldoPendiente int64  `json:"saldo_pendiente"`
	GestorID       string `json:"gestor_id"`
	GestorNombre   string `json:"gestor_nombre"`
	Transferida    bool   `json:"transferida"`
}

// GestorResponse names the effective holder of a sale. Fallback is true when
// the holder was not the expected one and a substitute had to be chosen.
type GestorResponse struct {
	VentaID   string `json:"venta_id"`
	UsuarioID string `json:"usuario_id"`
	Nombre    string `json:"nombre"`
	Rol       string `json:"rol"`
	Fallback  bool   `json:"fallback"`
}

type ReparacionResponse struct {
	Restauradas int `json:"restauradas"`
	Desmarcadas int `json:"desmarcadas"`
}
