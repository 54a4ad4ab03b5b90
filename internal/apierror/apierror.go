// Package apierror holds the JSON bodies of every 4xx/5xx response. Handlers
// never serialize raw errors; database and driver messages stay in the logs.
package apierror

// APIError is the error body. Tipo carries the ledger rule that rejected the
// request (insufficient_stock, invalid_payment_amount, ...) so clients can
// branch on it without parsing Detail.
type APIError struct {
	Detail string `json:"detail"`
	Tipo   string `json:"tipo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Rechazo is a business-rule rejection tagged with its error kind.
func Rechazo(tipo, msg string) *APIError {
	return &APIError{Detail: msg, Tipo: tipo}
}

// ValidationError lists the failing request fields by JSON name.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Datos invalidos en la solicitud", Fields: fields}
}
