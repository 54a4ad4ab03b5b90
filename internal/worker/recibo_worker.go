package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibo: renders the PDF of a payment and,
// when the client has an email, queues the mail with the PDF attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FuenteRecibo loads what a receipt prints; service.AbonoService implements it.
type FuenteRecibo interface {
	DatosRecibo(ctx context.Context, abonoID uuid.UUID) (*dto.ReciboAbono, error)
}

// ColaEmail queues outgoing mail; *Dispatcher implements it.
type ColaEmail interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReciboWorker struct {
	fuente      FuenteRecibo
	emails      ColaEmail
	storagePath string
	render      func(*dto.ReciboAbono, string) (string, error)
}

func NewReciboWorker(fuente FuenteRecibo, emails ColaEmail, storagePath string) *ReciboWorker {
	return &ReciboWorker{
		fuente:      fuente,
		emails:      emails,
		storagePath: storagePath,
		render:      infra.GenerarReciboAbonoPDF,
	}
}

func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recibo_worker: invalid payload")
		return nil
	}
	abonoID, err := uuid.Parse(payload.AbonoID)
	if err != nil {
		log.Error().Str("abono_id", payload.AbonoID).Msg("recibo_worker: invalid abono_id")
		return nil
	}

	datos, err := w.fuente.DatosRecibo(ctx, abonoID)
	if err != nil {
		return fmt.Errorf("recibo_worker: load abono %s: %w", abonoID, err)
	}
	path, err := w.render(datos, w.storagePath)
	if err != nil {
		return fmt.Errorf("recibo_worker: render: %w", err)
	}
	log.Info().Str("abono_id", datos.AbonoID).Str("path", path).Msg("recibo_worker: PDF generado")

	if datos.ClienteEmail == "" {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: datos.ClienteEmail,
		Subject: fmt.Sprintf("%s - Recibo de abono venta #%d", datos.NombreNegocio, datos.VentaNumero),
		Body: fmt.Sprintf("Hola %s,\n\nAdjuntamos el recibo de su abono por %s%s. Saldo pendiente: %s%s.\n\n%s",
			datos.ClienteNombre,
			datos.SimboloMoneda, infra.FormatearMoneda(datos.Monto),
			datos.SimboloMoneda, infra.FormatearMoneda(datos.SaldoPosterior),
			datos.NombreNegocio),
		PDFPath: path,
	})
}
