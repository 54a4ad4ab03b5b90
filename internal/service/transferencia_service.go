package service

import (
	"context"
	"errors"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TransferenciaService interface {
	Transferir(ctx context.Context, actorID uuid.UUID, req dto.TransferirVentaRequest) (*dto.TransferenciaResponse, error)
	Revertir(ctx context.Context, actorID, transferenciaID uuid.UUID) error
	Historial(ctx context.Context, actorID, ventaID uuid.UUID) ([]dto.TransferenciaResponse, error)
	ListarTransferibles(ctx context.Context) ([]dto.VentaTransferibleResponse, error)
	VentasGestionadas(ctx context.Context, usuarioID uuid.UUID) ([]dto.VentaResponse, error)
	Gestor(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.GestorResponse, error)
	RepararHuerfanas(ctx context.Context, actorID uuid.UUID) (*dto.ReparacionResponse, error)
}

type transferenciaService struct {
	store    repository.Store
	politica policy.Policy
	now      func() time.Time
}

func NewTransferenciaService(store repository.Store, politica policy.Policy) TransferenciaService {
	return &transferenciaService{store: store, politica: politica, now: time.Now}
}

// ── Transferir ────────────────────────────────────────────────────────────────

func (s *transferenciaService) Transferir(ctx context.Context, actorID uuid.UUID, req dto.TransferirVentaRequest) (*dto.TransferenciaResponse, error) {
	ventaID, err := parseUUID(req.VentaID, "venta_id")
	if err != nil {
		return nil, err
	}
	destinoID, err := parseUUID(req.UsuarioDestinoID, "usuario_destino_id")
	if err != nil {
		return nil, err
	}

	var rec *model.TransferenciaVenta
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarAdmin(ctx, tx, actorID)
		if err != nil {
			return err
		}
		venta, err := tx.Ventas().FindByIDForUpdate(ctx, ventaID)
		if err != nil {
			return asError(err, "venta no encontrada")
		}
		if !venta.EsCredito() || venta.SaldoPendiente <= 0 || venta.Estado != model.EstadoPendiente {
			return errValidation("solo se pueden transferir ventas a credito con saldo pendiente")
		}
		destino, err := tx.Usuarios().FindByID(ctx, destinoID)
		if errors.Is(err, repository.ErrNotFound) {
			return errValidation("usuario destino no encontrado")
		}
		if err != nil {
			return err
		}
		if !destino.Activo || !destino.Rol.PuedeGestionarCartera() {
			return errValidation("el usuario destino debe ser un vendedor o cobrador activo")
		}
		actual, _, err := resolverGestor(ctx, tx, venta)
		if err != nil {
			return err
		}
		if actual.ID == destino.ID {
			return errValidation("la venta ya esta asignada a este usuario")
		}

		now := s.now()
		if !venta.Transferida {
			original := venta.VendedorID
			venta.VendedorOriginalID = &original
			venta.Transferida = true
		}
		nuevo := destino.ID
		venta.UsuarioActualID = &nuevo
		venta.FechaTransferencia = &now
		if err := tx.Ventas().Update(ctx, venta); err != nil {
			return err
		}

		rec = &model.TransferenciaVenta{
			ID:               uuid.New(),
			VentaID:          venta.ID,
			UsuarioOrigenID:  actual.ID,
			UsuarioDestinoID: destino.ID,
			RealizadaPorID:   actor.ID,
			Motivo:           req.Motivo,
			CreatedAt:        now,
			UsuarioOrigen:    actual,
			UsuarioDestino:   destino,
		}
		return tx.Transferencias().Create(ctx, rec)
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			log.Error().Err(err).Str("venta_id", req.VentaID).Str("destino", req.UsuarioDestinoID).Str("usuario_id", actorID.String()).Msg("transferencia no registrada")
		}
		return nil, asError(err, "")
	}

	log.Info().
		Str("transferencia_id", rec.ID.String()).
		Str("venta_id", rec.VentaID.String()).
		Str("origen", rec.UsuarioOrigenID.String()).
		Str("destino", rec.UsuarioDestinoID.String()).
		Str("realizada_por", rec.RealizadaPorID.String()).
		Msg("venta transferida")

	resp := transferenciaToResponse(rec, true)
	return &resp, nil
}

// ── Revertir ──────────────────────────────────────────────────────────────────
// Only the latest hop of a sale can be undone, and only while no payment was
// posted after it. Undoing the only hop returns the sale to its original state.
// The record itself is removed; the audit line below is what remains.

func (s *transferenciaService) Revertir(ctx context.Context, actorID, transferenciaID uuid.UUID) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarAdmin(ctx, tx, actorID)
		if err != nil {
			return err
		}
		rec, err := tx.Transferencias().FindByID(ctx, transferenciaID)
		if err != nil {
			return asError(err, "transferencia no encontrada")
		}
		venta, err := tx.Ventas().FindByIDForUpdate(ctx, rec.VentaID)
		if err != nil {
			return asError(err, "venta no encontrada")
		}
		historial, err := tx.Transferencias().ListByVenta(ctx, venta.ID)
		if err != nil {
			return err
		}
		if len(historial) == 0 || historial[len(historial)-1].ID != rec.ID {
			return newError(KindIrreversibleTransfer, "solo se puede revertir la ultima transferencia de la venta")
		}
		n, err := tx.Abonos().CountPosteriores(ctx, venta.ID, rec.CreatedAt)
		if err != nil {
			return err
		}
		if n > 0 {
			return newError(KindIrreversibleTransfer, "la venta tiene abonos registrados despues de la transferencia")
		}

		if len(historial) == 1 {
			venta.Transferida = false
			venta.VendedorOriginalID = nil
			venta.UsuarioActualID = nil
			venta.FechaTransferencia = nil
		} else {
			previa := historial[len(historial)-2]
			origen := rec.UsuarioOrigenID
			fecha := previa.CreatedAt
			venta.UsuarioActualID = &origen
			venta.FechaTransferencia = &fecha
		}
		if err := tx.Ventas().Update(ctx, venta); err != nil {
			return err
		}
		if err := tx.Transferencias().Delete(ctx, rec.ID); err != nil {
			return err
		}

		log.Info().
			Str("evento", "transferencia_revertida").
			Str("transferencia_id", rec.ID.String()).
			Str("venta_id", venta.ID.String()).
			Str("origen", rec.UsuarioOrigenID.String()).
			Str("destino", rec.UsuarioDestinoID.String()).
			Str("motivo", rec.Motivo).
			Time("realizada_en", rec.CreatedAt).
			Str("revertida_por", actor.ID.String()).
			Bool("estado_original", !venta.Transferida).
			Msg("transferencia revertida")
		return nil
	})
	if err != nil && KindOf(err) == KindPersistence {
		log.Error().Err(err).Str("transferencia_id", transferenciaID.String()).Str("usuario_id", actorID.String()).Msg("transferencia no revertida")
	}
	return asError(err, "")
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *transferenciaService) Historial(ctx context.Context, actorID, ventaID uuid.UUID) ([]dto.TransferenciaResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	venta, err := s.store.Ventas().FindByID(ctx, ventaID)
	if err != nil {
		return nil, asError(err, "venta no encontrada")
	}
	if !s.politica.PuedeVer(venta, actor) {
		return nil, errForbidden("no tiene acceso a esta venta")
	}
	recs, err := s.store.Transferencias().ListByVenta(ctx, ventaID)
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.TransferenciaResponse, 0, len(recs))
	for i := range recs {
		revertible := false
		if i == len(recs)-1 {
			n, err := s.store.Abonos().CountPosteriores(ctx, ventaID, recs[i].CreatedAt)
			if err != nil {
				return nil, asError(err, "")
			}
			revertible = n == 0
		}
		out = append(out, transferenciaToResponse(&recs[i], revertible))
	}
	return out, nil
}

func (s *transferenciaService) ListarTransferibles(ctx context.Context) ([]dto.VentaTransferibleResponse, error) {
	ventas, err := s.store.Ventas().ListCreditoPendientes(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.VentaTransferibleResponse, 0, len(ventas))
	for i := range ventas {
		v := &ventas[i]
		g, _, err := resolverGestor(ctx, s.store, v)
		if err != nil {
			return nil, asError(err, "")
		}
		item := dto.VentaTransferibleResponse{
			VentaID:        v.ID.String(),
			Numero:         v.Numero,
			SaldoPendiente: v.SaldoPendiente,
			GestorID:       g.ID.String(),
			GestorNombre:   g.Nombre,
			Transferida:    v.Transferida,
		}
		if v.Cliente != nil {
			item.ClienteNombre = v.Cliente.Nombre
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *transferenciaService) VentasGestionadas(ctx context.Context, usuarioID uuid.UUID) ([]dto.VentaResponse, error) {
	if _, err := s.store.Usuarios().FindByID(ctx, usuarioID); err != nil {
		return nil, asError(err, "usuario no encontrado")
	}
	ventas, err := s.store.Ventas().ListGestionadasPor(ctx, usuarioID)
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, ventaToResponse(&ventas[i]))
	}
	return out, nil
}

func (s *transferenciaService) Gestor(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.GestorResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	v, err := s.store.Ventas().FindByID(ctx, ventaID)
	if err != nil {
		return nil, asError(err, "venta no encontrada")
	}
	if !s.politica.PuedeVer(v, actor) {
		return nil, errForbidden("no tiene acceso a esta venta")
	}
	g, fallback, err := resolverGestor(ctx, s.store, v)
	if err != nil {
		return nil, asError(err, "")
	}
	return &dto.GestorResponse{
		VentaID:   v.ID.String(),
		UsuarioID: g.ID.String(),
		Nombre:    g.Nombre,
		Rol:       string(g.Rol),
		Fallback:  fallback,
	}, nil
}

// RepararHuerfanas fixes sales flagged as transferred with no current holder:
// the holder is restored from the latest transfer record, or the flag is
// cleared when no record exists.
func (s *transferenciaService) RepararHuerfanas(ctx context.Context, actorID uuid.UUID) (*dto.ReparacionResponse, error) {
	var res dto.ReparacionResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := cargarAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		huerfanas, err := tx.Ventas().ListTransferidasSinGestor(ctx)
		if err != nil {
			return err
		}
		for _, h := range huerfanas {
			v, err := tx.Ventas().FindByIDForUpdate(ctx, h.ID)
			if err != nil {
				return err
			}
			ultima, err := tx.Transferencias().Latest(ctx, v.ID)
			switch {
			case err == nil:
				destino, fecha := ultima.UsuarioDestinoID, ultima.CreatedAt
				v.UsuarioActualID = &destino
				v.FechaTransferencia = &fecha
				if v.VendedorOriginalID == nil {
					original := v.VendedorID
					v.VendedorOriginalID = &original
				}
				res.Restauradas++
			case errors.Is(err, repository.ErrNotFound):
				v.Transferida = false
				v.VendedorOriginalID = nil
				v.UsuarioActualID = nil
				v.FechaTransferencia = nil
				res.Desmarcadas++
			default:
				return err
			}
			if err := tx.Ventas().Update(ctx, v); err != nil {
				return err
			}
			log.Warn().Str("venta_id", v.ID.String()).Bool("transferida", v.Transferida).Msg("venta huerfana reparada")
		}
		return nil
	})
	if err != nil {
		return nil, asError(err, "")
	}
	return &res, nil
}

func transferenciaToResponse(t *model.TransferenciaVenta, revertible bool) dto.TransferenciaResponse {
	resp := dto.TransferenciaResponse{
		ID:               t.ID.String(),
		VentaID:          t.VentaID.String(),
		UsuarioOrigenID:  t.UsuarioOrigenID.String(),
		UsuarioDestinoID: t.UsuarioDestinoID.String(),
		RealizadaPorID:   t.RealizadaPorID.String(),
		Motivo:           t.Motivo,
		Revertible:       revertible,
		CreatedAt:        fmtTime(t.CreatedAt),
	}
	if t.UsuarioOrigen != nil {
		resp.UsuarioOrigenNombre = t.UsuarioOrigen.Nombre
	}
	if t.UsuarioDestino != nil {
		resp.UsuarioDestinoNombre = t.UsuarioDestino.Nombre
	}
	return resp
}
