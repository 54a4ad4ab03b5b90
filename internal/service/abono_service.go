package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReciboDispatcher queues the receipt of a committed payment. worker.Dispatcher
// implements it.
type ReciboDispatcher interface {
	EncolarRecibo(ctx context.Context, abonoID uuid.UUID) error
}

type AbonoService interface {
	RegistrarAbono(ctx context.Context, actorID uuid.UUID, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error)
	EditarAbono(ctx context.Context, actorID, id uuid.UUID, req dto.EditarAbonoRequest) (*dto.AbonoResponse, error)
	EliminarAbono(ctx context.Context, actorID, id uuid.UUID) error
	ObtenerAbono(ctx context.Context, actorID, id uuid.UUID) (*dto.AbonoResponse, error)
	ListarAbonos(ctx context.Context, actorID uuid.UUID, filtro dto.AbonoFilter) (*dto.AbonoListResponse, error)
	DatosRecibo(ctx context.Context, id uuid.UUID) (*dto.ReciboAbono, error)
}

type abonoService struct {
	store      repository.Store
	comisiones ComisionService
	politica   policy.Policy
	recibos    ReciboDispatcher
	now        func() time.Time
}

// NewAbonoService builds the payment service. recibos may be nil, in which
// case no receipt is produced.
func NewAbonoService(store repository.Store, comisiones ComisionService, politica policy.Policy, recibos ReciboDispatcher) AbonoService {
	return &abonoService{store: store, comisiones: comisiones, politica: politica, recibos: recibos, now: time.Now}
}

// montoInvalido translates the ledger rule that rejected a payment.
func montoInvalido(err error, v *model.Venta, monto int64) error {
	switch {
	case errors.Is(err, model.ErrVentaNoEsCredito):
		return &Error{Kind: KindInvalidPaymentAmount, Msg: "solo se pueden registrar abonos en ventas a credito", Err: err}
	case errors.Is(err, model.ErrAbonoNoPositivo):
		return &Error{Kind: KindInvalidPaymentAmount, Msg: err.Error(), Err: err}
	case errors.Is(err, model.ErrAbonoExcedeSaldo):
		return &Error{
			Kind: KindInvalidPaymentAmount,
			Msg:  fmt.Sprintf("el abono de %d excede el saldo pendiente de %d", monto, v.SaldoPendiente),
			Err:  err,
		}
	default:
		return err
	}
}

// ── RegistrarAbono ────────────────────────────────────────────────────────────
// One transaction with the venta and caja rows locked: abono row, balance
// decrement, entrada on the caja and the collector's commission (savepoint).
// The receipt is queued only after commit.

func (s *abonoService) RegistrarAbono(ctx context.Context, actorID uuid.UUID, req dto.RegistrarAbonoRequest) (*dto.AbonoResponse, error) {
	if req.Monto <= 0 {
		return nil, newError(KindInvalidPaymentAmount, model.ErrAbonoNoPositivo.Error())
	}
	ventaID, err := parseUUID(req.VentaID, "venta_id")
	if err != nil {
		return nil, err
	}
	cajaID, err := parseUUID(req.CajaID, "caja_id")
	if err != nil {
		return nil, err
	}

	var (
		abono *model.Abono
		venta *model.Venta
	)
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		venta, err = tx.Ventas().FindByIDForUpdate(ctx, ventaID)
		if err != nil {
			return asError(err, "venta no encontrada")
		}
		if !s.politica.PuedeGestionar(venta, actor) {
			return errForbidden("no tiene permiso para registrar abonos en esta venta")
		}
		if err := venta.AplicarAbono(req.Monto); err != nil {
			return montoInvalido(err, venta, req.Monto)
		}

		now := s.now()
		abono = &model.Abono{
			ID:         uuid.New(),
			VentaID:    venta.ID,
			Monto:      req.Monto,
			CobradorID: actor.ID,
			CajaID:     cajaID,
			Notas:      req.Notas,
			CreatedAt:  now,
		}
		if err := tx.Abonos().Create(ctx, abono); err != nil {
			return err
		}
		if err := tx.Ventas().Update(ctx, venta); err != nil {
			return err
		}
		aid, vid, uid := abono.ID, venta.ID, actor.ID
		if _, err := registrarMovimientoTx(ctx, tx, movimiento{
			cajaID:      cajaID,
			tipo:        model.MovEntrada,
			monto:       req.Monto,
			descripcion: fmt.Sprintf("Abono venta #%d", venta.Numero),
			ventaID:     &vid,
			abonoID:     &aid,
			usuarioID:   &uid,
		}, now); err != nil {
			return err
		}
		s.comisiones.GenerarTx(ctx, tx, req.Monto, actor.ID, nil, &aid)
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			log.Error().Err(err).Str("venta_id", ventaID.String()).Str("usuario_id", actorID.String()).Msg("abono no registrado")
		}
		return nil, asError(err, "")
	}

	log.Info().
		Str("abono_id", abono.ID.String()).
		Str("venta_id", venta.ID.String()).
		Int64("monto", abono.Monto).
		Int64("saldo_pendiente", venta.SaldoPendiente).
		Msg("abono registrado")

	if s.recibos != nil {
		if err := s.recibos.EncolarRecibo(ctx, abono.ID); err != nil {
			log.Warn().Err(err).Stringer("kind", KindNonCriticalSideEffect).Str("abono_id", abono.ID.String()).Msg("recibo no encolado")
		}
	}

	resp := abonoToResponse(abono, venta)
	return &resp, nil
}

// ── EditarAbono ───────────────────────────────────────────────────────────────
// The ceiling for the new amount is the current balance plus the old amount.
// The commission generated by the original payment is left untouched.

func (s *abonoService) EditarAbono(ctx context.Context, actorID, id uuid.UUID, req dto.EditarAbonoRequest) (*dto.AbonoResponse, error) {
	if req.Monto <= 0 {
		return nil, newError(KindInvalidPaymentAmount, model.ErrAbonoNoPositivo.Error())
	}
	cajaID, err := parseUUID(req.CajaID, "caja_id")
	if err != nil {
		return nil, err
	}

	var (
		abono *model.Abono
		venta *model.Venta
	)
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarAdmin(ctx, tx, actorID)
		if err != nil {
			return err
		}
		abono, err = tx.Abonos().FindByID(ctx, id)
		if err != nil {
			return asError(err, "abono no encontrado")
		}
		venta, err = tx.Ventas().FindByIDForUpdate(ctx, abono.VentaID)
		if err != nil {
			return asError(err, "venta del abono no encontrada")
		}
		anterior := abono.Monto
		if err := venta.ReemplazarAbono(anterior, req.Monto); err != nil {
			if errors.Is(err, model.ErrAbonoExcedeSaldo) {
				return &Error{
					Kind: KindInvalidPaymentAmount,
					Msg:  fmt.Sprintf("el abono de %d excede el saldo disponible de %d", req.Monto, venta.SaldoPendiente+anterior),
					Err:  err,
				}
			}
			return montoInvalido(err, venta, req.Monto)
		}

		now := s.now()
		aid, vid, uid := abono.ID, venta.ID, actor.ID
		nuevo := movimiento{
			cajaID:      cajaID,
			tipo:        model.MovEntrada,
			monto:       req.Monto,
			descripcion: fmt.Sprintf("Abono venta #%d (editado)", venta.Numero),
			ventaID:     &vid,
			abonoID:     &aid,
			usuarioID:   &uid,
		}
		movs, err := tx.Cajas().ListMovimientosByAbono(ctx, abono.ID)
		if err != nil {
			return err
		}
		if len(movs) == 1 {
			if _, err := reemplazarMovimientoTx(ctx, tx, movs[0], nuevo, now); err != nil {
				return err
			}
		} else {
			if err := revertirMovimientosTx(ctx, tx, movs); err != nil {
				return err
			}
			if _, err := registrarMovimientoTx(ctx, tx, nuevo, now); err != nil {
				return err
			}
		}

		abono.Monto = req.Monto
		abono.CajaID = cajaID
		if req.Notas != nil {
			abono.Notas = req.Notas
		}
		if err := tx.Abonos().Update(ctx, abono); err != nil {
			return err
		}
		if err := tx.Ventas().Update(ctx, venta); err != nil {
			return err
		}
		log.Info().
			Str("abono_id", abono.ID.String()).
			Int64("monto_anterior", anterior).
			Int64("monto_nuevo", req.Monto).
			Str("usuario_id", actor.ID.String()).
			Msg("abono editado; la comision no se recalcula")
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			log.Error().Err(err).Str("abono_id", id.String()).Str("usuario_id", actorID.String()).Msg("abono no editado")
		}
		return nil, asError(err, "")
	}
	resp := abonoToResponse(abono, venta)
	return &resp, nil
}

// ── EliminarAbono ─────────────────────────────────────────────────────────────
// Exact inverse of RegistrarAbono.

func (s *abonoService) EliminarAbono(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarAdmin(ctx, tx, actorID)
		if err != nil {
			return err
		}
		abono, err := tx.Abonos().FindByID(ctx, id)
		if err != nil {
			return asError(err, "abono no encontrado")
		}
		venta, err := tx.Ventas().FindByIDForUpdate(ctx, abono.VentaID)
		if err != nil {
			return asError(err, "venta del abono no encontrada")
		}
		venta.RevertirAbono(abono.Monto)
		if err := venta.Validar(); err != nil {
			return &Error{Kind: KindValidation, Msg: "la eliminacion dejaria la venta inconsistente", Err: err}
		}

		movs, err := tx.Cajas().ListMovimientosByAbono(ctx, abono.ID)
		if err != nil {
			return err
		}
		if err := revertirMovimientosTx(ctx, tx, movs); err != nil {
			return err
		}
		if err := tx.Comisiones().DeleteByAbono(ctx, abono.ID); err != nil {
			return err
		}
		if err := tx.Abonos().Delete(ctx, abono.ID); err != nil {
			return err
		}
		if err := tx.Ventas().Update(ctx, venta); err != nil {
			return err
		}
		log.Info().
			Str("abono_id", abono.ID.String()).
			Str("venta_id", venta.ID.String()).
			Int64("monto", abono.Monto).
			Str("usuario_id", actor.ID.String()).
			Msg("abono eliminado")
		return nil
	})
	if err != nil && KindOf(err) == KindPersistence {
		log.Error().Err(err).Str("abono_id", id.String()).Str("usuario_id", actorID.String()).Msg("abono no eliminado")
	}
	return asError(err, "")
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *abonoService) ObtenerAbono(ctx context.Context, actorID, id uuid.UUID) (*dto.AbonoResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	a, err := s.store.Abonos().FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "abono no encontrado")
	}
	v, err := s.store.Ventas().FindByID(ctx, a.VentaID)
	if err != nil {
		return nil, asError(err, "venta del abono no encontrada")
	}
	if !s.politica.PuedeVer(v, actor) {
		return nil, errForbidden("no tiene acceso a este abono")
	}
	resp := abonoToResponse(a, v)
	return &resp, nil
}

func (s *abonoService) ListarAbonos(ctx context.Context, actorID uuid.UUID, filtro dto.AbonoFilter) (*dto.AbonoListResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	desde, hasta, err := parseRango(filtro.Desde, filtro.Hasta)
	if err != nil {
		return nil, err
	}
	ventaID, err := parseUUIDOpt(filtro.VentaID, "venta_id")
	if err != nil {
		return nil, err
	}
	cobradorID, err := parseUUIDOpt(filtro.CobradorID, "cobrador_id")
	if err != nil {
		return nil, err
	}
	offset, limit := paginar(filtro.Page, filtro.Limit)
	q := repository.AbonoQuery{
		VentaID:    ventaID,
		CobradorID: cobradorID,
		Desde:      desde,
		Hasta:      hasta,
		Offset:     offset,
		Limit:      limit,
	}
	if !actor.EsAdmin() {
		q.VisiblePara = actor
	}

	abonos, total, err := s.store.Abonos().List(ctx, q)
	if err != nil {
		return nil, asError(err, "")
	}
	data := make([]dto.AbonoResponse, 0, len(abonos))
	for i := range abonos {
		data = append(data, abonoToResponse(&abonos[i], abonos[i].Venta))
	}
	return &dto.AbonoListResponse{Data: data, Total: total, Page: offset/limit + 1, Limit: limit}, nil
}

// DatosRecibo assembles the receipt of a payment with the balances as they
// stood right after it.
func (s *abonoService) DatosRecibo(ctx context.Context, id uuid.UUID) (*dto.ReciboAbono, error) {
	a, err := s.store.Abonos().FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "abono no encontrado")
	}
	v, err := s.store.Ventas().FindByID(ctx, a.VentaID)
	if err != nil {
		return nil, asError(err, "venta del abono no encontrada")
	}
	abonos, err := s.store.Abonos().ListByVenta(ctx, v.ID)
	if err != nil {
		return nil, asError(err, "")
	}
	var pagado int64
	for _, x := range abonos {
		if !x.CreatedAt.After(a.CreatedAt) {
			pagado += x.Monto
		}
	}
	cfg, err := s.store.Configuracion().Get(ctx)
	if err != nil {
		return nil, asError(err, "")
	}

	r := &dto.ReciboAbono{
		AbonoID:        a.ID.String(),
		VentaNumero:    v.Numero,
		Fecha:          a.CreatedAt,
		Monto:          a.Monto,
		TotalVenta:     v.Total,
		SaldoPosterior: v.Total - pagado,
		SaldoAnterior:  v.Total - pagado + a.Monto,
		NombreNegocio:  cfg.NombreEmpresa,
		SimboloMoneda:  cfg.Moneda,
	}
	if v.Cliente != nil {
		r.ClienteNombre = v.Cliente.Nombre
		r.ClienteCedula = v.Cliente.Cedula
		if v.Cliente.Email != nil {
			r.ClienteEmail = *v.Cliente.Email
		}
	}
	if a.Cobrador != nil {
		r.CobradorNombre = a.Cobrador.Nombre
	} else if u, err := s.store.Usuarios().FindByID(ctx, a.CobradorID); err == nil {
		r.CobradorNombre = u.Nombre
	}
	if c, err := s.store.Cajas().FindByID(ctx, a.CajaID); err == nil {
		r.CajaNombre = c.Nombre
	}
	return r, nil
}

func abonoToResponse(a *model.Abono, v *model.Venta) dto.AbonoResponse {
	resp := dto.AbonoResponse{
		ID:         a.ID.String(),
		VentaID:    a.VentaID.String(),
		Monto:      a.Monto,
		CobradorID: a.CobradorID.String(),
		CajaID:     a.CajaID.String(),
		Notas:      a.Notas,
		CreatedAt:  fmtTime(a.CreatedAt),
	}
	if v != nil {
		resp.VentaNumero = v.Numero
		resp.SaldoPendiente = v.SaldoPendiente
		resp.EstadoVenta = string(v.Estado)
	}
	return resp
}
