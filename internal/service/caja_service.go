package service

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CajaService interface {
	CrearCaja(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error)
	ListarCajas(ctx context.Context) (*dto.CajasResumenResponse, error)
	ObtenerCaja(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error)
	// RegistrarMovimiento records a manual entrada, salida or transfer to another till.
	RegistrarMovimiento(ctx context.Context, usuarioID, cajaID uuid.UUID, req dto.MovimientoRequest) ([]dto.MovimientoResponse, error)
	ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.MovimientoFilter) (*dto.MovimientosResponse, error)
	Conciliar(ctx context.Context, cajaID uuid.UUID) (*dto.ConciliacionResponse, error)
	// EliminarCaja only succeeds for tills without movements.
	EliminarCaja(ctx context.Context, id uuid.UUID) error
}

type cajaService struct {
	store repository.Store
	now   func() time.Time
}

func NewCajaService(store repository.Store) CajaService {
	return &cajaService{store: store, now: time.Now}
}

// ── CrearCaja ─────────────────────────────────────────────────────────────────

func (s *cajaService) CrearCaja(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error) {
	if req.SaldoInicial < 0 {
		return nil, errValidation("el saldo inicial no puede ser negativo")
	}
	caja := &model.Caja{
		ID:            uuid.New(),
		Nombre:        req.Nombre,
		Tipo:          model.TipoCaja(req.Tipo),
		SaldoInicial:  req.SaldoInicial,
		SaldoActual:   req.SaldoInicial,
		FechaApertura: s.now(),
	}
	if err := s.store.Cajas().Create(ctx, caja); err != nil {
		return nil, asError(err, "")
	}
	log.Info().Str("caja_id", caja.ID.String()).Str("tipo", req.Tipo).Msg("caja creada")
	resp := cajaToResponse(caja)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) ListarCajas(ctx context.Context) (*dto.CajasResumenResponse, error) {
	cajas, err := s.store.Cajas().List(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	resp := &dto.CajasResumenResponse{
		Cajas:          make([]dto.CajaResponse, 0, len(cajas)),
		TotalesPorTipo: make(map[string]int64, len(model.TiposCaja())),
	}
	for _, t := range model.TiposCaja() {
		resp.TotalesPorTipo[string(t)] = 0
	}
	for i := range cajas {
		resp.Cajas = append(resp.Cajas, cajaToResponse(&cajas[i]))
		resp.TotalesPorTipo[string(cajas[i].Tipo)] += cajas[i].SaldoActual
		resp.TotalGeneral += cajas[i].SaldoActual
	}
	return resp, nil
}

func (s *cajaService) ObtenerCaja(ctx context.Context, id uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.store.Cajas().FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}
	resp := cajaToResponse(caja)
	return &resp, nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.MovimientoFilter) (*dto.MovimientosResponse, error) {
	caja, err := s.store.Cajas().FindByID(ctx, cajaID)
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}
	desde, hasta, err := parseRango(filtro.Desde, filtro.Hasta)
	if err != nil {
		return nil, err
	}
	q := repository.MovimientoQuery{Desde: desde, Hasta: hasta}
	if filtro.Tipo != "" {
		tipo := model.DireccionMovimiento(filtro.Tipo)
		q.Tipo = &tipo
	}
	movs, err := s.store.Cajas().ListMovimientos(ctx, cajaID, q)
	if err != nil {
		return nil, asError(err, "")
	}

	resp := &dto.MovimientosResponse{
		Caja:        cajaToResponse(caja),
		Movimientos: make([]dto.MovimientoResponse, 0, len(movs)),
	}
	for i := range movs {
		resp.Movimientos = append(resp.Movimientos, movimientoToResponse(&movs[i]))
		switch movs[i].Tipo {
		case model.MovEntrada:
			resp.TotalEntradas += movs[i].Monto
		case model.MovSalida:
			resp.TotalSalidas += movs[i].Monto
		}
	}
	return resp, nil
}

// Conciliar recomputes the balance from the movement ledger and compares it with the stored one.
func (s *cajaService) Conciliar(ctx context.Context, cajaID uuid.UUID) (*dto.ConciliacionResponse, error) {
	caja, err := s.store.Cajas().FindByID(ctx, cajaID)
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}
	entradas, salidas, err := s.store.Cajas().SumMovimientos(ctx, cajaID)
	if err != nil {
		return nil, asError(err, "")
	}
	esperado := caja.SaldoInicial + entradas - salidas
	resp := &dto.ConciliacionResponse{
		CajaID:        caja.ID.String(),
		SaldoInicial:  caja.SaldoInicial,
		TotalEntradas: entradas,
		TotalSalidas:  salidas,
		SaldoEsperado: esperado,
		SaldoActual:   caja.SaldoActual,
		Diferencia:    caja.SaldoActual - esperado,
		Cuadra:        caja.SaldoActual == esperado,
	}
	if !resp.Cuadra {
		log.Error().
			Str("caja_id", caja.ID.String()).
			Int64("esperado", esperado).
			Int64("actual", caja.SaldoActual).
			Msg("caja descuadrada")
	}
	return resp, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID, cajaID uuid.UUID, req dto.MovimientoRequest) ([]dto.MovimientoResponse, error) {
	var movs []model.MovimientoCaja
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()
		switch req.Tipo {
		case "transferencia":
			if req.CajaDestinoID == nil {
				return errValidation("caja_destino_id es obligatorio para transferencias")
			}
			destinoID, err := parseUUID(*req.CajaDestinoID, "caja_destino_id")
			if err != nil {
				return err
			}
			movs, err = transferirEntreCajasTx(ctx, tx, cajaID, destinoID, req.Monto, req.Descripcion, &usuarioID, now)
			return err
		case string(model.MovEntrada), string(model.MovSalida):
			m, err := registrarMovimientoTx(ctx, tx, movimiento{
				cajaID:      cajaID,
				tipo:        model.DireccionMovimiento(req.Tipo),
				monto:       req.Monto,
				descripcion: req.Descripcion,
				usuarioID:   &usuarioID,
			}, now)
			if err != nil {
				return err
			}
			movs = []model.MovimientoCaja{*m}
			return nil
		default:
			return errValidation("tipo de movimiento invalido")
		}
	})
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}

	resp := make([]dto.MovimientoResponse, len(movs))
	for i := range movs {
		resp[i] = movimientoToResponse(&movs[i])
	}
	log.Info().
		Str("caja_id", cajaID.String()).
		Str("tipo", req.Tipo).
		Int64("monto", req.Monto).
		Msg("movimiento de caja registrado")
	return resp, nil
}

// ── EliminarCaja ──────────────────────────────────────────────────────────────

func (s *cajaService) EliminarCaja(ctx context.Context, id uuid.UUID) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Cajas().FindByIDForUpdate(ctx, id); err != nil {
			return asError(err, "caja no encontrada")
		}
		n, err := tx.Cajas().CountMovimientos(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errValidation("no se puede eliminar una caja con movimientos registrados")
		}
		return tx.Cajas().Delete(ctx, id)
	})
	return asError(err, "caja no encontrada")
}

func cajaToResponse(c *model.Caja) dto.CajaResponse {
	return dto.CajaResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Tipo:          string(c.Tipo),
		SaldoInicial:  c.SaldoInicial,
		SaldoActual:   c.SaldoActual,
		FechaApertura: fmtTime(c.FechaApertura),
	}
}

func movimientoToResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:            m.ID.String(),
		CajaID:        m.CajaID.String(),
		Tipo:          string(m.Tipo),
		Monto:         m.Monto,
		Descripcion:   m.Descripcion,
		VentaID:       uuidPtrString(m.VentaID),
		AbonoID:       uuidPtrString(m.AbonoID),
		CajaDestinoID: uuidPtrString(m.CajaDestinoID),
		CreatedAt:     fmtTime(m.CreatedAt),
	}
}
