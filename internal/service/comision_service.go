package service

import (
	"context"
	"sort"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ComisionService interface {
	// GenerarTx records the commission of usuarioID on base inside tx. It never
	// fails the caller: errors are logged and the commission is skipped.
	GenerarTx(ctx context.Context, tx repository.Tx, base int64, usuarioID uuid.UUID, ventaID, abonoID *uuid.UUID) *model.Comision
	// Listar reports commissions of the period. Non-administrators only see their own.
	Listar(ctx context.Context, actorID uuid.UUID, filtro dto.ComisionFilter) (*dto.ComisionesReporteResponse, error)
	MarcarPagadas(ctx context.Context, req dto.MarcarPagadasRequest) (*dto.LiquidacionResponse, error)
	Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error)
}

type comisionService struct {
	store repository.Store
	now   func() time.Time
}

func NewComisionService(store repository.Store) ComisionService {
	return &comisionService{store: store, now: time.Now}
}

// PorcentajeComision picks the configured rate for the role. Administrators
// earn at the seller rate.
func PorcentajeComision(rol model.Rol, cfg *model.Configuracion) int {
	switch rol {
	case model.RolCobrador:
		return cfg.PorcentajeComisionCobrador
	case model.RolVendedor, model.RolAdministrador:
		return cfg.PorcentajeComisionVendedor
	default:
		return cfg.PorcentajeComisionVendedor
	}
}

// CalcularMontoComision returns base*pct/100 rounded half away from zero to whole units.
func CalcularMontoComision(base int64, pct int) int64 {
	return decimal.NewFromInt(base).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// RangoPeriodo returns the [desde, hasta) window of the commission period containing ref.
// Quincenal splits the month into days 1–15 and 16–end.
func RangoPeriodo(p model.PeriodoComision, ref time.Time) (time.Time, time.Time) {
	y, m, d := ref.Date()
	loc := ref.Location()
	inicioMes := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	finMes := inicioMes.AddDate(0, 1, 0)
	switch p {
	case model.PeriodoQuincenal:
		mitad := time.Date(y, m, 16, 0, 0, 0, 0, loc)
		if d <= 15 {
			return inicioMes, mitad
		}
		return mitad, finMes
	case model.PeriodoMensual:
		return inicioMes, finMes
	default:
		return inicioMes, finMes
	}
}

// ── GenerarTx ─────────────────────────────────────────────────────────────────

func (s *comisionService) GenerarTx(ctx context.Context, tx repository.Tx, base int64, usuarioID uuid.UUID, ventaID, abonoID *uuid.UUID) *model.Comision {
	var creada *model.Comision
	err := tx.Savepoint(func(sp repository.Tx) error {
		u, err := sp.Usuarios().FindByID(ctx, usuarioID)
		if err != nil {
			return err
		}
		cfg, err := sp.Configuracion().Get(ctx)
		if err != nil {
			return err
		}
		pct := PorcentajeComision(u.Rol, cfg)
		c := &model.Comision{
			UsuarioID:     usuarioID,
			MontoBase:     base,
			Porcentaje:    pct,
			MontoComision: CalcularMontoComision(base, pct),
			Periodo:       string(cfg.PeriodoComision),
			VentaID:       ventaID,
			AbonoID:       abonoID,
			CreatedAt:     s.now(),
		}
		if err := sp.Comisiones().Create(ctx, c); err != nil {
			return err
		}
		creada = c
		return nil
	})
	if err != nil {
		ev := log.Warn().Err(err).Stringer("kind", KindNonCriticalSideEffect).Str("usuario_id", usuarioID.String()).Int64("monto_base", base)
		if ventaID != nil {
			ev = ev.Str("venta_id", ventaID.String())
		}
		if abonoID != nil {
			ev = ev.Str("abono_id", abonoID.String())
		}
		ev.Msg("comision no generada")
		return nil
	}
	return creada
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *comisionService) Listar(ctx context.Context, actorID uuid.UUID, filtro dto.ComisionFilter) (*dto.ComisionesReporteResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.Configuracion().Get(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	usuarioID := &actor.ID
	if actor.EsAdmin() {
		if usuarioID, err = parseUUIDOpt(filtro.UsuarioID, "usuario_id"); err != nil {
			return nil, err
		}
	}
	desde, hasta, err := parseRango(filtro.Desde, filtro.Hasta)
	if err != nil {
		return nil, err
	}
	if desde == nil && hasta == nil {
		d, h := RangoPeriodo(cfg.PeriodoComision, s.now())
		desde, hasta = &d, &h
	}

	comisiones, err := s.store.Comisiones().List(ctx, repository.ComisionQuery{
		UsuarioID: usuarioID,
		Desde:     desde,
		Hasta:     hasta,
		Pagado:    filtro.Pagado,
	})
	if err != nil {
		return nil, asError(err, "")
	}

	resp := &dto.ComisionesReporteResponse{
		Periodo:    string(cfg.PeriodoComision),
		Comisiones: make([]dto.ComisionResponse, 0, len(comisiones)),
	}
	if desde != nil {
		resp.Desde = desde.Format(fechaLayout)
	}
	if hasta != nil {
		resp.Hasta = hasta.AddDate(0, 0, -1).Format(fechaLayout)
	}

	porUsuario := map[uuid.UUID]*dto.TotalComisionUsuario{}
	for _, c := range comisiones {
		resp.Comisiones = append(resp.Comisiones, comisionToResponse(&c))
		resp.Total += c.MontoComision
		if c.Pagado {
			resp.TotalPagado += c.MontoComision
		}
		t, ok := porUsuario[c.UsuarioID]
		if !ok {
			t = &dto.TotalComisionUsuario{UsuarioID: c.UsuarioID.String()}
			if c.Usuario != nil {
				t.Nombre = c.Usuario.Nombre
			}
			porUsuario[c.UsuarioID] = t
		}
		t.Cantidad++
		t.Total += c.MontoComision
		if !c.Pagado {
			t.Pendiente += c.MontoComision
		}
	}
	for _, t := range porUsuario {
		resp.PorUsuario = append(resp.PorUsuario, *t)
	}
	sort.Slice(resp.PorUsuario, func(i, j int) bool { return resp.PorUsuario[i].Total > resp.PorUsuario[j].Total })
	return resp, nil
}

// ── Liquidacion ───────────────────────────────────────────────────────────────

func (s *comisionService) MarcarPagadas(ctx context.Context, req dto.MarcarPagadasRequest) (*dto.LiquidacionResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := parseUUID(raw, "id de comision")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	var n int64
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		n, err = tx.Comisiones().MarcarPagadas(ctx, ids)
		return err
	})
	if err != nil {
		return nil, asError(err, "")
	}
	return &dto.LiquidacionResponse{Liquidadas: n}, nil
}

// Liquidar marks every unpaid commission of the range (and user, if given) as paid.
func (s *comisionService) Liquidar(ctx context.Context, req dto.LiquidarRequest) (*dto.LiquidacionResponse, error) {
	desde, hasta, err := parseRango(req.Desde, req.Hasta)
	if err != nil {
		return nil, err
	}
	var usuarioID *uuid.UUID
	if req.UsuarioID != nil {
		if usuarioID, err = parseUUIDOpt(*req.UsuarioID, "usuario_id"); err != nil {
			return nil, err
		}
	}

	resp := &dto.LiquidacionResponse{}
	pendiente := false
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		comisiones, err := tx.Comisiones().List(ctx, repository.ComisionQuery{
			UsuarioID: usuarioID, Desde: desde, Hasta: hasta, Pagado: &pendiente,
		})
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(comisiones))
		for i, c := range comisiones {
			ids[i] = c.ID
			resp.Monto += c.MontoComision
		}
		resp.Liquidadas, err = tx.Comisiones().MarcarPagadas(ctx, ids)
		return err
	})
	if err != nil {
		return nil, asError(err, "")
	}
	log.Info().
		Int64("liquidadas", resp.Liquidadas).
		Int64("monto", resp.Monto).
		Str("desde", req.Desde).
		Str("hasta", req.Hasta).
		Msg("comisiones liquidadas")
	return resp, nil
}

func comisionToResponse(c *model.Comision) dto.ComisionResponse {
	r := dto.ComisionResponse{
		ID:            c.ID.String(),
		UsuarioID:     c.UsuarioID.String(),
		MontoBase:     c.MontoBase,
		Porcentaje:    c.Porcentaje,
		MontoComision: c.MontoComision,
		Periodo:       c.Periodo,
		Pagado:        c.Pagado,
		VentaID:       uuidPtrString(c.VentaID),
		AbonoID:       uuidPtrString(c.AbonoID),
		CreatedAt:     fmtTime(c.CreatedAt),
	}
	if c.Usuario != nil {
		r.UsuarioNombre = c.Usuario.Nombre
	}
	return r
}
