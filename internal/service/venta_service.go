package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type VentaService interface {
	CrearVenta(ctx context.Context, vendedorID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, actorID, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, actorID uuid.UUID, filtro dto.VentaFilter) (*dto.VentaListResponse, error)
	EliminarVenta(ctx context.Context, actorID, id uuid.UUID) error
}

type ventaService struct {
	store      repository.Store
	comisiones ComisionService
	politica   policy.Policy
	now        func() time.Time
}

func NewVentaService(store repository.Store, comisiones ComisionService, politica policy.Policy) VentaService {
	return &ventaService{store: store, comisiones: comisiones, politica: politica, now: time.Now}
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
// One transaction:
//   1. lock every product row (sorted by id) and check stock for the whole order
//   2. decrement stock and write a MovimientoStock per line
//   3. insert the venta with its detalles and initial balance
//   4. contado: entrada on the chosen caja
//   5. seller commission in a savepoint (failure logged, never fatal)

func (s *ventaService) CrearVenta(ctx context.Context, vendedorID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	clienteID, err := parseUUID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	tipo := model.TipoVenta(req.Tipo)
	if tipo != model.VentaContado && tipo != model.VentaCredito {
		return nil, errValidation("tipo de venta invalido")
	}
	if len(req.Items) == 0 {
		return nil, errValidation("la venta debe tener al menos un producto")
	}
	var cajaID *uuid.UUID
	if req.CajaID != nil {
		if cajaID, err = parseUUIDOpt(*req.CajaID, "caja_id"); err != nil {
			return nil, err
		}
	}
	if tipo == model.VentaContado && cajaID == nil {
		return nil, errValidation("caja_id es obligatorio en ventas de contado")
	}

	cantidades := map[uuid.UUID]int{}
	lineas := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := parseUUID(it.ProductoID, "producto_id")
		if err != nil {
			return nil, err
		}
		if it.Cantidad < 1 {
			return nil, errValidation("la cantidad debe ser mayor a cero")
		}
		if it.PrecioUnitario < 0 {
			return nil, errValidation("el precio unitario no puede ser negativo")
		}
		cantidades[pid] += it.Cantidad
		lineas = append(lineas, pid)
	}

	var venta *model.Venta
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		vendedor, err := cargarActor(ctx, tx, vendedorID)
		if err != nil {
			return err
		}
		if !policy.PuedeVender(vendedor.Rol) {
			return errForbidden("el rol " + string(vendedor.Rol) + " no puede registrar ventas")
		}
		cliente, err := tx.Clientes().FindByID(ctx, clienteID)
		if err != nil {
			return asError(err, "cliente no encontrado")
		}

		ids := make([]uuid.UUID, 0, len(cantidades))
		for id := range cantidades {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		productos := make(map[uuid.UUID]*model.Producto, len(ids))
		for _, id := range ids {
			p, err := tx.Productos().FindByIDForUpdate(ctx, id)
			if err != nil {
				return asError(err, "producto no encontrado")
			}
			if p.Stock < cantidades[id] {
				return newError(KindInsufficientStock,
					fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", p.Nombre, p.Stock, cantidades[id]))
			}
			productos[id] = p
		}

		now := s.now()
		venta = &model.Venta{
			ID:         uuid.New(),
			ClienteID:  cliente.ID,
			VendedorID: vendedor.ID,
			Tipo:       tipo,
			CreatedAt:  now,
		}
		for i, it := range req.Items {
			p := productos[lineas[i]]
			precio := it.PrecioUnitario
			if precio == 0 {
				precio = p.PrecioVenta
			}
			subtotal := precio * int64(it.Cantidad)
			if precio != 0 && subtotal/precio != int64(it.Cantidad) || venta.Total > math.MaxInt64-subtotal {
				return errValidation("el total de la venta es demasiado grande")
			}
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				ID:             uuid.New(),
				VentaID:        venta.ID,
				ProductoID:     p.ID,
				Cantidad:       it.Cantidad,
				PrecioUnitario: precio,
				Subtotal:       subtotal,
			})
			venta.Total += subtotal
		}
		venta.IniciarSaldo()

		numero, err := tx.Ventas().NextNumero(ctx)
		if err != nil {
			return err
		}
		venta.Numero = numero
		if err := tx.Ventas().Create(ctx, venta); err != nil {
			return err
		}

		for _, id := range ids {
			p := productos[id]
			if err := tx.Productos().UpdateStock(ctx, id, -cantidades[id]); err != nil {
				return err
			}
			vid := venta.ID
			if err := tx.Productos().CreateMovimientoStock(ctx, &model.MovimientoStock{
				ID:            uuid.New(),
				ProductoID:    id,
				Tipo:          model.MovStockVenta,
				Cantidad:      -cantidades[id],
				StockAnterior: p.Stock,
				StockNuevo:    p.Stock - cantidades[id],
				Motivo:        fmt.Sprintf("Venta #%d", venta.Numero),
				VentaID:       &vid,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			if p.Stock-cantidades[id] <= p.StockMinimo {
				log.Info().Str("producto_id", id.String()).Int("stock", p.Stock-cantidades[id]).Msg("stock bajo")
			}
		}

		if tipo == model.VentaContado && venta.Total > 0 {
			vid, uid := venta.ID, vendedor.ID
			if _, err := registrarMovimientoTx(ctx, tx, movimiento{
				cajaID:      *cajaID,
				tipo:        model.MovEntrada,
				monto:       venta.Total,
				descripcion: fmt.Sprintf("Venta de contado #%d", venta.Numero),
				ventaID:     &vid,
				usuarioID:   &uid,
			}, now); err != nil {
				return err
			}
		}

		if venta.Total > 0 {
			vid := venta.ID
			s.comisiones.GenerarTx(ctx, tx, venta.Total, vendedor.ID, &vid, nil)
		}

		venta.Cliente = cliente
		return nil
	})
	if err != nil {
		if KindOf(err) == KindPersistence {
			log.Error().Err(err).Str("cliente_id", req.ClienteID).Str("usuario_id", vendedorID.String()).Msg("venta no registrada")
		}
		return nil, asError(err, "")
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Int64("numero", venta.Numero).
		Str("tipo", string(venta.Tipo)).
		Int64("total", venta.Total).
		Msg("venta registrada")

	resp := ventaToResponse(venta)
	return &resp, nil
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, actorID, id uuid.UUID) (*dto.VentaResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	v, err := s.store.Ventas().FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "venta no encontrada")
	}
	if !s.politica.PuedeVer(v, actor) {
		return nil, errForbidden("no tiene acceso a esta venta")
	}
	resp := ventaToResponse(v)
	return &resp, nil
}

func (s *ventaService) ListarVentas(ctx context.Context, actorID uuid.UUID, filtro dto.VentaFilter) (*dto.VentaListResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	desde, hasta, err := parseRango(filtro.Desde, filtro.Hasta)
	if err != nil {
		return nil, err
	}
	clienteID, err := parseUUIDOpt(filtro.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	offset, limit := paginar(filtro.Page, filtro.Limit)

	q := repository.VentaQuery{Desde: desde, Hasta: hasta, ClienteID: clienteID, Offset: offset, Limit: limit}
	if filtro.Tipo != "" {
		t := model.TipoVenta(filtro.Tipo)
		q.Tipo = &t
	}
	if filtro.Estado != "" {
		e := model.EstadoVenta(filtro.Estado)
		q.Estado = &e
	}
	if !actor.EsAdmin() {
		q.VisiblePara = actor
	}

	ventas, total, err := s.store.Ventas().List(ctx, q)
	if err != nil {
		return nil, asError(err, "")
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:       data,
		Total:      total,
		Page:       offset/limit + 1,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// ── EliminarVenta ─────────────────────────────────────────────────────────────
// Undoes every effect of the sale in one transaction: payments with their till
// movements and commissions, the sale's own movements and commission, and stock.
// Sales with transfer history are kept so the custody audit trail survives.

func (s *ventaService) EliminarVenta(ctx context.Context, actorID, id uuid.UUID) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		actor, err := cargarAdmin(ctx, tx, actorID)
		if err != nil {
			return err
		}
		v, err := tx.Ventas().FindByIDForUpdate(ctx, id)
		if err != nil {
			return asError(err, "venta no encontrada")
		}
		n, err := tx.Transferencias().CountByVenta(ctx, v.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return errValidation("la venta tiene historial de transferencias y no puede eliminarse")
		}

		abonos, err := tx.Abonos().ListByVenta(ctx, v.ID)
		if err != nil {
			return err
		}
		for _, a := range abonos {
			movs, err := tx.Cajas().ListMovimientosByAbono(ctx, a.ID)
			if err != nil {
				return err
			}
			if err := revertirMovimientosTx(ctx, tx, movs); err != nil {
				return err
			}
			if err := tx.Comisiones().DeleteByAbono(ctx, a.ID); err != nil {
				return err
			}
			if err := tx.Abonos().Delete(ctx, a.ID); err != nil {
				return err
			}
		}

		movs, err := tx.Cajas().ListMovimientosByVenta(ctx, v.ID)
		if err != nil {
			return err
		}
		if err := revertirMovimientosTx(ctx, tx, movs); err != nil {
			return err
		}
		if err := tx.Comisiones().DeleteByVenta(ctx, v.ID); err != nil {
			return err
		}

		now := s.now()
		full, err := tx.Ventas().FindByID(ctx, v.ID)
		if err != nil {
			return err
		}
		for _, d := range full.Detalles {
			p, err := tx.Productos().FindByIDForUpdate(ctx, d.ProductoID)
			if err != nil {
				return asError(err, "producto de la venta no encontrado")
			}
			if err := tx.Productos().UpdateStock(ctx, p.ID, d.Cantidad); err != nil {
				return err
			}
			vid := v.ID
			if err := tx.Productos().CreateMovimientoStock(ctx, &model.MovimientoStock{
				ID:            uuid.New(),
				ProductoID:    p.ID,
				Tipo:          model.MovStockRestoreVenta,
				Cantidad:      d.Cantidad,
				StockAnterior: p.Stock,
				StockNuevo:    p.Stock + d.Cantidad,
				Motivo:        fmt.Sprintf("Eliminacion de venta #%d", v.Numero),
				VentaID:       &vid,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
		}

		if err := tx.Ventas().Delete(ctx, v.ID); err != nil {
			return err
		}
		log.Info().
			Str("venta_id", v.ID.String()).
			Int64("numero", v.Numero).
			Int("abonos", len(abonos)).
			Str("usuario_id", actor.ID.String()).
			Msg("venta eliminada")
		return nil
	})
	return asError(err, "")
}

// ── helpers ───────────────────────────────────────────────────────────────────

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:                 v.ID.String(),
		Numero:             v.Numero,
		ClienteID:          v.ClienteID.String(),
		VendedorID:         v.VendedorID.String(),
		GestorID:           v.GestorID().String(),
		Total:              v.Total,
		Tipo:               string(v.Tipo),
		SaldoPendiente:     v.SaldoPendiente,
		Estado:             string(v.Estado),
		Transferida:        v.Transferida,
		VendedorOriginalID: uuidPtrString(v.VendedorOriginalID),
		UsuarioActualID:    uuidPtrString(v.UsuarioActualID),
		FechaTransferencia: fmtTimePtr(v.FechaTransferencia),
		CreatedAt:          fmtTime(v.CreatedAt),
	}
	if v.Cliente != nil {
		resp.ClienteNombre = v.Cliente.Nombre
	}
	for _, d := range v.Detalles {
		item := dto.ItemVentaResponse{
			ProductoID:     d.ProductoID.String(),
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
		if d.Producto != nil {
			item.Producto = d.Producto.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
