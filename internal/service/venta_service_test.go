package service

import (
	"errors"
	"testing"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearVenta_Credito(t *testing.T) {
	f := newFixture(t)

	resp, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "credito",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200000), resp.Total)
	assert.Equal(t, int64(200000), resp.SaldoPendiente)
	assert.Equal(t, "pendiente", resp.Estado)
	assert.Equal(t, f.vendedor.ID.String(), resp.GestorID)
	assert.False(t, resp.Transferida)
	assert.Equal(t, 48, f.stock())

	movs, err := f.store.Productos().ListMovimientosStock(f.ctx, f.producto.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, -2, movs[0].Cantidad)
	assert.Equal(t, 50, movs[0].StockAnterior)
	assert.Equal(t, 48, movs[0].StockNuevo)

	// Credit sales never touch a till.
	assert.Equal(t, int64(0), f.saldoCaja(f.caja))

	cs := f.comisionesDe(f.vendedor)
	require.Len(t, cs, 1)
	assert.Equal(t, int64(10000), cs[0].MontoComision)
	assert.Equal(t, 5, cs[0].Porcentaje)
	f.requireVentaConsistente(uuid.MustParse(resp.ID))
}

func TestCrearVenta_ContadoRegistraEntrada(t *testing.T) {
	f := newFixture(t)
	cajaID := f.caja.ID.String()

	resp, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "contado",
		CajaID:    &cajaID,
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1, PrecioUnitario: 80000}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(80000), resp.Total)
	assert.Equal(t, int64(0), resp.SaldoPendiente)
	assert.Equal(t, "pagado", resp.Estado)
	assert.Equal(t, int64(80000), f.saldoCaja(f.caja))
	f.requireCuadra(f.caja)
	f.requireVentaConsistente(uuid.MustParse(resp.ID))
}

func TestCrearVenta_ContadoSinCaja(t *testing.T) {
	f := newFixture(t)

	_, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "contado",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}},
	})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 50, f.stock())
}

func TestCrearVenta_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	otro := &model.Producto{Codigo: "P-2", Nombre: "Estufa", PrecioVenta: 30000, Stock: 5}
	require.NoError(t, f.store.Productos().Create(f.ctx, otro))

	_, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "credito",
		Items: []dto.ItemVentaRequest{
			{ProductoID: f.producto.ID.String(), Cantidad: 1},
			{ProductoID: otro.ID.String(), Cantidad: 6},
		},
	})
	require.Error(t, err)
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	assert.Equal(t, 50, f.stock())
	p, err := f.store.Productos().FindByID(f.ctx, otro.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	ventas, total, err := f.store.Ventas().List(f.ctx, repository.VentaQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, ventas)
	assert.Empty(t, f.comisionesDe(f.vendedor))
}

func TestCrearVenta_StockAcumuladoPorProducto(t *testing.T) {
	f := newFixture(t)

	// Two lines of 30 exceed the 50 in stock even though each fits alone.
	_, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "credito",
		Items: []dto.ItemVentaRequest{
			{ProductoID: f.producto.ID.String(), Cantidad: 30},
			{ProductoID: f.producto.ID.String(), Cantidad: 30},
		},
	})
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, 50, f.stock())
}

func TestCrearVenta_CobradorNoVende(t *testing.T) {
	f := newFixture(t)

	_, err := f.ventas.CrearVenta(f.ctx, f.cobrador.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "credito",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}},
	})
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, 50, f.stock())
}

func TestCrearVenta_ClienteInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: uuid.NewString(),
		Tipo:      "credito",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}},
	})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "cliente no encontrado")
}

func TestCrearVenta_FalloMovimientoStockRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("productos.CreateMovimientoStock", errors.New("disk full"))

	_, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "credito",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 3}},
	})
	require.Error(t, err)
	assert.Equal(t, KindPersistence, KindOf(err))

	f.store.FailOn("productos.CreateMovimientoStock", nil)
	assert.Equal(t, 50, f.stock())
	_, total, err := f.store.Ventas().List(f.ctx, repository.VentaQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCrearVenta_FalloComisionNoBloquea(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("comisiones.Create", errors.New("constraint"))

	id := f.ventaCredito(f.vendedor, 100000)

	f.store.FailOn("comisiones.Create", nil)
	v := f.venta(id)
	assert.Equal(t, int64(100000), v.SaldoPendiente)
	assert.Equal(t, 49, f.stock())
	assert.Empty(t, f.comisionesDe(f.vendedor))
}

func TestEliminarVenta_RevierteTodo(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	_, err := f.abonar(f.cobrador, id, 40000, f.caja)
	require.NoError(t, err)
	require.Equal(t, int64(40000), f.saldoCaja(f.caja))

	require.NoError(t, f.ventas.EliminarVenta(f.ctx, f.admin.ID, id))

	_, err = f.store.Ventas().FindByID(f.ctx, id)
	assert.Error(t, err)
	assert.Equal(t, 50, f.stock())
	assert.Equal(t, int64(0), f.saldoCaja(f.caja))
	assert.Empty(t, f.comisionesDe(f.vendedor))
	assert.Empty(t, f.comisionesDe(f.cobrador))
	abonos, err := f.store.Abonos().ListByVenta(f.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, abonos)
	f.requireCuadra(f.caja)
}

func TestEliminarVenta_SoloAdmin(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)

	err := f.ventas.EliminarVenta(f.ctx, f.vendedor.ID, id)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, 49, f.stock())
}

func TestEliminarVenta_ConTransferenciasSeRechaza(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	f.transferir(id, f.cobrador)

	err := f.ventas.EliminarVenta(f.ctx, f.admin.ID, id)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, int64(100000), f.venta(id).SaldoPendiente)
}

func TestListarVentas_Visibilidad(t *testing.T) {
	f := newFixture(t)
	otro := f.usuario("Otro Vendedor", model.RolVendedor)
	propia := f.ventaCredito(f.vendedor, 100000)
	ajena := f.ventaCredito(otro, 50000)

	resp, err := f.ventas.ListarVentas(f.ctx, f.vendedor.ID, dto.VentaFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, propia.String(), resp.Data[0].ID)

	resp, err = f.ventas.ListarVentas(f.ctx, f.admin.ID, dto.VentaFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)

	_, err = f.ventas.ObtenerVenta(f.ctx, f.vendedor.ID, ajena)
	assert.True(t, errors.Is(err, ErrForbidden))
}
