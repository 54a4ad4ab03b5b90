package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"
	"github.com/hepuentes/creditappweb/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// reloj advances one second per reading so records get distinct, ordered timestamps.
type reloj struct {
	mu sync.Mutex
	t  time.Time
}

func (r *reloj) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(time.Second)
	return r.t
}

func (r *reloj) Set(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = t
}

// recibosFake records queued receipts.
type recibosFake struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (f *recibosFake) EncolarRecibo(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memstore.Store
	reloj *reloj

	admin    *model.Usuario
	vendedor *model.Usuario
	cobrador *model.Usuario
	cliente  *model.Cliente
	producto *model.Producto
	caja     *model.Caja

	recibos        *recibosFake
	comisiones     *comisionService
	ventas         *ventaService
	abonos         *abonoService
	cajas          *cajaService
	transferencias *transferenciaService
	cobros         *cobrosService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureCon(t, policy.New(false))
}

func newFixtureCon(t *testing.T, politica policy.Policy) *fixture {
	t.Helper()
	r := &reloj{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memstore.New()
	store.Now = r.Now

	f := &fixture{t: t, ctx: context.Background(), store: store, reloj: r, recibos: &recibosFake{}}
	f.comisiones = &comisionService{store: store, now: r.Now}
	f.ventas = &ventaService{store: store, comisiones: f.comisiones, politica: politica, now: r.Now}
	f.abonos = &abonoService{store: store, comisiones: f.comisiones, politica: politica, recibos: f.recibos, now: r.Now}
	f.cajas = &cajaService{store: store, now: r.Now}
	f.transferencias = &transferenciaService{store: store, politica: politica, now: r.Now}
	f.cobros = &cobrosService{store: store, politica: politica, region: "CO", now: r.Now}

	f.admin = f.usuario("Admin", model.RolAdministrador)
	f.vendedor = f.usuario("Sofia Vendedora", model.RolVendedor)
	f.cobrador = f.usuario("Carlos Cobrador", model.RolCobrador)

	tel := "3001234567"
	f.cliente = &model.Cliente{Nombre: "Ana Cliente", Cedula: "1010", Telefono: &tel}
	require.NoError(t, store.Clientes().Create(f.ctx, f.cliente))

	f.producto = &model.Producto{Codigo: "P-1", Nombre: "Nevera", PrecioVenta: 100000, Stock: 50, StockMinimo: 1}
	require.NoError(t, store.Productos().Create(f.ctx, f.producto))

	f.caja = f.nuevaCaja("Efectivo principal", 0)
	return f
}

func (f *fixture) usuario(nombre string, rol model.Rol) *model.Usuario {
	f.t.Helper()
	u := &model.Usuario{Nombre: nombre, Email: uuid.NewString() + "@test.local", PasswordHash: "x", Rol: rol, Activo: true}
	require.NoError(f.t, f.store.Usuarios().Create(f.ctx, u))
	return u
}

func (f *fixture) nuevaCaja(nombre string, saldo int64) *model.Caja {
	f.t.Helper()
	c := &model.Caja{Nombre: nombre, Tipo: model.CajaEfectivo, SaldoInicial: saldo, SaldoActual: saldo, FechaApertura: f.reloj.Now()}
	require.NoError(f.t, f.store.Cajas().Create(f.ctx, c))
	return c
}

// ventaCredito sells one unit of the fixture product at total.
func (f *fixture) ventaCredito(vendedor *model.Usuario, total int64) uuid.UUID {
	f.t.Helper()
	resp, err := f.ventas.CrearVenta(f.ctx, vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      string(model.VentaCredito),
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1, PrecioUnitario: total}},
	})
	require.NoError(f.t, err)
	return uuid.MustParse(resp.ID)
}

func (f *fixture) abonar(actor *model.Usuario, ventaID uuid.UUID, monto int64, caja *model.Caja) (*dto.AbonoResponse, error) {
	return f.abonos.RegistrarAbono(f.ctx, actor.ID, dto.RegistrarAbonoRequest{
		VentaID: ventaID.String(),
		Monto:   monto,
		CajaID:  caja.ID.String(),
	})
}

func (f *fixture) transferir(ventaID uuid.UUID, destino *model.Usuario) *dto.TransferenciaResponse {
	f.t.Helper()
	resp, err := f.transferencias.Transferir(f.ctx, f.admin.ID, dto.TransferirVentaRequest{
		VentaID:          ventaID.String(),
		UsuarioDestinoID: destino.ID.String(),
		Motivo:           "reasignacion de ruta",
	})
	require.NoError(f.t, err)
	return resp
}

func (f *fixture) venta(id uuid.UUID) *model.Venta {
	f.t.Helper()
	v, err := f.store.Ventas().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return v
}

func (f *fixture) saldoCaja(c *model.Caja) int64 {
	f.t.Helper()
	got, err := f.store.Cajas().FindByID(f.ctx, c.ID)
	require.NoError(f.t, err)
	return got.SaldoActual
}

func (f *fixture) stock() int {
	f.t.Helper()
	p, err := f.store.Productos().FindByID(f.ctx, f.producto.ID)
	require.NoError(f.t, err)
	return p.Stock
}

func (f *fixture) comisionesDe(u *model.Usuario) []model.Comision {
	f.t.Helper()
	id := u.ID
	cs, err := f.store.Comisiones().List(f.ctx, repository.ComisionQuery{UsuarioID: &id})
	require.NoError(f.t, err)
	return cs
}

func (f *fixture) desactivar(u *model.Usuario) {
	f.t.Helper()
	require.NoError(f.t, f.store.Usuarios().SoftDelete(f.ctx, u.ID))
}

// requireCuadra checks the till invariant: balance equals opening plus entradas minus salidas.
func (f *fixture) requireCuadra(c *model.Caja) {
	f.t.Helper()
	resp, err := f.cajas.Conciliar(f.ctx, c.ID)
	require.NoError(f.t, err)
	require.True(f.t, resp.Cuadra, "caja %s descuadrada: %+v", c.Nombre, resp)
}

// requireVentaConsistente checks the balance invariants of a credit sale.
func (f *fixture) requireVentaConsistente(id uuid.UUID) {
	f.t.Helper()
	v := f.venta(id)
	require.NoError(f.t, v.Validar())
	require.GreaterOrEqual(f.t, v.SaldoPendiente, int64(0))
	if v.SaldoPendiente == 0 {
		require.Equal(f.t, model.EstadoPagado, v.Estado)
	}
}
