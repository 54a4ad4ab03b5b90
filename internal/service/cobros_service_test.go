package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fecha(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInformacionCuotas(t *testing.T) {
	casos := []struct {
		nombre string
		total  int64
		saldo  int64
		pagado int64
		want   Cuotas
	}{
		{"sin abonos", 100000, 100000, 0, Cuotas{Total: 1, Pagadas: 0, Monto: 100000, Actual: 1}},
		{"abono parcial", 100000, 60000, 40000, Cuotas{Total: 2, Pagadas: 0, Monto: 50000, Actual: 1}},
		{"primera mitad cubierta", 100000, 50000, 50000, Cuotas{Total: 2, Pagadas: 1, Monto: 50000, Actual: 2}},
		{"todo pagado", 100000, 0, 100000, Cuotas{Total: 2, Pagadas: 2, Monto: 50000, Actual: 3}},
		{"total impar", 99999, 49999, 50000, Cuotas{Total: 2, Pagadas: 1, Monto: 49999, Actual: 2}},
		{"total de una unidad sin abonos", 1, 1, 0, Cuotas{Total: 1, Pagadas: 0, Monto: 1, Actual: 1}},
		{"total de una unidad pagado", 1, 0, 1, Cuotas{Total: 1, Pagadas: 1, Monto: 1, Actual: 2}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			v := &model.Venta{Total: c.total, SaldoPendiente: c.saldo, Tipo: model.VentaCredito}
			assert.Equal(t, c.want, InformacionCuotas(v, c.pagado))
		})
	}
}

func TestVencimientoCuota(t *testing.T) {
	creada := fecha("2024-03-01 17:45")
	assert.Equal(t, fecha("2024-03-31 00:00"), VencimientoCuota(creada, 1))
	assert.Equal(t, fecha("2024-04-30 00:00"), VencimientoCuota(creada, 2))
}

func TestClasificarVenta(t *testing.T) {
	v := &model.Venta{
		ID:             uuid.New(),
		Numero:         7,
		Tipo:           model.VentaCredito,
		Total:          100000,
		SaldoPendiente: 100000,
		Estado:         model.EstadoPendiente,
		CreatedAt:      fecha("2024-03-01 10:00"),
	}

	casos := []struct {
		nombre string
		hoy    string
		pagado int64
		clase  ClaseCobro
		dias   int
		cuota  int
	}{
		{"vence hoy", "2024-03-31 18:00", 0, CobroParaHoy, 0, 1},
		{"vencida", "2024-04-02 08:00", 0, CobroVencido, 2, 1},
		{"proxima", "2024-03-20 08:00", 0, CobroProximo, -11, 1},
		{"segunda cuota proxima", "2024-04-02 08:00", 50000, CobroProximo, -28, 2},
		{"segunda cuota vencida", "2024-05-01 08:00", 50000, CobroVencido, 1, 2},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			item, clase, ok := ClasificarVenta(v, c.pagado, fecha(c.hoy))
			require.True(t, ok)
			assert.Equal(t, c.clase, clase)
			assert.Equal(t, c.dias, item.DiasDiferencia)
			assert.Equal(t, c.cuota, item.NumeroCuota)
		})
	}

	_, _, ok := ClasificarVenta(v, 100000, fecha("2024-03-31 18:00"))
	assert.False(t, ok)
}

func TestClasificar_BucketsYVisibilidad(t *testing.T) {
	f := newFixture(t)
	otro := f.usuario("Otro Vendedor", model.RolVendedor)
	propia := f.ventaCredito(f.vendedor, 100000)
	ajena := f.ventaCredito(otro, 80000)
	pagada := f.ventaCredito(f.vendedor, 5000)
	_, err := f.abonar(f.vendedor, pagada, 5000, f.caja)
	require.NoError(t, err)

	f.reloj.Set(fecha("2024-03-31 12:00"))

	resp, err := f.cobros.Clasificar(f.ctx, f.vendedor.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", resp.Fecha)
	require.Len(t, resp.ParaHoy, 1)
	assert.Equal(t, propia.String(), resp.ParaHoy[0].VentaID)
	assert.Equal(t, "3001234567", resp.ParaHoy[0].ClienteTelefono)
	assert.Empty(t, resp.Vencidos)
	assert.Empty(t, resp.Proximos)
	assert.Equal(t, dto.ResumenBucket{Cantidad: 1, Monto: 100000}, resp.Resumen.ParaHoy)

	resp, err = f.cobros.Clasificar(f.ctx, f.cobrador.ID)
	require.NoError(t, err)
	assert.Len(t, resp.ParaHoy, 2)
	assert.Equal(t, int64(180000), resp.Resumen.ParaHoy.Monto)

	f.reloj.Set(fecha("2024-04-03 12:00"))
	resp, err = f.cobros.Clasificar(f.ctx, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, resp.Vencidos, 2)
	assert.Equal(t, 3, resp.Vencidos[0].DiasDiferencia)
	ids := []string{resp.Vencidos[0].VentaID, resp.Vencidos[1].VentaID}
	assert.ElementsMatch(t, []string{propia.String(), ajena.String()}, ids)
}

func TestClasificar_TransferidaSeMueveAlGestor(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	otro := f.usuario("Otro Cobrador", model.RolCobrador)
	f.transferir(id, f.cobrador)
	f.reloj.Set(fecha("2024-03-20 12:00"))

	resp, err := f.cobros.Clasificar(f.ctx, f.cobrador.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Proximos, 1)

	resp, err = f.cobros.Clasificar(f.ctx, otro.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Proximos)

	// The original seller keeps read access.
	resp, err = f.cobros.Clasificar(f.ctx, f.vendedor.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Proximos, 1)
}

func TestDetalleCuotas(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	_, err := f.abonar(f.vendedor, id, 50000, f.caja)
	require.NoError(t, err)
	f.reloj.Set(fecha("2024-04-02 12:00"))

	resp, err := f.cobros.DetalleCuotas(f.ctx, f.vendedor.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCuotas)
	assert.Equal(t, 1, resp.CuotasPagadas)
	assert.Equal(t, 2, resp.CuotaActual)
	assert.Equal(t, int64(50000), resp.TotalPagado)
	assert.Equal(t, "2024-04-30", resp.FechaVencimiento)
	assert.Equal(t, "proximo", resp.Estado)

	_, err = f.abonar(f.vendedor, id, 50000, f.caja)
	require.NoError(t, err)
	resp, err = f.cobros.DetalleCuotas(f.ctx, f.vendedor.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "al_dia", resp.Estado)
}

func TestRecordatorioWhatsApp(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	f.reloj.Set(fecha("2024-03-31 12:00"))

	resp, err := f.cobros.RecordatorioWhatsApp(f.ctx, f.vendedor.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "573001234567", resp.Telefono)
	assert.Contains(t, resp.Mensaje, "Hola Ana Cliente")
	assert.Contains(t, resp.Mensaje, "cuota 1 de 1 por $100,000")
	assert.Contains(t, resp.Mensaje, "vence hoy")
	assert.True(t, strings.HasPrefix(resp.URL, "https://wa.me/573001234567?text=Hola%20Ana%20Cliente"))
}

func TestRecordatorioWhatsApp_SinTelefono(t *testing.T) {
	f := newFixture(t)
	sinTel := &model.Cliente{Nombre: "Sin Telefono", Cedula: "2020"}
	require.NoError(t, f.store.Clientes().Create(f.ctx, sinTel))
	resp, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: sinTel.ID.String(),
		Tipo:      "credito",
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)

	_, err = f.cobros.RecordatorioWhatsApp(f.ctx, f.vendedor.ID, uuid.MustParse(resp.ID))
	assert.True(t, errors.Is(err, ErrValidation))
}

type cacheFake struct {
	snap *dto.ResumenCobrosSnapshot
	sets int
	err  error
}

func (c *cacheFake) Get(context.Context) (*dto.ResumenCobrosSnapshot, error) { return c.snap, c.err }

func (c *cacheFake) Set(_ context.Context, s *dto.ResumenCobrosSnapshot) error {
	c.sets++
	c.snap = s
	return nil
}

func TestResumenGeneral_Cache(t *testing.T) {
	f := newFixture(t)
	cache := &cacheFake{}
	f.cobros.cache = cache
	f.ventaCredito(f.vendedor, 100000)
	f.reloj.Set(fecha("2024-03-20 12:00"))

	snap, err := f.cobros.ResumenGeneral(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, snap.Resumen.Proximos.Cantidad)

	// A hit is served without recomputing.
	f.ventaCredito(f.vendedor, 100000)
	snap, err = f.cobros.ResumenGeneral(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, snap.Resumen.Proximos.Cantidad)

	snap, err = f.cobros.RefrescarResumen(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
	assert.Equal(t, 2, snap.Resumen.Proximos.Cantidad)
}

func TestResumenGeneral_CacheCaida(t *testing.T) {
	f := newFixture(t)
	f.cobros.cache = &cacheFake{err: errors.New("redis down")}
	f.ventaCredito(f.vendedor, 100000)

	snap, err := f.cobros.ResumenGeneral(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Resumen.Proximos.Cantidad)
}
