package service

import (
	"testing"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcularMontoComision(t *testing.T) {
	casos := []struct {
		base int64
		pct  int
		want int64
	}{
		{40000, 5, 2000},
		{40000, 3, 1200},
		{330, 5, 17}, // 16.5
		{329, 5, 16}, // 16.45
		{10, 3, 0},
		{0, 5, 0},
		{100000, 0, 0},
	}
	for _, c := range casos {
		assert.Equal(t, c.want, CalcularMontoComision(c.base, c.pct), "base=%d pct=%d", c.base, c.pct)
	}
}

func TestPorcentajeComision(t *testing.T) {
	cfg := model.ConfiguracionPorDefecto()
	assert.Equal(t, 5, PorcentajeComision(model.RolVendedor, &cfg))
	assert.Equal(t, 3, PorcentajeComision(model.RolCobrador, &cfg))
	assert.Equal(t, 5, PorcentajeComision(model.RolAdministrador, &cfg))
}

func TestRangoPeriodo(t *testing.T) {
	dia := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	desde, hasta := RangoPeriodo(model.PeriodoMensual, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, dia(2024, 2, 1), desde)
	assert.Equal(t, dia(2024, 3, 1), hasta)

	desde, hasta = RangoPeriodo(model.PeriodoQuincenal, time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, dia(2024, 3, 1), desde)
	assert.Equal(t, dia(2024, 3, 16), hasta)

	desde, hasta = RangoPeriodo(model.PeriodoQuincenal, time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, dia(2024, 12, 16), desde)
	assert.Equal(t, dia(2025, 1, 1), hasta)
}

func TestGenerarTx_UsaConfiguracion(t *testing.T) {
	f := newFixture(t)
	cfg := model.ConfiguracionPorDefecto()
	cfg.PorcentajeComisionVendedor = 10
	cfg.PeriodoComision = model.PeriodoQuincenal
	require.NoError(t, f.store.Configuracion().Save(f.ctx, &cfg))

	f.ventaCredito(f.vendedor, 100000)

	cs := f.comisionesDe(f.vendedor)
	require.Len(t, cs, 1)
	assert.Equal(t, int64(10000), cs[0].MontoComision)
	assert.Equal(t, "quincenal", cs[0].Periodo)
	assert.NotNil(t, cs[0].VentaID)
	assert.Nil(t, cs[0].AbonoID)
}

func TestListarYLiquidarComisiones(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	_, err := f.abonar(f.cobrador, id, 40000, f.caja)
	require.NoError(t, err)

	rep, err := f.comisiones.Listar(f.ctx, f.admin.ID, dto.ComisionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", rep.Desde)
	assert.Equal(t, "2024-03-31", rep.Hasta)
	assert.Len(t, rep.Comisiones, 2)
	assert.Equal(t, int64(6200), rep.Total)
	assert.Zero(t, rep.TotalPagado)
	require.Len(t, rep.PorUsuario, 2)
	assert.Equal(t, f.vendedor.ID.String(), rep.PorUsuario[0].UsuarioID)
	assert.Equal(t, int64(5000), rep.PorUsuario[0].Pendiente)

	uid := f.cobrador.ID.String()
	liq, err := f.comisiones.Liquidar(f.ctx, dto.LiquidarRequest{UsuarioID: &uid, Desde: "2024-02-01", Hasta: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), liq.Liquidadas)
	assert.Equal(t, int64(1200), liq.Monto)

	rep, err = f.comisiones.Listar(f.ctx, f.admin.ID, dto.ComisionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), rep.TotalPagado)

	// Marking an already paid commission changes nothing.
	res, err := f.comisiones.MarcarPagadas(f.ctx, dto.MarcarPagadasRequest{IDs: []string{f.comisionesDe(f.cobrador)[0].ID.String()}})
	require.NoError(t, err)
	assert.Zero(t, res.Liquidadas)

	res, err = f.comisiones.MarcarPagadas(f.ctx, dto.MarcarPagadasRequest{IDs: []string{f.comisionesDe(f.vendedor)[0].ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Liquidadas)
}

func TestMarcarPagadas_IDInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.comisiones.MarcarPagadas(f.ctx, dto.MarcarPagadasRequest{IDs: []string{"no-es-uuid"}})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestListarComisiones_NoAdminSoloPropias(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	_, err := f.abonar(f.cobrador, id, 40000, f.caja)
	require.NoError(t, err)

	// The usuario_id filter is ignored for non-administrators.
	otro := f.vendedor.ID.String()
	rep, err := f.comisiones.Listar(f.ctx, f.cobrador.ID, dto.ComisionFilter{UsuarioID: otro})
	require.NoError(t, err)
	require.Len(t, rep.Comisiones, 1)
	assert.Equal(t, f.cobrador.ID.String(), rep.Comisiones[0].UsuarioID)
	assert.Equal(t, int64(1200), rep.Total)

	rep, err = f.comisiones.Listar(f.ctx, f.vendedor.ID, dto.ComisionFilter{})
	require.NoError(t, err)
	require.Len(t, rep.Comisiones, 1)
	assert.Equal(t, int64(5000), rep.Total)

	rep, err = f.comisiones.Listar(f.ctx, f.admin.ID, dto.ComisionFilter{UsuarioID: otro})
	require.NoError(t, err)
	require.Len(t, rep.Comisiones, 1)
	assert.Equal(t, otro, rep.Comisiones[0].UsuarioID)
}
