package service

import (
	"errors"
	"testing"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferir_AsignaGestor(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)

	resp := f.transferir(id, f.cobrador)
	assert.Equal(t, f.vendedor.ID.String(), resp.UsuarioOrigenID)
	assert.Equal(t, f.cobrador.ID.String(), resp.UsuarioDestinoID)
	assert.Equal(t, f.admin.ID.String(), resp.RealizadaPorID)
	assert.True(t, resp.Revertible)

	v := f.venta(id)
	assert.True(t, v.Transferida)
	require.NotNil(t, v.VendedorOriginalID)
	assert.Equal(t, f.vendedor.ID, *v.VendedorOriginalID)
	require.NotNil(t, v.UsuarioActualID)
	assert.Equal(t, f.cobrador.ID, *v.UsuarioActualID)
	assert.NotNil(t, v.FechaTransferencia)
	assert.Equal(t, f.cobrador.ID, v.GestorID())
	f.requireVentaConsistente(id)
}

func TestTransferir_Precondiciones(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	pagada := f.ventaCredito(f.vendedor, 1000)
	_, err := f.abonar(f.vendedor, pagada, 1000, f.caja)
	require.NoError(t, err)
	inactivo := f.usuario("Inactivo", model.RolCobrador)
	f.desactivar(inactivo)

	casos := []struct {
		nombre  string
		actor   uuid.UUID
		venta   uuid.UUID
		destino uuid.UUID
		kind    ErrorKind
	}{
		{"no admin", f.vendedor.ID, id, f.cobrador.ID, KindForbidden},
		{"venta pagada", f.admin.ID, pagada, f.cobrador.ID, KindValidation},
		{"destino admin", f.admin.ID, id, f.admin.ID, KindValidation},
		{"destino inactivo", f.admin.ID, id, inactivo.ID, KindValidation},
		{"destino inexistente", f.admin.ID, id, uuid.New(), KindValidation},
		{"destino es el gestor", f.admin.ID, id, f.vendedor.ID, KindValidation},
		{"venta inexistente", f.admin.ID, uuid.New(), f.cobrador.ID, KindNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := f.transferencias.Transferir(f.ctx, c.actor, dto.TransferirVentaRequest{
				VentaID:          c.venta.String(),
				UsuarioDestinoID: c.destino.String(),
			})
			assert.Equal(t, c.kind, KindOf(err))
		})
	}
	assert.False(t, f.venta(id).Transferida)
}

func TestTransferir_ContadoNoSeTransfiere(t *testing.T) {
	f := newFixture(t)
	cajaID := f.caja.ID.String()
	resp, err := f.ventas.CrearVenta(f.ctx, f.vendedor.ID, dto.CrearVentaRequest{
		ClienteID: f.cliente.ID.String(),
		Tipo:      "contado",
		CajaID:    &cajaID,
		Items:     []dto.ItemVentaRequest{{ProductoID: f.producto.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)

	_, err = f.transferencias.Transferir(f.ctx, f.admin.ID, dto.TransferirVentaRequest{
		VentaID: resp.ID, UsuarioDestinoID: f.cobrador.ID.String(),
	})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTransferir_VendedorOriginalSoloLectura(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	f.transferir(id, f.cobrador)

	_, err := f.abonar(f.vendedor, id, 10000, f.caja)
	assert.True(t, errors.Is(err, ErrForbidden))

	// Read access survives the transfer.
	_, err = f.ventas.ObtenerVenta(f.ctx, f.vendedor.ID, id)
	assert.NoError(t, err)

	_, err = f.abonar(f.cobrador, id, 10000, f.caja)
	assert.NoError(t, err)
}

func TestTransferir_VendedorOriginalEscritura(t *testing.T) {
	f := newFixtureCon(t, policy.New(true))
	id := f.ventaCredito(f.vendedor, 100000)
	f.transferir(id, f.cobrador)

	resp, err := f.abonar(f.vendedor, id, 10000, f.caja)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), resp.SaldoPendiente)
}

func TestTransferir_OtroCobradorPierdeAcceso(t *testing.T) {
	f := newFixture(t)
	otro := f.usuario("Otro Cobrador", model.RolCobrador)
	id := f.ventaCredito(f.vendedor, 100000)

	// Untransferred credit sales are open to every collector.
	_, err := f.abonar(otro, id, 1000, f.caja)
	require.NoError(t, err)

	f.transferir(id, f.cobrador)
	_, err = f.abonar(otro, id, 1000, f.caja)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestRevertir_UnicoSaltoRestauraVenta(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	rec := f.transferir(id, f.cobrador)

	require.NoError(t, f.transferencias.Revertir(f.ctx, f.admin.ID, uuid.MustParse(rec.ID)))

	v := f.venta(id)
	assert.False(t, v.Transferida)
	assert.Nil(t, v.VendedorOriginalID)
	assert.Nil(t, v.UsuarioActualID)
	assert.Nil(t, v.FechaTransferencia)
	assert.Equal(t, f.vendedor.ID, v.GestorID())

	hist, err := f.transferencias.Historial(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestRevertir_DosSaltos(t *testing.T) {
	f := newFixture(t)
	otro := f.usuario("Otro Cobrador", model.RolCobrador)
	id := f.ventaCredito(f.vendedor, 100000)
	primera := f.transferir(id, f.cobrador)
	segunda := f.transferir(id, otro)
	assert.Equal(t, f.cobrador.ID.String(), segunda.UsuarioOrigenID)

	err := f.transferencias.Revertir(f.ctx, f.admin.ID, uuid.MustParse(primera.ID))
	assert.True(t, errors.Is(err, ErrIrreversibleTransfer))

	require.NoError(t, f.transferencias.Revertir(f.ctx, f.admin.ID, uuid.MustParse(segunda.ID)))
	v := f.venta(id)
	assert.True(t, v.Transferida)
	require.NotNil(t, v.UsuarioActualID)
	assert.Equal(t, f.cobrador.ID, *v.UsuarioActualID)
	require.NotNil(t, v.VendedorOriginalID)
	assert.Equal(t, f.vendedor.ID, *v.VendedorOriginalID)

	hist, err := f.transferencias.Historial(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.True(t, hist[0].Revertible)
}

func TestRevertir_ConAbonoPosterior(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	rec := f.transferir(id, f.cobrador)
	_, err := f.abonar(f.cobrador, id, 10000, f.caja)
	require.NoError(t, err)

	hist, err := f.transferencias.Historial(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.False(t, hist[0].Revertible)

	err = f.transferencias.Revertir(f.ctx, f.admin.ID, uuid.MustParse(rec.ID))
	assert.True(t, errors.Is(err, ErrIrreversibleTransfer))
	assert.True(t, f.venta(id).Transferida)
}

func TestGestor_Respaldo(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	f.transferir(id, f.cobrador)

	g, err := f.transferencias.Gestor(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, f.cobrador.ID.String(), g.UsuarioID)
	assert.False(t, g.Fallback)

	f.desactivar(f.cobrador)
	g, err = f.transferencias.Gestor(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, f.vendedor.ID.String(), g.UsuarioID)
	assert.True(t, g.Fallback)

	f.desactivar(f.vendedor)
	g, err = f.transferencias.Gestor(f.ctx, f.admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID.String(), g.UsuarioID)
	assert.True(t, g.Fallback)

	// With nobody active there is no actor left to ask, so resolve directly.
	f.desactivar(f.admin)
	v, err := f.store.Ventas().FindByID(f.ctx, id)
	require.NoError(t, err)
	_, _, err = resolverGestor(f.ctx, f.store, v)
	assert.True(t, errors.Is(err, ErrNoValidHolder))
}

func TestGestor_SoloConAccesoALaVenta(t *testing.T) {
	f := newFixture(t)
	otro := f.usuario("Otro Vendedor", model.RolVendedor)
	id := f.ventaCredito(f.vendedor, 100000)
	f.transferir(id, f.cobrador)

	_, err := f.transferencias.Gestor(f.ctx, otro.ID, id)
	assert.ErrorIs(t, err, ErrForbidden)

	// The original seller keeps read access after the transfer.
	g, err := f.transferencias.Gestor(f.ctx, f.vendedor.ID, id)
	require.NoError(t, err)
	assert.Equal(t, f.cobrador.ID.String(), g.UsuarioID)
}

func TestGestor_CualquierUsuarioActivo(t *testing.T) {
	f := newFixture(t)
	id := f.ventaCredito(f.vendedor, 100000)
	f.desactivar(f.vendedor)
	f.desactivar(f.admin)

	g, err := f.transferencias.Gestor(f.ctx, f.cobrador.ID, id)
	require.NoError(t, err)
	assert.Equal(t, f.cobrador.ID.String(), g.UsuarioID)
	assert.True(t, g.Fallback)
}

func TestRepararHuerfanas(t *testing.T) {
	f := newFixture(t)
	conHistorial := f.ventaCredito(f.vendedor, 100000)
	sinHistorial := f.ventaCredito(f.vendedor, 100000)
	f.transferir(conHistorial, f.cobrador)

	// Corrupt both sales: flagged as transferred with no holder.
	for _, id := range []uuid.UUID{conHistorial, sinHistorial} {
		v := f.venta(id)
		v.Transferida = true
		v.UsuarioActualID = nil
		require.NoError(t, f.store.Ventas().Update(f.ctx, v))
	}

	res, err := f.transferencias.RepararHuerfanas(f.ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Restauradas)
	assert.Equal(t, 1, res.Desmarcadas)

	v := f.venta(conHistorial)
	require.NotNil(t, v.UsuarioActualID)
	assert.Equal(t, f.cobrador.ID, *v.UsuarioActualID)
	f.requireVentaConsistente(conHistorial)

	v = f.venta(sinHistorial)
	assert.False(t, v.Transferida)
	assert.Nil(t, v.VendedorOriginalID)
	f.requireVentaConsistente(sinHistorial)
}

func TestVentasGestionadasYTransferibles(t *testing.T) {
	f := newFixture(t)
	a := f.ventaCredito(f.vendedor, 100000)
	b := f.ventaCredito(f.vendedor, 50000)
	f.transferir(b, f.cobrador)

	propias, err := f.transferencias.VentasGestionadas(f.ctx, f.vendedor.ID)
	require.NoError(t, err)
	require.Len(t, propias, 1)
	assert.Equal(t, a.String(), propias[0].ID)

	delCobrador, err := f.transferencias.VentasGestionadas(f.ctx, f.cobrador.ID)
	require.NoError(t, err)
	require.Len(t, delCobrador, 1)
	assert.Equal(t, b.String(), delCobrador[0].ID)

	lista, err := f.transferencias.ListarTransferibles(f.ctx)
	require.NoError(t, err)
	assert.Len(t, lista, 2)
}
