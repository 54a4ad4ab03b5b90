package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ventaCredito(total int64) *Venta {
	v := &Venta{Tipo: VentaCredito, Total: total, VendedorID: uuid.New()}
	v.IniciarSaldo()
	return v
}

func TestIniciarSaldo(t *testing.T) {
	v := ventaCredito(100000)
	assert.Equal(t, int64(100000), v.SaldoPendiente)
	assert.Equal(t, EstadoPendiente, v.Estado)

	v = ventaCredito(0)
	assert.Equal(t, EstadoPagado, v.Estado)

	c := &Venta{Tipo: VentaContado, Total: 5000}
	c.IniciarSaldo()
	assert.Zero(t, c.SaldoPendiente)
	assert.Equal(t, EstadoPagado, c.Estado)
	assert.NoError(t, c.Validar())
}

func TestAplicarAbono(t *testing.T) {
	v := ventaCredito(100000)

	require.NoError(t, v.AplicarAbono(40000))
	assert.Equal(t, int64(60000), v.SaldoPendiente)
	assert.Equal(t, EstadoPendiente, v.Estado)

	assert.ErrorIs(t, v.AplicarAbono(60001), ErrAbonoExcedeSaldo)
	assert.ErrorIs(t, v.AplicarAbono(0), ErrAbonoNoPositivo)
	assert.ErrorIs(t, v.AplicarAbono(-1), ErrAbonoNoPositivo)
	assert.Equal(t, int64(60000), v.SaldoPendiente)

	require.NoError(t, v.AplicarAbono(60000))
	assert.Zero(t, v.SaldoPendiente)
	assert.Equal(t, EstadoPagado, v.Estado)
	assert.NoError(t, v.Validar())

	c := &Venta{Tipo: VentaContado, Total: 5000}
	c.IniciarSaldo()
	assert.ErrorIs(t, c.AplicarAbono(1), ErrVentaNoEsCredito)
}

func TestReemplazarAbono(t *testing.T) {
	v := ventaCredito(100000)
	require.NoError(t, v.AplicarAbono(40000))

	require.NoError(t, v.ReemplazarAbono(40000, 25000))
	assert.Equal(t, int64(75000), v.SaldoPendiente)

	assert.ErrorIs(t, v.ReemplazarAbono(25000, 100001), ErrAbonoExcedeSaldo)
	assert.ErrorIs(t, v.ReemplazarAbono(25000, 0), ErrAbonoNoPositivo)

	require.NoError(t, v.ReemplazarAbono(25000, 100000))
	assert.Zero(t, v.SaldoPendiente)
	assert.Equal(t, EstadoPagado, v.Estado)
}

func TestRevertirAbono(t *testing.T) {
	v := ventaCredito(100000)
	require.NoError(t, v.AplicarAbono(100000))
	v.RevertirAbono(30000)
	assert.Equal(t, int64(30000), v.SaldoPendiente)
	assert.Equal(t, EstadoPendiente, v.Estado)
	assert.NoError(t, v.Validar())
}

func TestGestorID(t *testing.T) {
	v := ventaCredito(100000)
	assert.Equal(t, v.VendedorID, v.GestorID())

	actual := uuid.New()
	original := v.VendedorID
	v.Transferida = true
	v.VendedorOriginalID = &original
	v.UsuarioActualID = &actual
	assert.Equal(t, actual, v.GestorID())

	// A flagged sale with no holder falls back to the seller.
	v.UsuarioActualID = nil
	assert.Equal(t, v.VendedorID, v.GestorID())
}

func TestValidar(t *testing.T) {
	holder := uuid.New()
	casos := []struct {
		nombre string
		venta  Venta
	}{
		{"contado con saldo", Venta{Tipo: VentaContado, Total: 10, SaldoPendiente: 5, Estado: EstadoPendiente}},
		{"saldo negativo", Venta{Tipo: VentaCredito, Total: 10, SaldoPendiente: -1, Estado: EstadoPendiente}},
		{"saldo mayor al total", Venta{Tipo: VentaCredito, Total: 10, SaldoPendiente: 11, Estado: EstadoPendiente}},
		{"saldo cero pendiente", Venta{Tipo: VentaCredito, Total: 10, SaldoPendiente: 0, Estado: EstadoPendiente}},
		{"gestor sin transferencia", Venta{Tipo: VentaCredito, Total: 10, SaldoPendiente: 10, Estado: EstadoPendiente, UsuarioActualID: &holder}},
		{"tipo desconocido", Venta{Tipo: "fiado", Total: 10}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			assert.ErrorIs(t, c.venta.Validar(), ErrVentaInconsistente)
		})
	}
}
