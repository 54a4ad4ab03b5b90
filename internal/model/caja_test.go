package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCajaAplicar(t *testing.T) {
	c := &Caja{SaldoInicial: 1000, SaldoActual: 1000}

	require.NoError(t, c.Aplicar(MovEntrada, 500))
	assert.Equal(t, int64(1500), c.SaldoActual)

	require.NoError(t, c.Aplicar(MovSalida, 1500))
	assert.Zero(t, c.SaldoActual)

	assert.ErrorIs(t, c.Aplicar(MovSalida, 1), ErrSaldoCajaInsuficiente)
	assert.Zero(t, c.SaldoActual)
}

func TestCajaRevertir(t *testing.T) {
	c := &Caja{SaldoActual: 1000}
	c.Revertir(MovSalida, 300)
	assert.Equal(t, int64(1300), c.SaldoActual)

	// Reversals are not bounded by the balance.
	c.Revertir(MovEntrada, 2000)
	assert.Equal(t, int64(-700), c.SaldoActual)
}

func TestParseRol(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRol(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRol("cajero")
	assert.Error(t, err)
}
