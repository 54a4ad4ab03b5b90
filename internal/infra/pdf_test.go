package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerarReciboAbonoPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recibos")
	r := &dto.ReciboAbono{
		AbonoID:        "0b7c5b1e-5d8e-4a43-9d5f-8d7a1c2b3e4f",
		VentaNumero:    42,
		Fecha:          time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
		ClienteNombre:  "Ana Cliente",
		ClienteCedula:  "1010",
		CobradorNombre: "Carlos Cobrador",
		CajaNombre:     "Efectivo principal",
		Monto:          40000,
		TotalVenta:     100000,
		SaldoAnterior:  100000,
		SaldoPosterior: 60000,
		NombreNegocio:  "Créditos Ñandú",
		SimboloMoneda:  "$",
	}

	path, err := GenerarReciboAbonoPDF(r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recibo_"+r.AbonoID+".pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}
