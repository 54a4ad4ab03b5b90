package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatearNumeroWhatsApp(t *testing.T) {
	casos := []struct {
		telefono string
		want     string
	}{
		{"3001234567", "573001234567"},
		{" 300 123 4567 ", "573001234567"},
		{"+57 300 123 4567", "573001234567"},
		{"+1 650 253 0000", "16502530000"},
	}
	for _, c := range casos {
		got, err := FormatearNumeroWhatsApp(c.telefono, "CO")
		require.NoError(t, err, c.telefono)
		assert.Equal(t, c.want, got)
	}
}

func TestFormatearNumeroWhatsApp_Invalido(t *testing.T) {
	_, err := FormatearNumeroWhatsApp("   ", "CO")
	assert.ErrorIs(t, err, ErrTelefonoVacio)

	_, err = FormatearNumeroWhatsApp("12", "CO")
	assert.Error(t, err)

	_, err = FormatearNumeroWhatsApp("no es un numero", "CO")
	assert.Error(t, err)
}

func TestEnlaceWhatsApp(t *testing.T) {
	got := EnlaceWhatsApp("573001234567", "Hola Ana, cuota 1 de 2 por $50,000 & más")
	assert.Equal(t, "https://wa.me/573001234567?text=Hola%20Ana%2C%20cuota%201%20de%202%20por%20%2450%2C000%20%26%20m%C3%A1s", got)
}

func TestFormatearMoneda(t *testing.T) {
	assert.Equal(t, "0", FormatearMoneda(0))
	assert.Equal(t, "999", FormatearMoneda(999))
	assert.Equal(t, "60,000", FormatearMoneda(60000))
	assert.Equal(t, "1,250,000", FormatearMoneda(1250000))
}
