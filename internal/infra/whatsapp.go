package infra

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ttacon/libphonenumber"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrTelefonoVacio = errors.New("telefono vacio")

// FormatearNumeroWhatsApp normalizes a phone number into the digits-only
// international form wa.me expects. Numbers without a country code are read
// in region (ISO 3166 code, e.g. "CO").
func FormatearNumeroWhatsApp(telefono, region string) (string, error) {
	limpio := strings.TrimSpace(telefono)
	if limpio == "" {
		return "", ErrTelefonoVacio
	}
	num, err := libphonenumber.Parse(limpio, region)
	if err != nil {
		return "", fmt.Errorf("telefono %q: %w", telefono, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("telefono %q no es valido para %s", telefono, region)
	}
	return strings.TrimPrefix(libphonenumber.Format(num, libphonenumber.E164), "+"), nil
}

// EnlaceWhatsApp builds the click-to-chat link with the message prefilled.
func EnlaceWhatsApp(numero, mensaje string) string {
	texto := strings.ReplaceAll(url.QueryEscape(mensaje), "+", "%20")
	return "https://wa.me/" + numero + "?text=" + texto
}

// FormatearMoneda renders whole currency units with thousands separators:
// 60000 → "60,000".
func FormatearMoneda(monto int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", monto)
}
