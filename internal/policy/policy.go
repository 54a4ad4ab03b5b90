// Package policy decides who may act on a sale and who may see it.
package policy

import "github.com/hepuentes/creditappweb/internal/model"

// AccesoOriginal is how the original seller is treated once a sale has been
// transferred away from them.
type AccesoOriginal int

const (
	// OriginalSoloLectura lets the original seller see the sale but not act on it.
	OriginalSoloLectura AccesoOriginal = iota
	// OriginalEscritura keeps full access for the original seller.
	OriginalEscritura
)

func (a AccesoOriginal) String() string {
	switch a {
	case OriginalSoloLectura:
		return "solo_lectura"
	case OriginalEscritura:
		return "escritura"
	default:
		return "desconocido"
	}
}

type Policy struct {
	Original AccesoOriginal
}

func New(originalEscritura bool) Policy {
	if originalEscritura {
		return Policy{Original: OriginalEscritura}
	}
	return Policy{Original: OriginalSoloLectura}
}

// PuedeGestionar reports whether u may register payments or otherwise act on v.
func (p Policy) PuedeGestionar(v *model.Venta, u *model.Usuario) bool {
	if u == nil || !u.Activo {
		return false
	}
	switch u.Rol {
	case model.RolAdministrador:
		return true
	case model.RolVendedor:
		if !v.Transferida {
			return v.VendedorID == u.ID
		}
		if esGestorActual(v, u) {
			return true
		}
		return p.Original == OriginalEscritura && esVendedorOriginal(v, u)
	case model.RolCobrador:
		if !v.Transferida {
			return true
		}
		return esGestorActual(v, u)
	default:
		return false
	}
}

// PuedeVer is PuedeGestionar plus read access for the original seller of a
// transferred sale.
func (p Policy) PuedeVer(v *model.Venta, u *model.Usuario) bool {
	if p.PuedeGestionar(v, u) {
		return true
	}
	if u == nil || !u.Activo {
		return false
	}
	switch u.Rol {
	case model.RolVendedor:
		return v.Transferida && esVendedorOriginal(v, u)
	case model.RolAdministrador, model.RolCobrador:
		return false
	default:
		return false
	}
}

// PuedeVender reports whether the role may register new sales.
func PuedeVender(rol model.Rol) bool {
	switch rol {
	case model.RolAdministrador, model.RolVendedor:
		return true
	case model.RolCobrador:
		return false
	default:
		return false
	}
}

func esGestorActual(v *model.Venta, u *model.Usuario) bool {
	return v.UsuarioActualID != nil && *v.UsuarioActualID == u.ID
}

func esVendedorOriginal(v *model.Venta, u *model.Usuario) bool {
	if v.VendedorOriginalID != nil {
		return *v.VendedorOriginalID == u.ID
	}
	return v.VendedorID == u.ID
}
