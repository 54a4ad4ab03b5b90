package policy

import (
	"testing"

	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func usuario(rol model.Rol) *model.Usuario {
	return &model.Usuario{ID: uuid.New(), Rol: rol, Activo: true}
}

func ventaDe(vendedor *model.Usuario) *model.Venta {
	return &model.Venta{
		ID:             uuid.New(),
		VendedorID:     vendedor.ID,
		Tipo:           model.VentaCredito,
		Total:          100000,
		SaldoPendiente: 100000,
		Estado:         model.EstadoPendiente,
	}
}

func transferir(v *model.Venta, a *model.Usuario) {
	if !v.Transferida {
		orig := v.VendedorID
		v.VendedorOriginalID = &orig
		v.Transferida = true
	}
	id := a.ID
	v.UsuarioActualID = &id
}

func TestPuedeGestionar_VentaSinTransferir(t *testing.T) {
	p := New(false)
	s1 := usuario(model.RolVendedor)
	s2 := usuario(model.RolVendedor)
	c1 := usuario(model.RolCobrador)
	admin := usuario(model.RolAdministrador)
	v := ventaDe(s1)

	assert.True(t, p.PuedeGestionar(v, s1))
	assert.False(t, p.PuedeGestionar(v, s2))
	assert.True(t, p.PuedeGestionar(v, c1), "collectors manage every untransferred sale")
	assert.True(t, p.PuedeGestionar(v, admin))
}

func TestPuedeGestionar_VentaTransferida_SoloLectura(t *testing.T) {
	p := New(false)
	s1 := usuario(model.RolVendedor)
	c1 := usuario(model.RolCobrador)
	c2 := usuario(model.RolCobrador)
	admin := usuario(model.RolAdministrador)
	v := ventaDe(s1)
	transferir(v, c1)

	assert.True(t, p.PuedeGestionar(v, c1))
	assert.False(t, p.PuedeGestionar(v, c2))
	assert.False(t, p.PuedeGestionar(v, s1), "original seller is read-only after transfer")
	assert.True(t, p.PuedeVer(v, s1))
	assert.False(t, p.PuedeVer(v, c2))
	assert.True(t, p.PuedeGestionar(v, admin))
}

func TestPuedeGestionar_VentaTransferida_OriginalConEscritura(t *testing.T) {
	p := New(true)
	s1 := usuario(model.RolVendedor)
	s2 := usuario(model.RolVendedor)
	c1 := usuario(model.RolCobrador)
	v := ventaDe(s1)
	transferir(v, c1)

	assert.True(t, p.PuedeGestionar(v, s1))
	assert.True(t, p.PuedeGestionar(v, c1))
	assert.False(t, p.PuedeGestionar(v, s2))
}

func TestPuedeGestionar_TransferidaAOtroVendedor(t *testing.T) {
	p := New(false)
	s1 := usuario(model.RolVendedor)
	s2 := usuario(model.RolVendedor)
	c1 := usuario(model.RolCobrador)
	v := ventaDe(s1)
	transferir(v, s2)

	assert.True(t, p.PuedeGestionar(v, s2))
	assert.False(t, p.PuedeGestionar(v, c1), "collectors lose access once the sale has a holder")
}

func TestPuedeGestionar_UsuarioInactivo(t *testing.T) {
	p := New(true)
	admin := usuario(model.RolAdministrador)
	admin.Activo = false
	s1 := usuario(model.RolVendedor)
	v := ventaDe(s1)

	assert.False(t, p.PuedeGestionar(v, admin))
	assert.False(t, p.PuedeVer(v, admin))
	assert.False(t, p.PuedeGestionar(v, nil))
}

func TestPuedeVender(t *testing.T) {
	assert.True(t, PuedeVender(model.RolAdministrador))
	assert.True(t, PuedeVender(model.RolVendedor))
	assert.False(t, PuedeVender(model.RolCobrador))
	assert.False(t, PuedeVender(model.Rol("gerente")))
}
