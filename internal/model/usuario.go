package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rol is the closed set of system roles. Every switch over Rol lists the three
// values explicitly; anything else is rejected at the edges by ParseRol.
type Rol string

const (
	RolAdministrador Rol = "administrador"
	RolVendedor      Rol = "vendedor"
	RolCobrador      Rol = "cobrador"
)

// Roles returns every valid role, in display order.
func Roles() []Rol { return []Rol{RolAdministrador, RolVendedor, RolCobrador} }

// ParseRol converts an external string into a Rol.
func ParseRol(s string) (Rol, error) {
	switch Rol(s) {
	case RolAdministrador, RolVendedor, RolCobrador:
		return Rol(s), nil
	default:
		return "", fmt.Errorf("rol desconocido: %q", s)
	}
}

// PuedeGestionarCartera reports whether users of this role may hold custody of a credit sale.
func (r Rol) PuedeGestionarCartera() bool {
	switch r {
	case RolVendedor, RolCobrador:
		return true
	case RolAdministrador:
		return false
	default:
		return false
	}
}

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          Rol       `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) EsAdmin() bool { return u.Rol == RolAdministrador }
