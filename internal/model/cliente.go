package model

import (
	"time"

	"github.com/google/uuid"
)

type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Cedula    string    `gorm:"uniqueIndex;not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	CreatedAt time.Time
}
