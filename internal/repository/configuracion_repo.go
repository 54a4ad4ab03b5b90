package repository

import (
	"context"
	"errors"

	"github.com/hepuentes/creditappweb/internal/model"

	"gorm.io/gorm"
)

type ConfiguracionRepository interface {
	// Get returns the settings row, or the defaults when the table is empty.
	Get(ctx context.Context) (*model.Configuracion, error)
	Save(ctx context.Context, c *model.Configuracion) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) Get(ctx context.Context) (*model.Configuracion, error) {
	var c model.Configuracion
	err := r.db.WithContext(ctx).Order("id ASC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := model.ConfiguracionPorDefecto()
		return &def, nil
	}
	return &c, err
}

func (r *configuracionRepo) Save(ctx context.Context, c *model.Configuracion) error {
	if c.ID == 0 {
		c.ID = 1
	}
	return r.db.WithContext(ctx).Save(c).Error
}
