package service

import (
	"context"
	"strings"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"
)

type ConfiguracionService interface {
	Obtener(ctx context.Context) (*dto.ConfiguracionResponse, error)
	Actualizar(ctx context.Context, req dto.ActualizarConfiguracionRequest) (*dto.ConfiguracionResponse, error)
}

type configuracionService struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionService(repo repository.ConfiguracionRepository) ConfiguracionService {
	return &configuracionService{repo: repo}
}

func (s *configuracionService) Obtener(ctx context.Context) (*dto.ConfiguracionResponse, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	resp := configuracionToResponse(cfg)
	return &resp, nil
}

// Actualizar applies only the fields present in req. New rates affect
// commissions generated from now on.
func (s *configuracionService) Actualizar(ctx context.Context, req dto.ActualizarConfiguracionRequest) (*dto.ConfiguracionResponse, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	if req.NombreEmpresa != nil {
		cfg.NombreEmpresa = strings.TrimSpace(*req.NombreEmpresa)
	}
	if req.Moneda != nil {
		cfg.Moneda = strings.TrimSpace(*req.Moneda)
	}
	if req.PorcentajeComisionVendedor != nil {
		cfg.PorcentajeComisionVendedor = *req.PorcentajeComisionVendedor
	}
	if req.PorcentajeComisionCobrador != nil {
		cfg.PorcentajeComisionCobrador = *req.PorcentajeComisionCobrador
	}
	if req.PeriodoComision != nil {
		switch p := model.PeriodoComision(*req.PeriodoComision); p {
		case model.PeriodoMensual, model.PeriodoQuincenal:
			cfg.PeriodoComision = p
		default:
			return nil, errValidation("periodo de comision invalido")
		}
	}
	if cfg.PorcentajeComisionVendedor < 0 || cfg.PorcentajeComisionVendedor > 100 ||
		cfg.PorcentajeComisionCobrador < 0 || cfg.PorcentajeComisionCobrador > 100 {
		return nil, errValidation("los porcentajes de comision deben estar entre 0 y 100")
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, asError(err, "")
	}
	resp := configuracionToResponse(cfg)
	return &resp, nil
}

func configuracionToResponse(c *model.Configuracion) dto.ConfiguracionResponse {
	return dto.ConfiguracionResponse{
		NombreEmpresa:              c.NombreEmpresa,
		Moneda:                     c.Moneda,
		PorcentajeComisionVendedor: c.PorcentajeComisionVendedor,
		PorcentajeComisionCobrador: c.PorcentajeComisionCobrador,
		PeriodoComision:            string(c.PeriodoComision),
	}
}
