package service

import (
	"context"
	"strings"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, busqueda string) ([]dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
	now  func() time.Time
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo, now: time.Now}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		ID:        uuid.New(),
		Nombre:    strings.TrimSpace(req.Nombre),
		Cedula:    strings.TrimSpace(req.Cedula),
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, asError(err, "")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "cliente no encontrado")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, busqueda string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, strings.TrimSpace(busqueda))
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		out[i] = clienteToResponse(&clientes[i])
	}
	return out, nil
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:        c.ID.String(),
		Nombre:    c.Nombre,
		Cedula:    c.Cedula,
		Telefono:  c.Telefono,
		Email:     c.Email,
		Direccion: c.Direccion,
	}
}
