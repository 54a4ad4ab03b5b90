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

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context) ([]dto.ProductoResponse, error)
	// MovimientosStock returns the stock ledger of a product, oldest first.
	MovimientosStock(ctx context.Context, id uuid.UUID) ([]dto.MovimientoStockResponse, error)
	// AlertasStock lists products at or below their minimum stock.
	AlertasStock(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
	now  func() time.Time
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo, now: time.Now}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	unidad := strings.TrimSpace(req.Unidad)
	if unidad == "" {
		unidad = "und"
	}
	now := s.now()
	p := &model.Producto{
		ID:           uuid.New(),
		Codigo:       strings.TrimSpace(req.Codigo),
		Nombre:       strings.TrimSpace(req.Nombre),
		Descripcion:  req.Descripcion,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		Unidad:       unidad,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, asError(err, "")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asError(err, "producto no encontrado")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		out[i] = productoToResponse(&productos[i])
	}
	return out, nil
}

func (s *productoService) MovimientosStock(ctx context.Context, id uuid.UUID) ([]dto.MovimientoStockResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, asError(err, "producto no encontrado")
	}
	movs, err := s.repo.ListMovimientosStock(ctx, id)
	if err != nil {
		return nil, asError(err, "")
	}
	out := make([]dto.MovimientoStockResponse, len(movs))
	for i, m := range movs {
		out[i] = dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			VentaID:       uuidPtrString(m.VentaID),
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
	}
	return out, nil
}

func (s *productoService) AlertasStock(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.repo.List(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	out := []dto.AlertaStockResponse{}
	for _, p := range productos {
		if !p.StockBajo() {
			continue
		}
		out = append(out, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			StockActual: p.Stock,
			StockMinimo: p.StockMinimo,
		})
	}
	return out, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		PrecioVenta: p.PrecioVenta,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		StockBajo:   p.StockBajo(),
		Unidad:      p.Unidad,
	}
}
