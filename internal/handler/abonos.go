package handler

import (
	"net/http"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
)

type AbonosHandler struct{ svc service.AbonoService }

func NewAbonosHandler(svc service.AbonoService) *AbonosHandler { return &AbonosHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar abono
// @Description  Aplica un pago a una venta a credito, ingresa el monto en la caja indicada y genera la comision del cobrador. El recibo PDF se genera en segundo plano.
// @Tags         abonos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarAbonoRequest true "Abono"
// @Success      201  {object} dto.AbonoResponse
// @Failure      403  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/abonos [post]
func (h *AbonosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAbono(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Editar godoc
// @Summary      Editar abono
// @Description  Reemplaza monto y caja de un abono ajustando saldo y movimientos. La comision no se recalcula.
// @Tags         abonos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "UUID del abono"
// @Param        body body     dto.EditarAbonoRequest true "Nuevos datos"
// @Success      200  {object} dto.AbonoResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/abonos/{id} [put]
func (h *AbonosHandler) Editar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditarAbono(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AbonosHandler) Eliminar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarAbono(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AbonosHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerAbono(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AbonosHandler) Listar(c *gin.Context) {
	var filter dto.AbonoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarAbonos(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
