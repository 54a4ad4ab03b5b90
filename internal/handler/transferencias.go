package handler

import (
	"net/http"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
)

type TransferenciasHandler struct{ svc service.TransferenciaService }

func NewTransferenciasHandler(svc service.TransferenciaService) *TransferenciasHandler {
	return &TransferenciasHandler{svc: svc}
}

// Transferir godoc
// @Summary      Transferir custodia de una venta
// @Description  Asigna el cobro de una venta a credito pendiente a otro usuario. Solo administradores.
// @Tags         transferencias
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferirVentaRequest true "Transferencia"
// @Success      201  {object} dto.TransferenciaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/transferencias [post]
func (h *TransferenciasHandler) Transferir(c *gin.Context) {
	var req dto.TransferirVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transferir(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Revertir godoc
// @Summary      Revertir transferencia
// @Description  Solo la ultima transferencia de una venta, y solo si no hubo abonos posteriores.
// @Tags         transferencias
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la transferencia"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/transferencias/{id} [delete]
func (h *TransferenciasHandler) Revertir(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Revertir(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TransferenciasHandler) Historial(c *gin.Context) {
	ventaID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), middleware.UserID(c), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransferenciasHandler) ListarTransferibles(c *gin.Context) {
	resp, err := h.svc.ListarTransferibles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasGestionadas lists the sales whose effective holder is the given user.
func (h *TransferenciasHandler) VentasGestionadas(c *gin.Context) {
	usuarioID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.VentasGestionadas(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransferenciasHandler) Gestor(c *gin.Context) {
	ventaID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Gestor(c.Request.Context(), middleware.UserID(c), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransferenciasHandler) RepararHuerfanas(c *gin.Context) {
	resp, err := h.svc.RepararHuerfanas(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
