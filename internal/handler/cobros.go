package handler

import (
	"net/http"

	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
)

type CobrosHandler struct{ svc service.CobrosService }

func NewCobrosHandler(svc service.CobrosService) *CobrosHandler { return &CobrosHandler{svc: svc} }

// Clasificacion godoc
// @Summary      Clasificacion de cobros
// @Description  Agrupa las ventas a credito pendientes visibles para el usuario en para_hoy, vencido y proximo.
// @Tags         cobros
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CobrosResponse
// @Router       /v1/cobros [get]
func (h *CobrosHandler) Clasificacion(c *gin.Context) {
	resp, err := h.svc.Clasificar(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen returns the company-wide snapshot kept fresh by the cobros cron.
func (h *CobrosHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.ResumenGeneral(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CobrosHandler) Cuotas(c *gin.Context) {
	ventaID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DetalleCuotas(c.Request.Context(), middleware.UserID(c), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CobrosHandler) WhatsApp(c *gin.Context) {
	ventaID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.RecordatorioWhatsApp(c.Request.Context(), middleware.UserID(c), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
