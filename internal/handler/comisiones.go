package handler

import (
	"net/http"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
)

type ComisionesHandler struct{ svc service.ComisionService }

func NewComisionesHandler(svc service.ComisionService) *ComisionesHandler {
	return &ComisionesHandler{svc: svc}
}

// Listar godoc
// @Summary Reporte de comisiones
// @Description Sin fechas usa el periodo actual (mensual o quincenal segun configuracion).
// @Description Vendedores y cobradores solo ven sus propias comisiones; usuario_id se ignora.
// @Tags comisiones
// @Produce json
// @Security BearerAuth
// @Param usuario_id query string false "UUID del usuario"
// @Param desde      query string false "Fecha YYYY-MM-DD"
// @Param hasta      query string false "Fecha YYYY-MM-DD"
// @Param pagado     query bool   false "Filtra por estado de pago"
// @Success 200 {object} dto.ComisionesReporteResponse
// @Router /v1/comisiones [get]
func (h *ComisionesHandler) Listar(c *gin.Context) {
	var filter dto.ComisionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComisionesHandler) MarcarPagadas(c *gin.Context) {
	var req dto.MarcarPagadasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarcarPagadas(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liquidar marks every unpaid commission of the period as paid.
func (h *ComisionesHandler) Liquidar(c *gin.Context) {
	var req dto.LiquidarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Liquidar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Configuracion Handler ────────────────────────────────────────────────────

type ConfiguracionHandler struct{ svc service.ConfiguracionService }

func NewConfiguracionHandler(svc service.ConfiguracionService) *ConfiguracionHandler {
	return &ConfiguracionHandler{svc: svc}
}

func (h *ConfiguracionHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConfiguracionHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarConfiguracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
