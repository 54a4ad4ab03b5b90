package router

import (
	"context"
	"time"

	"github.com/hepuentes/creditappweb/internal/config"
	"github.com/hepuentes/creditappweb/internal/handler"
	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/model"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	todos      = []model.Rol{model.RolAdministrador, model.RolVendedor, model.RolCobrador}
	vendedores = []model.Rol{model.RolAdministrador, model.RolVendedor}
)

// New returns a configured Gin engine over svcs. Rate limiter purges stop
// when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.RateLimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.LoginRateLimiter()
	apiLimiter.StartPurge(ctx, 5*time.Minute)
	loginLimiter.StartPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()...))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	usuariosH := handler.NewUsuariosHandler(svcs.Auth)
	clientesH := handler.NewClientesHandler(svcs.Clientes)
	productosH := handler.NewProductosHandler(svcs.Productos)
	ventasH := handler.NewVentasHandler(svcs.Ventas)
	abonosH := handler.NewAbonosHandler(svcs.Abonos)
	cajaH := handler.NewCajaHandler(svcs.Cajas)
	transferenciasH := handler.NewTransferenciasHandler(svcs.Transferencias)
	cobrosH := handler.NewCobrosHandler(svcs.Cobros)
	comisionesH := handler.NewComisionesHandler(svcs.Comisiones)
	configuracionH := handler.NewConfiguracionHandler(svcs.Configuracion)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, svcs.Mailer))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Per-sale access (holder, original seller) is decided
	// by the services; roles here only gate whole features.
	admin := middleware.RequireRole(model.RolAdministrador)
	cualquiera := middleware.RequireRole(todos...)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
			usuarios.GET("/:id/ventas", transferenciasH.VentasGestionadas)
		}

		v1.GET("/clientes", cualquiera, clientesH.Listar)
		v1.GET("/clientes/:id", cualquiera, clientesH.ObtenerPorID)
		v1.POST("/clientes", middleware.RequireRole(vendedores...), clientesH.Crear)

		v1.GET("/productos", cualquiera, productosH.Listar)
		v1.GET("/productos/alertas", admin, productosH.AlertasStock)
		v1.GET("/productos/:id", cualquiera, productosH.ObtenerPorID)
		v1.GET("/productos/:id/movimientos", admin, productosH.MovimientosStock)
		v1.POST("/productos", admin, productosH.Crear)

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", middleware.RequireRole(vendedores...), ventasH.CrearVenta)
			ventas.GET("", cualquiera, ventasH.ListarVentas)
			ventas.GET("/:id", cualquiera, ventasH.ObtenerVenta)
			ventas.DELETE("/:id", admin, ventasH.EliminarVenta)
			ventas.GET("/:id/transferencias", cualquiera, transferenciasH.Historial)
			ventas.GET("/:id/gestor", cualquiera, transferenciasH.Gestor)
			ventas.GET("/:id/cuotas", cualquiera, cobrosH.Cuotas)
			ventas.GET("/:id/recordatorio-whatsapp", cualquiera, cobrosH.WhatsApp)
		}

		abonos := v1.Group("/abonos")
		{
			abonos.POST("", cualquiera, abonosH.Registrar)
			abonos.GET("", cualquiera, abonosH.Listar)
			abonos.GET("/:id", cualquiera, abonosH.Obtener)
			abonos.PUT("/:id", admin, abonosH.Editar)
			abonos.DELETE("/:id", admin, abonosH.Eliminar)
		}

		// Any role may pick a till when collecting; till management is admin only.
		v1.GET("/cajas", cualquiera, cajaH.Listar)
		cajas := v1.Group("/cajas", admin)
		{
			cajas.POST("", cajaH.Crear)
			cajas.GET("/:id", cajaH.Obtener)
			cajas.DELETE("/:id", cajaH.Eliminar)
			cajas.POST("/:id/movimientos", cajaH.RegistrarMovimiento)
			cajas.GET("/:id/movimientos", cajaH.ListarMovimientos)
			cajas.GET("/:id/conciliacion", cajaH.Conciliar)
		}

		transferencias := v1.Group("/transferencias", admin)
		{
			transferencias.POST("", transferenciasH.Transferir)
			transferencias.DELETE("/:id", transferenciasH.Revertir)
			transferencias.GET("/transferibles", transferenciasH.ListarTransferibles)
			transferencias.POST("/reparar", transferenciasH.RepararHuerfanas)
		}

		v1.GET("/cobros", cualquiera, cobrosH.Clasificacion)
		v1.GET("/cobros/resumen", admin, cobrosH.Resumen)

		comisiones := v1.Group("/comisiones")
		{
			comisiones.GET("", cualquiera, comisionesH.Listar)
			comisiones.POST("/marcar-pagadas", admin, comisionesH.MarcarPagadas)
			comisiones.POST("/liquidar", admin, comisionesH.Liquidar)
		}

		v1.GET("/configuracion", cualquiera, configuracionH.Obtener)
		v1.PUT("/configuracion", admin, configuracionH.Actualizar)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
