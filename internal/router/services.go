package router

import (
	"time"

	"github.com/hepuentes/creditappweb/internal/config"
	"github.com/hepuentes/creditappweb/internal/infra"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"
	"github.com/hepuentes/creditappweb/internal/service"
	"github.com/hepuentes/creditappweb/internal/worker"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// cobrosCacheTTL outlives the default cron interval so the summary is never
// missing between refreshes.
const cobrosCacheTTL = 30 * time.Minute

// Services is the composition root shared by the HTTP router and the
// background workers started in cmd/server.
type Services struct {
	Dispatcher *worker.Dispatcher
	Mailer     *infra.Mailer

	Auth           service.AuthService
	Clientes       service.ClienteService
	Productos      service.ProductoService
	Configuracion  service.ConfiguracionService
	Comisiones     service.ComisionService
	Cajas          service.CajaService
	Ventas         service.VentaService
	Abonos         service.AbonoService
	Transferencias service.TransferenciaService
	Cobros         service.CobrosService
}

// NewServices wires every service. Dependency graph: Service ← Store ← DB/Redis.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	store := repository.NewStore(db)
	politica := policy.New(cfg.OriginalSellerWrite)
	dispatcher := worker.NewDispatcher(rdb)
	comisiones := service.NewComisionService(store)

	return &Services{
		Dispatcher:     dispatcher,
		Mailer:         infra.NewMailer(cfg),
		Auth:           service.NewAuthService(store.Usuarios(), cfg),
		Clientes:       service.NewClienteService(store.Clientes()),
		Productos:      service.NewProductoService(store.Productos()),
		Configuracion:  service.NewConfiguracionService(store.Configuracion()),
		Comisiones:     comisiones,
		Cajas:          service.NewCajaService(store),
		Ventas:         service.NewVentaService(store, comisiones, politica),
		Abonos:         service.NewAbonoService(store, comisiones, politica, dispatcher),
		Transferencias: service.NewTransferenciaService(store, politica),
		Cobros:         service.NewCobrosService(store, politica, infra.NewCobrosCache(rdb, cobrosCacheTTL), cfg.PhoneRegion),
	}
}
