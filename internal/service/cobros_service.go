package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/infra"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// diasPorCuota is the spacing between due dates of the installment heuristic.
const diasPorCuota = 30

// ClaseCobro is the bucket a due installment falls into.
type ClaseCobro int

const (
	CobroParaHoy ClaseCobro = iota
	CobroVencido
	CobroProximo
)

func (c ClaseCobro) String() string {
	switch c {
	case CobroParaHoy:
		return "para_hoy"
	case CobroVencido:
		return "vencido"
	case CobroProximo:
		return "proximo"
	default:
		return "desconocido"
	}
}

// Cuotas is the simplified installment view of a credit sale. It is a
// heuristic, not an amortization schedule: a sale with payments is split in
// two halves of the total, a sale without payments is one installment of the
// outstanding balance.
type Cuotas struct {
	Total   int
	Pagadas int
	Monto   int64
	Actual  int
}

// InformacionCuotas derives the installment view from what has been paid.
func InformacionCuotas(v *model.Venta, pagado int64) Cuotas {
	if pagado <= 0 {
		return Cuotas{Total: 1, Monto: v.SaldoPendiente, Actual: 1}
	}
	monto := v.Total / 2
	if monto == 0 {
		// Totals of one unit cannot be halved.
		pagadas := 0
		if pagado >= v.Total {
			pagadas = 1
		}
		return Cuotas{Total: 1, Pagadas: pagadas, Monto: v.Total, Actual: pagadas + 1}
	}
	pagadas := int(pagado / monto)
	if pagadas > 2 {
		pagadas = 2
	}
	return Cuotas{Total: 2, Pagadas: pagadas, Monto: monto, Actual: pagadas + 1}
}

// VencimientoCuota is the due date of installment n of a sale created at creada.
func VencimientoCuota(creada time.Time, n int) time.Time {
	return inicioDelDia(creada).AddDate(0, 0, n*diasPorCuota)
}

// diasEntre counts calendar days from a to b, ignoring the time of day.
func diasEntre(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	fa := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	fb := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(fb.Sub(fa).Hours() / 24)
}

// ClasificarVenta places the current installment of v relative to hoy. ok is
// false when every installment is already covered.
func ClasificarVenta(v *model.Venta, pagado int64, hoy time.Time) (item dto.CobroItem, clase ClaseCobro, ok bool) {
	c := InformacionCuotas(v, pagado)
	if c.Actual > c.Total {
		return dto.CobroItem{}, 0, false
	}
	vence := VencimientoCuota(v.CreatedAt, c.Actual)
	diff := diasEntre(vence, hoy)

	item = dto.CobroItem{
		VentaID:           v.ID.String(),
		VentaNumero:       v.Numero,
		ClienteID:         v.ClienteID.String(),
		NumeroCuota:       c.Actual,
		TotalCuotas:       c.Total,
		MontoCuota:        c.Monto,
		SaldoPendiente:    v.SaldoPendiente,
		FechaVencimiento:  vence.Format(fechaLayout),
		DiasDiferencia:    diff,
		DiasTranscurridos: diasEntre(v.CreatedAt, hoy),
	}
	if v.Cliente != nil {
		item.ClienteNombre = v.Cliente.Nombre
		if v.Cliente.Telefono != nil {
			item.ClienteTelefono = *v.Cliente.Telefono
		}
	}

	switch {
	case diff == 0:
		clase = CobroParaHoy
	case diff > 0:
		clase = CobroVencido
	default:
		clase = CobroProximo
	}
	return item, clase, true
}

// ResumenCache stores the company-wide collections summary between cron runs.
// Get returns nil without error on a miss.
type ResumenCache interface {
	Get(ctx context.Context) (*dto.ResumenCobrosSnapshot, error)
	Set(ctx context.Context, snap *dto.ResumenCobrosSnapshot) error
}

type CobrosService interface {
	Clasificar(ctx context.Context, actorID uuid.UUID) (*dto.CobrosResponse, error)
	// ResumenGeneral serves the cached summary, computing it on a miss.
	ResumenGeneral(ctx context.Context) (*dto.ResumenCobrosSnapshot, error)
	// RefrescarResumen recomputes the summary and stores it in the cache.
	RefrescarResumen(ctx context.Context) (*dto.ResumenCobrosSnapshot, error)
	DetalleCuotas(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.CuotasResponse, error)
	RecordatorioWhatsApp(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.RecordatorioResponse, error)
}

type cobrosService struct {
	store    repository.Store
	politica policy.Policy
	cache    ResumenCache
	region   string
	now      func() time.Time
}

// NewCobrosService builds the collections classifier. cache may be nil.
// region is the default phone region for WhatsApp numbers.
func NewCobrosService(store repository.Store, politica policy.Policy, cache ResumenCache, region string) CobrosService {
	return &cobrosService{store: store, politica: politica, cache: cache, region: region, now: time.Now}
}

// clasificar reads open credit sales without a transaction; the result may mix
// rows read at slightly different moments.
func (s *cobrosService) clasificar(ctx context.Context, visible func(*model.Venta) bool) (*dto.CobrosResponse, error) {
	ventas, err := s.store.Ventas().ListCreditoPendientes(ctx)
	if err != nil {
		return nil, err
	}
	elegidas := make([]*model.Venta, 0, len(ventas))
	ids := make([]uuid.UUID, 0, len(ventas))
	for i := range ventas {
		v := &ventas[i]
		if v.SaldoPendiente <= 0 || v.Estado != model.EstadoPendiente || !visible(v) {
			continue
		}
		elegidas = append(elegidas, v)
		ids = append(ids, v.ID)
	}
	pagados, err := s.store.Abonos().SumByVentas(ctx, ids)
	if err != nil {
		return nil, err
	}

	hoy := s.now()
	resp := &dto.CobrosResponse{
		Fecha:    hoy.Format(fechaLayout),
		ParaHoy:  []dto.CobroItem{},
		Vencidos: []dto.CobroItem{},
		Proximos: []dto.CobroItem{},
	}
	for _, v := range elegidas {
		item, clase, ok := ClasificarVenta(v, pagados[v.ID], hoy)
		if !ok {
			continue
		}
		switch clase {
		case CobroParaHoy:
			resp.ParaHoy = append(resp.ParaHoy, item)
			sumar(&resp.Resumen.ParaHoy, item)
		case CobroVencido:
			resp.Vencidos = append(resp.Vencidos, item)
			sumar(&resp.Resumen.Vencidos, item)
		case CobroProximo:
			resp.Proximos = append(resp.Proximos, item)
			sumar(&resp.Resumen.Proximos, item)
		}
	}
	// Most overdue first, soonest upcoming first.
	sort.SliceStable(resp.Vencidos, func(i, j int) bool {
		return resp.Vencidos[i].DiasDiferencia > resp.Vencidos[j].DiasDiferencia
	})
	sort.SliceStable(resp.Proximos, func(i, j int) bool {
		return resp.Proximos[i].DiasDiferencia > resp.Proximos[j].DiasDiferencia
	})
	return resp, nil
}

func sumar(b *dto.ResumenBucket, item dto.CobroItem) {
	b.Cantidad++
	b.Monto += item.MontoCuota
}

func (s *cobrosService) Clasificar(ctx context.Context, actorID uuid.UUID) (*dto.CobrosResponse, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, asError(err, "")
	}
	resp, err := s.clasificar(ctx, func(v *model.Venta) bool { return s.politica.PuedeVer(v, actor) })
	if err != nil {
		return nil, asError(err, "")
	}
	return resp, nil
}

func (s *cobrosService) RefrescarResumen(ctx context.Context) (*dto.ResumenCobrosSnapshot, error) {
	resp, err := s.clasificar(ctx, func(*model.Venta) bool { return true })
	if err != nil {
		return nil, asError(err, "")
	}
	snap := &dto.ResumenCobrosSnapshot{GeneradoEn: fmtTime(s.now()), Resumen: resp.Resumen}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("resumen de cobros no cacheado")
		}
	}
	return snap, nil
}

func (s *cobrosService) ResumenGeneral(ctx context.Context) (*dto.ResumenCobrosSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("cache de cobros no disponible")
		}
		if snap != nil {
			return snap, nil
		}
	}
	return s.RefrescarResumen(ctx)
}

// ventaVisible loads a sale the actor is allowed to see.
func (s *cobrosService) ventaVisible(ctx context.Context, actorID, ventaID uuid.UUID) (*model.Venta, error) {
	actor, err := cargarActor(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Ventas().FindByID(ctx, ventaID)
	if err != nil {
		return nil, asError(err, "venta no encontrada")
	}
	if !s.politica.PuedeVer(v, actor) {
		return nil, errForbidden("no tiene acceso a esta venta")
	}
	if !v.EsCredito() {
		return nil, errValidation("la venta no es a credito")
	}
	return v, nil
}

func (s *cobrosService) DetalleCuotas(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.CuotasResponse, error) {
	v, err := s.ventaVisible(ctx, actorID, ventaID)
	if err != nil {
		return nil, asError(err, "")
	}
	pagados, err := s.store.Abonos().SumByVentas(ctx, []uuid.UUID{v.ID})
	if err != nil {
		return nil, asError(err, "")
	}
	pagado := pagados[v.ID]
	c := InformacionCuotas(v, pagado)
	resp := &dto.CuotasResponse{
		VentaID:       v.ID.String(),
		TotalCuotas:   c.Total,
		CuotasPagadas: c.Pagadas,
		MontoCuota:    c.Monto,
		TotalPagado:   pagado,
		CuotaActual:   c.Actual,
		Estado:        "al_dia",
	}
	if v.Estado == model.EstadoPagado {
		return resp, nil
	}
	if item, clase, ok := ClasificarVenta(v, pagado, s.now()); ok {
		resp.FechaVencimiento = item.FechaVencimiento
		resp.DiasDiferencia = item.DiasDiferencia
		resp.Estado = clase.String()
	}
	return resp, nil
}

func (s *cobrosService) RecordatorioWhatsApp(ctx context.Context, actorID, ventaID uuid.UUID) (*dto.RecordatorioResponse, error) {
	v, err := s.ventaVisible(ctx, actorID, ventaID)
	if err != nil {
		return nil, asError(err, "")
	}
	if v.Estado == model.EstadoPagado || v.SaldoPendiente <= 0 {
		return nil, errValidation("la venta no tiene saldo pendiente")
	}
	if v.Cliente == nil || v.Cliente.Telefono == nil || *v.Cliente.Telefono == "" {
		return nil, errValidation("el cliente no tiene telefono registrado")
	}
	numero, err := infra.FormatearNumeroWhatsApp(*v.Cliente.Telefono, s.region)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Msg: "el telefono del cliente no es valido", Err: err}
	}
	pagados, err := s.store.Abonos().SumByVentas(ctx, []uuid.UUID{v.ID})
	if err != nil {
		return nil, asError(err, "")
	}
	cfg, err := s.store.Configuracion().Get(ctx)
	if err != nil {
		return nil, asError(err, "")
	}
	item, clase, ok := ClasificarVenta(v, pagados[v.ID], s.now())
	if !ok {
		return nil, errValidation("la venta no tiene cuotas pendientes")
	}

	mensaje := mensajeRecordatorio(v.Cliente.Nombre, item, clase, cfg)
	return &dto.RecordatorioResponse{
		VentaID:  v.ID.String(),
		Telefono: numero,
		Mensaje:  mensaje,
		URL:      infra.EnlaceWhatsApp(numero, mensaje),
	}, nil
}

func mensajeRecordatorio(cliente string, item dto.CobroItem, clase ClaseCobro, cfg *model.Configuracion) string {
	var cuando string
	switch clase {
	case CobroParaHoy:
		cuando = "vence hoy"
	case CobroVencido:
		cuando = fmt.Sprintf("esta vencida hace %s", plural(item.DiasDiferencia, "dia", "dias"))
	case CobroProximo:
		cuando = fmt.Sprintf("vence en %s", plural(-item.DiasDiferencia, "dia", "dias"))
	}
	return fmt.Sprintf(
		"Hola %s, le recordamos que su cuota %d de %d por %s%s de la compra #%d %s (%s). Saldo pendiente: %s%s. %s",
		cliente,
		item.NumeroCuota, item.TotalCuotas,
		cfg.Moneda, infra.FormatearMoneda(item.MontoCuota),
		item.VentaNumero, cuando, item.FechaVencimiento,
		cfg.Moneda, infra.FormatearMoneda(item.SaldoPendiente),
		cfg.NombreEmpresa,
	)
}

func plural(n int, uno, varios string) string {
	if n == 1 {
		return "1 " + uno
	}
	return fmt.Sprintf("%d %s", n, varios)
}
