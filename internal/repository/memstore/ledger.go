package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/policy"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
)

// visible uses the read rule of the access policy; the SQL store encodes the same rule.
func visible(v *model.Venta, u *model.Usuario) bool {
	return policy.Policy{}.PuedeVer(v, u)
}

// ── ventas ───────────────────────────────────────────────────────────────────

type ventas struct{ r repos }

func (v ventas) NextNumero(_ context.Context) (int64, error) {
	unlock, err := v.r.guard("ventas.NextNumero")
	if err != nil {
		return 0, err
	}
	defer unlock()
	v.r.s.st.numero++
	return v.r.s.st.numero, nil
}

func (v ventas) Create(_ context.Context, x *model.Venta) error {
	unlock, err := v.r.guard("ventas.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	v.r.stamp(&x.CreatedAt)
	for i := range x.Detalles {
		newID(&x.Detalles[i].ID)
		x.Detalles[i].VentaID = x.ID
	}
	v.r.s.st.ventas[x.ID] = stripVenta(*x)
	return nil
}

func stripVenta(x model.Venta) model.Venta {
	x.Cliente = nil
	x.Vendedor = nil
	detalles := make([]model.DetalleVenta, len(x.Detalles))
	for i, d := range x.Detalles {
		d.Producto = nil
		detalles[i] = d
	}
	x.Detalles = detalles
	return x
}

func (v ventas) hydrate(x model.Venta) *model.Venta {
	st := v.r.s.st
	if c, ok := st.clientes[x.ClienteID]; ok {
		x.Cliente = &c
	}
	if u, ok := st.usuarios[x.VendedorID]; ok {
		x.Vendedor = &u
	}
	detalles := make([]model.DetalleVenta, len(x.Detalles))
	for i, d := range x.Detalles {
		if p, ok := st.productos[d.ProductoID]; ok {
			d.Producto = &p
		}
		detalles[i] = d
	}
	x.Detalles = detalles
	return &x
}

func (v ventas) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	unlock, err := v.r.guard("ventas.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	x, ok := v.r.s.st.ventas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v.hydrate(x), nil
}

func (v ventas) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	unlock, err := v.r.guard("ventas.FindByIDForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	x, ok := v.r.s.st.ventas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	x.Detalles = nil
	return &x, nil
}

func (v ventas) Update(_ context.Context, x *model.Venta) error {
	unlock, err := v.r.guard("ventas.Update")
	if err != nil {
		return err
	}
	defer unlock()
	prev, ok := v.r.s.st.ventas[x.ID]
	if !ok {
		return repository.ErrNotFound
	}
	upd := stripVenta(*x)
	upd.Detalles = prev.Detalles
	v.r.s.st.ventas[x.ID] = upd
	return nil
}

func (v ventas) Delete(_ context.Context, id uuid.UUID) error {
	unlock, err := v.r.guard("ventas.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	delete(v.r.s.st.ventas, id)
	return nil
}

func (v ventas) sorted(keep func(model.Venta) bool) []model.Venta {
	var out []model.Venta
	for _, x := range v.r.s.st.ventas {
		if keep(x) {
			out = append(out, *v.hydrate(x))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (v ventas) List(_ context.Context, q repository.VentaQuery) ([]model.Venta, int64, error) {
	unlock, err := v.r.guard("ventas.List")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()
	out := v.sorted(func(x model.Venta) bool {
		switch {
		case !inRange(x.CreatedAt, q.Desde, q.Hasta):
			return false
		case q.Tipo != nil && x.Tipo != *q.Tipo:
			return false
		case q.Estado != nil && x.Estado != *q.Estado:
			return false
		case q.ClienteID != nil && x.ClienteID != *q.ClienteID:
			return false
		case q.VisiblePara != nil && !visible(&x, q.VisiblePara):
			return false
		}
		return true
	})
	// newest first, like the SQL store
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return page(out, q.Offset, q.Limit), int64(len(out)), nil
}

func pendienteCredito(x model.Venta) bool {
	return x.Tipo == model.VentaCredito && x.SaldoPendiente > 0 && x.Estado == model.EstadoPendiente
}

func (v ventas) ListCreditoPendientes(_ context.Context) ([]model.Venta, error) {
	unlock, err := v.r.guard("ventas.ListCreditoPendientes")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return v.sorted(pendienteCredito), nil
}

func (v ventas) ListGestionadasPor(_ context.Context, usuarioID uuid.UUID) ([]model.Venta, error) {
	unlock, err := v.r.guard("ventas.ListGestionadasPor")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return v.sorted(func(x model.Venta) bool {
		if !pendienteCredito(x) {
			return false
		}
		if x.Transferida {
			return x.UsuarioActualID != nil && *x.UsuarioActualID == usuarioID
		}
		return x.VendedorID == usuarioID
	}), nil
}

func (v ventas) ListTransferidasSinGestor(_ context.Context) ([]model.Venta, error) {
	unlock, err := v.r.guard("ventas.ListTransferidasSinGestor")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return v.sorted(func(x model.Venta) bool {
		return x.Transferida && x.UsuarioActualID == nil
	}), nil
}

// ── abonos ───────────────────────────────────────────────────────────────────

type abonos struct{ r repos }

func (a abonos) Create(_ context.Context, x *model.Abono) error {
	unlock, err := a.r.guard("abonos.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	a.r.stamp(&x.CreatedAt)
	y := *x
	y.Venta, y.Cobrador = nil, nil
	a.r.s.st.abonos[x.ID] = y
	return nil
}

func (a abonos) FindByID(_ context.Context, id uuid.UUID) (*model.Abono, error) {
	unlock, err := a.r.guard("abonos.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	x, ok := a.r.s.st.abonos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &x, nil
}

func (a abonos) Update(_ context.Context, x *model.Abono) error {
	unlock, err := a.r.guard("abonos.Update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := a.r.s.st.abonos[x.ID]; !ok {
		return repository.ErrNotFound
	}
	y := *x
	y.Venta, y.Cobrador = nil, nil
	a.r.s.st.abonos[x.ID] = y
	return nil
}

func (a abonos) Delete(_ context.Context, id uuid.UUID) error {
	unlock, err := a.r.guard("abonos.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	delete(a.r.s.st.abonos, id)
	return nil
}

func (a abonos) filter(keep func(model.Abono) bool) []model.Abono {
	var out []model.Abono
	for _, x := range a.r.s.st.abonos {
		if keep(x) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (a abonos) ListByVenta(_ context.Context, ventaID uuid.UUID) ([]model.Abono, error) {
	unlock, err := a.r.guard("abonos.ListByVenta")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return a.filter(func(x model.Abono) bool { return x.VentaID == ventaID }), nil
}

func (a abonos) List(_ context.Context, q repository.AbonoQuery) ([]model.Abono, int64, error) {
	unlock, err := a.r.guard("abonos.List")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()
	out := a.filter(func(x model.Abono) bool {
		switch {
		case q.VentaID != nil && x.VentaID != *q.VentaID:
			return false
		case q.CobradorID != nil && x.CobradorID != *q.CobradorID:
			return false
		case !inRange(x.CreatedAt, q.Desde, q.Hasta):
			return false
		}
		if q.VisiblePara != nil {
			v, ok := a.r.s.st.ventas[x.VentaID]
			if !ok || !visible(&v, q.VisiblePara) {
				return false
			}
		}
		return true
	})
	for i := range out {
		if v, ok := a.r.s.st.ventas[out[i].VentaID]; ok {
			out[i].Venta = &v
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return page(out, q.Offset, q.Limit), int64(len(out)), nil
}

func (a abonos) CountPosteriores(_ context.Context, ventaID uuid.UUID, t time.Time) (int64, error) {
	unlock, err := a.r.guard("abonos.CountPosteriores")
	if err != nil {
		return 0, err
	}
	defer unlock()
	var n int64
	for _, x := range a.r.s.st.abonos {
		if x.VentaID == ventaID && x.CreatedAt.After(t) {
			n++
		}
	}
	return n, nil
}

func (a abonos) SumByVentas(_ context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	unlock, err := a.r.guard("abonos.SumByVentas")
	if err != nil {
		return nil, err
	}
	defer unlock()
	want := make(map[uuid.UUID]bool, len(ventaIDs))
	for _, id := range ventaIDs {
		want[id] = true
	}
	out := map[uuid.UUID]int64{}
	for _, x := range a.r.s.st.abonos {
		if want[x.VentaID] {
			out[x.VentaID] += x.Monto
		}
	}
	return out, nil
}

// ── cajas ────────────────────────────────────────────────────────────────────

type cajas struct{ r repos }

func (c cajas) Create(_ context.Context, x *model.Caja) error {
	unlock, err := c.r.guard("cajas.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	c.r.stamp(&x.FechaApertura)
	c.r.s.st.cajas[x.ID] = *x
	return nil
}

func (c cajas) find(op string, id uuid.UUID) (*model.Caja, error) {
	unlock, err := c.r.guard(op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	x, ok := c.r.s.st.cajas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &x, nil
}

func (c cajas) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	return c.find("cajas.FindByID", id)
}

func (c cajas) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	return c.find("cajas.FindByIDForUpdate", id)
}

func (c cajas) List(_ context.Context) ([]model.Caja, error) {
	unlock, err := c.r.guard("cajas.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]model.Caja, 0, len(c.r.s.st.cajas))
	for _, x := range c.r.s.st.cajas {
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (c cajas) UpdateSaldo(_ context.Context, id uuid.UUID, saldo int64) error {
	unlock, err := c.r.guard("cajas.UpdateSaldo")
	if err != nil {
		return err
	}
	defer unlock()
	x, ok := c.r.s.st.cajas[id]
	if !ok {
		return repository.ErrNotFound
	}
	x.SaldoActual = saldo
	c.r.s.st.cajas[id] = x
	return nil
}

func (c cajas) Delete(_ context.Context, id uuid.UUID) error {
	unlock, err := c.r.guard("cajas.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	delete(c.r.s.st.cajas, id)
	return nil
}

func (c cajas) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	unlock, err := c.r.guard("cajas.CreateMovimiento")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&m.ID)
	c.r.stamp(&m.CreatedAt)
	c.r.s.st.movimientos[m.ID] = *m
	return nil
}

func (c cajas) DeleteMovimiento(_ context.Context, id uuid.UUID) error {
	unlock, err := c.r.guard("cajas.DeleteMovimiento")
	if err != nil {
		return err
	}
	defer unlock()
	delete(c.r.s.st.movimientos, id)
	return nil
}

func (c cajas) movs(keep func(model.MovimientoCaja) bool) []model.MovimientoCaja {
	var out []model.MovimientoCaja
	for _, m := range c.r.s.st.movimientos {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (c cajas) ListMovimientos(_ context.Context, cajaID uuid.UUID, q repository.MovimientoQuery) ([]model.MovimientoCaja, error) {
	unlock, err := c.r.guard("cajas.ListMovimientos")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.movs(func(m model.MovimientoCaja) bool {
		return m.CajaID == cajaID &&
			(q.Tipo == nil || m.Tipo == *q.Tipo) &&
			inRange(m.CreatedAt, q.Desde, q.Hasta)
	}), nil
}

func (c cajas) ListMovimientosByAbono(_ context.Context, abonoID uuid.UUID) ([]model.MovimientoCaja, error) {
	unlock, err := c.r.guard("cajas.ListMovimientosByAbono")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.movs(func(m model.MovimientoCaja) bool {
		return m.AbonoID != nil && *m.AbonoID == abonoID
	}), nil
}

func (c cajas) ListMovimientosByVenta(_ context.Context, ventaID uuid.UUID) ([]model.MovimientoCaja, error) {
	unlock, err := c.r.guard("cajas.ListMovimientosByVenta")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.movs(func(m model.MovimientoCaja) bool {
		return m.VentaID != nil && *m.VentaID == ventaID && m.AbonoID == nil
	}), nil
}

func (c cajas) CountMovimientos(_ context.Context, cajaID uuid.UUID) (int64, error) {
	unlock, err := c.r.guard("cajas.CountMovimientos")
	if err != nil {
		return 0, err
	}
	defer unlock()
	var n int64
	for _, m := range c.r.s.st.movimientos {
		if m.CajaID == cajaID || (m.CajaDestinoID != nil && *m.CajaDestinoID == cajaID) {
			n++
		}
	}
	return n, nil
}

func (c cajas) SumMovimientos(_ context.Context, cajaID uuid.UUID) (int64, int64, error) {
	unlock, err := c.r.guard("cajas.SumMovimientos")
	if err != nil {
		return 0, 0, err
	}
	defer unlock()
	var entradas, salidas int64
	for _, m := range c.r.s.st.movimientos {
		if m.CajaID != cajaID {
			continue
		}
		switch m.Tipo {
		case model.MovEntrada:
			entradas += m.Monto
		case model.MovSalida:
			salidas += m.Monto
		}
	}
	return entradas, salidas, nil
}

// ── comisiones ───────────────────────────────────────────────────────────────

type comisiones struct{ r repos }

func (c comisiones) Create(_ context.Context, x *model.Comision) error {
	unlock, err := c.r.guard("comisiones.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	c.r.stamp(&x.CreatedAt)
	y := *x
	y.Usuario = nil
	c.r.s.st.comisiones[x.ID] = y
	return nil
}

func (c comisiones) List(_ context.Context, q repository.ComisionQuery) ([]model.Comision, error) {
	unlock, err := c.r.guard("comisiones.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []model.Comision
	for _, x := range c.r.s.st.comisiones {
		switch {
		case q.UsuarioID != nil && x.UsuarioID != *q.UsuarioID:
			continue
		case q.Pagado != nil && x.Pagado != *q.Pagado:
			continue
		case !inRange(x.CreatedAt, q.Desde, q.Hasta):
			continue
		}
		if u, ok := c.r.s.st.usuarios[x.UsuarioID]; ok {
			x.Usuario = &u
		}
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c comisiones) deleteWhere(op string, match func(model.Comision) bool) error {
	unlock, err := c.r.guard(op)
	if err != nil {
		return err
	}
	defer unlock()
	for id, x := range c.r.s.st.comisiones {
		if match(x) {
			delete(c.r.s.st.comisiones, id)
		}
	}
	return nil
}

func (c comisiones) DeleteByAbono(_ context.Context, abonoID uuid.UUID) error {
	return c.deleteWhere("comisiones.DeleteByAbono", func(x model.Comision) bool {
		return x.AbonoID != nil && *x.AbonoID == abonoID
	})
}

func (c comisiones) DeleteByVenta(_ context.Context, ventaID uuid.UUID) error {
	return c.deleteWhere("comisiones.DeleteByVenta", func(x model.Comision) bool {
		return x.VentaID != nil && *x.VentaID == ventaID
	})
}

func (c comisiones) MarcarPagadas(_ context.Context, ids []uuid.UUID) (int64, error) {
	unlock, err := c.r.guard("comisiones.MarcarPagadas")
	if err != nil {
		return 0, err
	}
	defer unlock()
	var n int64
	for _, id := range ids {
		if x, ok := c.r.s.st.comisiones[id]; ok && !x.Pagado {
			x.Pagado = true
			c.r.s.st.comisiones[id] = x
			n++
		}
	}
	return n, nil
}

// ── transferencias ───────────────────────────────────────────────────────────

type transferencias struct{ r repos }

func (t transferencias) Create(_ context.Context, x *model.TransferenciaVenta) error {
	unlock, err := t.r.guard("transferencias.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	t.r.stamp(&x.CreatedAt)
	y := *x
	y.UsuarioOrigen, y.UsuarioDestino, y.RealizadaPor = nil, nil, nil
	t.r.s.st.transferencias[x.ID] = y
	return nil
}

func (t transferencias) FindByID(_ context.Context, id uuid.UUID) (*model.TransferenciaVenta, error) {
	unlock, err := t.r.guard("transferencias.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	x, ok := t.r.s.st.transferencias[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &x, nil
}

func (t transferencias) byVenta(ventaID uuid.UUID) []model.TransferenciaVenta {
	var out []model.TransferenciaVenta
	for _, x := range t.r.s.st.transferencias {
		if x.VentaID == ventaID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (t transferencias) Latest(_ context.Context, ventaID uuid.UUID) (*model.TransferenciaVenta, error) {
	unlock, err := t.r.guard("transferencias.Latest")
	if err != nil {
		return nil, err
	}
	defer unlock()
	all := t.byVenta(ventaID)
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	last := all[len(all)-1]
	return &last, nil
}

func (t transferencias) CountByVenta(_ context.Context, ventaID uuid.UUID) (int64, error) {
	unlock, err := t.r.guard("transferencias.CountByVenta")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(t.byVenta(ventaID))), nil
}

func (t transferencias) ListByVenta(_ context.Context, ventaID uuid.UUID) ([]model.TransferenciaVenta, error) {
	unlock, err := t.r.guard("transferencias.ListByVenta")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := t.byVenta(ventaID)
	users := t.r.s.st.usuarios
	for i := range out {
		if u, ok := users[out[i].UsuarioOrigenID]; ok {
			out[i].UsuarioOrigen = &u
		}
		if u, ok := users[out[i].UsuarioDestinoID]; ok {
			out[i].UsuarioDestino = &u
		}
		if u, ok := users[out[i].RealizadaPorID]; ok {
			out[i].RealizadaPor = &u
		}
	}
	return out, nil
}

func (t transferencias) Delete(_ context.Context, id uuid.UUID) error {
	unlock, err := t.r.guard("transferencias.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	delete(t.r.s.st.transferencias, id)
	return nil
}

// ── configuracion ────────────────────────────────────────────────────────────

type configuracion struct{ r repos }

func (c configuracion) Get(_ context.Context) (*model.Configuracion, error) {
	unlock, err := c.r.guard("configuracion.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	if c.r.s.st.config == nil {
		def := model.ConfiguracionPorDefecto()
		return &def, nil
	}
	cfg := *c.r.s.st.config
	return &cfg, nil
}

func (c configuracion) Save(_ context.Context, x *model.Configuracion) error {
	unlock, err := c.r.guard("configuracion.Save")
	if err != nil {
		return err
	}
	defer unlock()
	cfg := *x
	c.r.s.st.config = &cfg
	return nil
}
