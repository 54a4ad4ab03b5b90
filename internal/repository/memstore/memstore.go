// Package memstore is an in-memory repository.Store for tests. Atomic units are
// serialized by a single mutex and roll back by restoring a snapshot, so the
// all-or-nothing behaviour of the SQL store can be asserted without a database.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	usuarios       map[uuid.UUID]model.Usuario
	clientes       map[uuid.UUID]model.Cliente
	productos      map[uuid.UUID]model.Producto
	movStock       []model.MovimientoStock
	ventas         map[uuid.UUID]model.Venta
	abonos         map[uuid.UUID]model.Abono
	cajas          map[uuid.UUID]model.Caja
	movimientos    map[uuid.UUID]model.MovimientoCaja
	comisiones     map[uuid.UUID]model.Comision
	transferencias map[uuid.UUID]model.TransferenciaVenta
	config         *model.Configuracion
	numero         int64
}

func newState() *state {
	return &state{
		usuarios:       map[uuid.UUID]model.Usuario{},
		clientes:       map[uuid.UUID]model.Cliente{},
		productos:      map[uuid.UUID]model.Producto{},
		ventas:         map[uuid.UUID]model.Venta{},
		abonos:         map[uuid.UUID]model.Abono{},
		cajas:          map[uuid.UUID]model.Caja{},
		movimientos:    map[uuid.UUID]model.MovimientoCaja{},
		comisiones:     map[uuid.UUID]model.Comision{},
		transferencias: map[uuid.UUID]model.TransferenciaVenta{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		usuarios:       copyMap(s.usuarios),
		clientes:       copyMap(s.clientes),
		productos:      copyMap(s.productos),
		movStock:       append([]model.MovimientoStock(nil), s.movStock...),
		ventas:         make(map[uuid.UUID]model.Venta, len(s.ventas)),
		abonos:         copyMap(s.abonos),
		cajas:          copyMap(s.cajas),
		movimientos:    copyMap(s.movimientos),
		comisiones:     copyMap(s.comisiones),
		transferencias: copyMap(s.transferencias),
		numero:         s.numero,
	}
	for k, v := range s.ventas {
		v.Detalles = append([]model.DetalleVenta(nil), v.Detalles...)
		c.ventas[k] = v
	}
	if s.config != nil {
		cfg := *s.config
		c.config = &cfg
	}
	return c
}

// Store implements repository.Store in memory.
type Store struct {
	mu    sync.Mutex
	st    *state
	fails map[string]error

	// Now stamps CreatedAt on rows that arrive without one.
	Now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), fails: map[string]error{}, Now: time.Now}
}

// FailOn makes every call to op return err until cleared with FailOn(op, nil).
// op is "<repo>.<Method>", e.g. "comisiones.Create".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

func (s *Store) failure(op string) error { return s.fails[op] }

func (s *Store) Atomic(_ context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.clone()
	if err := fn(memTx{repos{s: s, lk: nopLocker{}}}); err != nil {
		s.st = snap
		return err
	}
	return nil
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

type repos struct {
	s  *Store
	lk sync.Locker
}

func (r repos) guard(op string) (func(), error) {
	r.lk.Lock()
	if err := r.s.failure(op); err != nil {
		r.lk.Unlock()
		return nil, err
	}
	return r.lk.Unlock, nil
}

func (r repos) stamp(t *time.Time) {
	if t.IsZero() {
		*t = r.s.Now()
	}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Store) Usuarios() repository.UsuarioRepository             { return usuarios{s.outer()} }
func (s *Store) Clientes() repository.ClienteRepository             { return clientes{s.outer()} }
func (s *Store) Productos() repository.ProductoRepository           { return productos{s.outer()} }
func (s *Store) Ventas() repository.VentaRepository                 { return ventas{s.outer()} }
func (s *Store) Abonos() repository.AbonoRepository                 { return abonos{s.outer()} }
func (s *Store) Cajas() repository.CajaRepository                   { return cajas{s.outer()} }
func (s *Store) Comisiones() repository.ComisionRepository          { return comisiones{s.outer()} }
func (s *Store) Transferencias() repository.TransferenciaRepository { return transferencias{s.outer()} }
func (s *Store) Configuracion() repository.ConfiguracionRepository  { return configuracion{s.outer()} }

func (s *Store) outer() repos { return repos{s: s, lk: &s.mu} }

type memTx struct{ r repos }

func (t memTx) Usuarios() repository.UsuarioRepository             { return usuarios{t.r} }
func (t memTx) Clientes() repository.ClienteRepository             { return clientes{t.r} }
func (t memTx) Productos() repository.ProductoRepository           { return productos{t.r} }
func (t memTx) Ventas() repository.VentaRepository                 { return ventas{t.r} }
func (t memTx) Abonos() repository.AbonoRepository                 { return abonos{t.r} }
func (t memTx) Cajas() repository.CajaRepository                   { return cajas{t.r} }
func (t memTx) Comisiones() repository.ComisionRepository          { return comisiones{t.r} }
func (t memTx) Transferencias() repository.TransferenciaRepository { return transferencias{t.r} }
func (t memTx) Configuracion() repository.ConfiguracionRepository  { return configuracion{t.r} }

func (t memTx) Savepoint(fn func(tx repository.Tx) error) error {
	snap := t.r.s.st.clone()
	if err := fn(t); err != nil {
		t.r.s.st = snap
		return err
	}
	return nil
}

var errDuplicado = errors.New("memstore: duplicate key")

func inRange(t time.Time, desde, hasta *time.Time) bool {
	if desde != nil && t.Before(*desde) {
		return false
	}
	if hasta != nil && !t.Before(*hasta) {
		return false
	}
	return true
}

func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── usuarios ─────────────────────────────────────────────────────────────────

type usuarios struct{ r repos }

func (u usuarios) Create(_ context.Context, x *model.Usuario) error {
	unlock, err := u.r.guard("usuarios.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, e := range u.r.s.st.usuarios {
		if e.Email == x.Email {
			return errDuplicado
		}
	}
	newID(&x.ID)
	u.r.stamp(&x.CreatedAt)
	u.r.s.st.usuarios[x.ID] = *x
	return nil
}

func (u usuarios) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.FindByEmail")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, e := range u.r.s.st.usuarios {
		if e.Email == email && e.Activo {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u usuarios) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	e, ok := u.r.s.st.usuarios[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (u usuarios) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.FindByIDs")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []model.Usuario
	for _, id := range ids {
		if e, ok := u.r.s.st.usuarios[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (u usuarios) sorted() []model.Usuario {
	out := make([]model.Usuario, 0, len(u.r.s.st.usuarios))
	for _, e := range u.r.s.st.usuarios {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (u usuarios) FirstActivoByRol(_ context.Context, rol model.Rol) (*model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.FirstActivoByRol")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, e := range u.sorted() {
		if e.Rol == rol && e.Activo {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u usuarios) FirstActivo(_ context.Context) (*model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.FirstActivo")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, e := range u.sorted() {
		if e.Activo {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u usuarios) List(_ context.Context) ([]model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []model.Usuario
	for _, e := range u.sorted() {
		if e.Activo {
			out = append(out, e)
		}
	}
	return out, nil
}

func (u usuarios) ListAll(_ context.Context) ([]model.Usuario, error) {
	unlock, err := u.r.guard("usuarios.ListAll")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return u.sorted(), nil
}

func (u usuarios) Update(_ context.Context, x *model.Usuario) error {
	unlock, err := u.r.guard("usuarios.Update")
	if err != nil {
		return err
	}
	defer unlock()
	u.r.s.st.usuarios[x.ID] = *x
	return nil
}

func (u usuarios) setActivo(id uuid.UUID, activo bool) {
	if e, ok := u.r.s.st.usuarios[id]; ok {
		e.Activo = activo
		u.r.s.st.usuarios[id] = e
	}
}

func (u usuarios) SoftDelete(_ context.Context, id uuid.UUID) error {
	unlock, err := u.r.guard("usuarios.SoftDelete")
	if err != nil {
		return err
	}
	defer unlock()
	u.setActivo(id, false)
	return nil
}

func (u usuarios) Reactivar(_ context.Context, id uuid.UUID) error {
	unlock, err := u.r.guard("usuarios.Reactivar")
	if err != nil {
		return err
	}
	defer unlock()
	u.setActivo(id, true)
	return nil
}

// ── clientes ─────────────────────────────────────────────────────────────────

type clientes struct{ r repos }

func (c clientes) Create(_ context.Context, x *model.Cliente) error {
	unlock, err := c.r.guard("clientes.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, e := range c.r.s.st.clientes {
		if e.Cedula == x.Cedula {
			return errDuplicado
		}
	}
	newID(&x.ID)
	c.r.stamp(&x.CreatedAt)
	c.r.s.st.clientes[x.ID] = *x
	return nil
}

func (c clientes) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	unlock, err := c.r.guard("clientes.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	e, ok := c.r.s.st.clientes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (c clientes) List(_ context.Context, _ string) ([]model.Cliente, error) {
	unlock, err := c.r.guard("clientes.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]model.Cliente, 0, len(c.r.s.st.clientes))
	for _, e := range c.r.s.st.clientes {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

// ── productos ────────────────────────────────────────────────────────────────

type productos struct{ r repos }

func (p productos) Create(_ context.Context, x *model.Producto) error {
	unlock, err := p.r.guard("productos.Create")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&x.ID)
	p.r.stamp(&x.CreatedAt)
	p.r.s.st.productos[x.ID] = *x
	return nil
}

func (p productos) find(op string, id uuid.UUID) (*model.Producto, error) {
	unlock, err := p.r.guard(op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	e, ok := p.r.s.st.productos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (p productos) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return p.find("productos.FindByID", id)
}

func (p productos) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return p.find("productos.FindByIDForUpdate", id)
}

func (p productos) List(_ context.Context) ([]model.Producto, error) {
	unlock, err := p.r.guard("productos.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]model.Producto, 0, len(p.r.s.st.productos))
	for _, e := range p.r.s.st.productos {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (p productos) UpdateStock(_ context.Context, id uuid.UUID, delta int) error {
	unlock, err := p.r.guard("productos.UpdateStock")
	if err != nil {
		return err
	}
	defer unlock()
	e, ok := p.r.s.st.productos[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Stock += delta
	p.r.s.st.productos[id] = e
	return nil
}

func (p productos) CreateMovimientoStock(_ context.Context, m *model.MovimientoStock) error {
	unlock, err := p.r.guard("productos.CreateMovimientoStock")
	if err != nil {
		return err
	}
	defer unlock()
	newID(&m.ID)
	p.r.stamp(&m.CreatedAt)
	p.r.s.st.movStock = append(p.r.s.st.movStock, *m)
	return nil
}

func (p productos) ListMovimientosStock(_ context.Context, productoID uuid.UUID) ([]model.MovimientoStock, error) {
	unlock, err := p.r.guard("productos.ListMovimientosStock")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []model.MovimientoStock
	for _, m := range p.r.s.st.movStock {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}
