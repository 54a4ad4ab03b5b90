package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by Find* methods when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

// Repos groups every repository bound to the same connection or transaction.
type Repos interface {
	Usuarios() UsuarioRepository
	Clientes() ClienteRepository
	Productos() ProductoRepository
	Ventas() VentaRepository
	Abonos() AbonoRepository
	Cajas() CajaRepository
	Comisiones() ComisionRepository
	Transferencias() TransferenciaRepository
	Configuracion() ConfiguracionRepository
}

// Tx is a Repos bound to an open transaction.
type Tx interface {
	Repos
	// Savepoint runs fn in a nested unit. An error from fn undoes only the
	// writes made inside fn; the enclosing transaction stays usable.
	Savepoint(fn func(tx Tx) error) error
}

// Store is the unit of work. Reads through the embedded Repos run outside any
// transaction; every mutation of ledger state goes through Atomic.
type Store interface {
	Repos
	// Atomic commits when fn returns nil and rolls everything back otherwise.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

type gormRepos struct{ db *gorm.DB }

func (r gormRepos) Usuarios() UsuarioRepository             { return NewUsuarioRepository(r.db) }
func (r gormRepos) Clientes() ClienteRepository             { return NewClienteRepository(r.db) }
func (r gormRepos) Productos() ProductoRepository           { return NewProductoRepository(r.db) }
func (r gormRepos) Ventas() VentaRepository                 { return NewVentaRepository(r.db) }
func (r gormRepos) Abonos() AbonoRepository                 { return NewAbonoRepository(r.db) }
func (r gormRepos) Cajas() CajaRepository                   { return NewCajaRepository(r.db) }
func (r gormRepos) Comisiones() ComisionRepository          { return NewComisionRepository(r.db) }
func (r gormRepos) Transferencias() TransferenciaRepository { return NewTransferenciaRepository(r.db) }
func (r gormRepos) Configuracion() ConfiguracionRepository  { return NewConfiguracionRepository(r.db) }

type gormTx struct{ gormRepos }

// Savepoint relies on GORM issuing SAVEPOINT / ROLLBACK TO for nested Transaction calls.
func (t gormTx) Savepoint(fn func(tx Tx) error) error {
	return t.db.Transaction(func(sp *gorm.DB) error {
		return fn(gormTx{gormRepos{db: sp}})
	})
}

type gormStore struct{ gormRepos }

func NewStore(db *gorm.DB) Store { return gormStore{gormRepos{db: db}} }

func (s gormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{gormRepos{db: tx}})
	})
}

// forUpdate adds SELECT ... FOR UPDATE so concurrent writers on the same row serialize.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
