package infra

import (
	"fmt"

	"github.com/hepuentes/creditappweb/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, CHECK constraints, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Usuario{},
		&model.Cliente{},
		&model.Producto{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.MovimientoStock{},
		&model.Caja{},
		&model.Abono{},
		&model.MovimientoCaja{},
		&model.Comision{},
		&model.TransferenciaVenta{},
		&model.Configuracion{},
	}
}

// RunMigrations creates or updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that AutoMigrate cannot
// handle. Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"ventas_numero_seq", `CREATE SEQUENCE IF NOT EXISTS ventas_numero_seq START 1`},
		// Existing rows must not collide with the sequence.
		{"sync ventas_numero_seq", `
SELECT setval('ventas_numero_seq', GREATEST((SELECT COALESCE(MAX(numero), 0) FROM ventas), 1),
              (SELECT COUNT(*) > 0 FROM ventas))`},
		{"chk_ventas_saldo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_saldo') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_saldo
      CHECK (saldo_pendiente >= 0 AND saldo_pendiente <= total);
  END IF;
END $$`},
		{"chk_ventas_contado", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_contado') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_contado
      CHECK (tipo <> 'contado' OR (saldo_pendiente = 0 AND estado = 'pagado'));
  END IF;
END $$`},
		{"chk_ventas_custodia", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_custodia') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_custodia
      CHECK (transferida OR usuario_actual_id IS NULL);
  END IF;
END $$`},
		{"chk_abonos_monto", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_abonos_monto') THEN
    ALTER TABLE abonos ADD CONSTRAINT chk_abonos_monto CHECK (monto > 0);
  END IF;
END $$`},
		{"chk_movimientos_caja_monto", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_caja_monto') THEN
    ALTER TABLE movimientos_caja ADD CONSTRAINT chk_movimientos_caja_monto CHECK (monto > 0);
  END IF;
END $$`},
		// partial index for the collections classifier
		{"idx_ventas_credito_pendiente", `
CREATE INDEX IF NOT EXISTS idx_ventas_credito_pendiente
    ON ventas (created_at)
    WHERE tipo = 'credito' AND estado = 'pendiente'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
