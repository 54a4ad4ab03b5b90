package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// movimiento describes one till movement recorded inside a unit of work.
type movimiento struct {
	cajaID      uuid.UUID
	tipo        model.DireccionMovimiento
	monto       int64
	descripcion string
	ventaID     *uuid.UUID
	abonoID     *uuid.UUID
	usuarioID   *uuid.UUID
}

// registrarMovimientoTx writes the movement and moves the till balance with the
// till row locked. Salidas beyond the balance fail with InsufficientTillBalance.
func registrarMovimientoTx(ctx context.Context, tx repository.Tx, m movimiento, now time.Time) (*model.MovimientoCaja, error) {
	if m.monto <= 0 {
		return nil, errValidation("el monto del movimiento debe ser mayor a cero")
	}
	caja, err := tx.Cajas().FindByIDForUpdate(ctx, m.cajaID)
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}
	if err := caja.Aplicar(m.tipo, m.monto); err != nil {
		return nil, &Error{
			Kind: KindInsufficientTillBalance,
			Msg:  fmt.Sprintf("saldo insuficiente en la caja %s: disponible %d, requerido %d", caja.Nombre, caja.SaldoActual, m.monto),
			Err:  err,
		}
	}
	mov := &model.MovimientoCaja{
		ID:          uuid.New(),
		CajaID:      caja.ID,
		Tipo:        m.tipo,
		Monto:       m.monto,
		Descripcion: m.descripcion,
		VentaID:     m.ventaID,
		AbonoID:     m.abonoID,
		UsuarioID:   m.usuarioID,
		CreatedAt:   now,
	}
	if err := tx.Cajas().CreateMovimiento(ctx, mov); err != nil {
		return nil, err
	}
	if err := tx.Cajas().UpdateSaldo(ctx, caja.ID, caja.SaldoActual); err != nil {
		return nil, err
	}
	return mov, nil
}

// transferirEntreCajasTx writes the mirrored pair of a till-to-till transfer:
// a salida on origen pointing at destino and an entrada on destino pointing back.
func transferirEntreCajasTx(ctx context.Context, tx repository.Tx, origenID, destinoID uuid.UUID, monto int64, descripcion string, usuarioID *uuid.UUID, now time.Time) ([]model.MovimientoCaja, error) {
	if origenID == destinoID {
		return nil, errValidation("la caja destino debe ser distinta de la caja origen")
	}
	if monto <= 0 {
		return nil, errValidation("el monto del movimiento debe ser mayor a cero")
	}

	// Lock both rows in a fixed order so opposite transfers cannot deadlock.
	primero, segundo := origenID, destinoID
	if segundo.String() < primero.String() {
		primero, segundo = segundo, primero
	}
	bloqueadas := map[uuid.UUID]*model.Caja{}
	for _, id := range []uuid.UUID{primero, segundo} {
		c, err := tx.Cajas().FindByIDForUpdate(ctx, id)
		if err != nil {
			if id == destinoID {
				return nil, asError(err, "caja destino no encontrada")
			}
			return nil, asError(err, "caja no encontrada")
		}
		bloqueadas[id] = c
	}
	origen, destino := bloqueadas[origenID], bloqueadas[destinoID]

	if err := origen.Aplicar(model.MovSalida, monto); err != nil {
		return nil, &Error{
			Kind: KindInsufficientTillBalance,
			Msg:  fmt.Sprintf("saldo insuficiente en la caja %s: disponible %d, requerido %d", origen.Nombre, origen.SaldoActual, monto),
			Err:  err,
		}
	}
	_ = destino.Aplicar(model.MovEntrada, monto)

	salida := model.MovimientoCaja{
		ID:            uuid.New(),
		CajaID:        origen.ID,
		Tipo:          model.MovSalida,
		Monto:         monto,
		Descripcion:   fmt.Sprintf("Transferencia a %s: %s", destino.Nombre, descripcion),
		CajaDestinoID: &destino.ID,
		UsuarioID:     usuarioID,
		CreatedAt:     now,
	}
	entrada := model.MovimientoCaja{
		ID:            uuid.New(),
		CajaID:        destino.ID,
		Tipo:          model.MovEntrada,
		Monto:         monto,
		Descripcion:   fmt.Sprintf("Transferencia desde %s: %s", origen.Nombre, descripcion),
		CajaDestinoID: &origen.ID,
		UsuarioID:     usuarioID,
		CreatedAt:     now,
	}
	for _, m := range []*model.MovimientoCaja{&salida, &entrada} {
		if err := tx.Cajas().CreateMovimiento(ctx, m); err != nil {
			return nil, err
		}
	}
	if err := tx.Cajas().UpdateSaldo(ctx, origen.ID, origen.SaldoActual); err != nil {
		return nil, err
	}
	if err := tx.Cajas().UpdateSaldo(ctx, destino.ID, destino.SaldoActual); err != nil {
		return nil, err
	}
	return []model.MovimientoCaja{salida, entrada}, nil
}

// revertirMovimientosTx undoes the balance effect of each movement and deletes it.
func revertirMovimientosTx(ctx context.Context, tx repository.Tx, movs []model.MovimientoCaja) error {
	for _, m := range movs {
		caja, err := tx.Cajas().FindByIDForUpdate(ctx, m.CajaID)
		if err != nil {
			return asError(err, "caja del movimiento no encontrada")
		}
		caja.Revertir(m.Tipo, m.Monto)
		if caja.SaldoActual < 0 {
			log.Warn().
				Str("caja_id", caja.ID.String()).
				Str("movimiento_id", m.ID.String()).
				Int64("saldo", caja.SaldoActual).
				Msg("reversion deja la caja en negativo")
		}
		if err := tx.Cajas().UpdateSaldo(ctx, caja.ID, caja.SaldoActual); err != nil {
			return err
		}
		if err := tx.Cajas().DeleteMovimiento(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// reemplazarMovimientoTx swaps a recorded movement for a new one. On the same
// till only the difference touches the balance; across tills the old one is
// reverted and the new one applied.
func reemplazarMovimientoTx(ctx context.Context, tx repository.Tx, anterior model.MovimientoCaja, nuevo movimiento, now time.Time) (*model.MovimientoCaja, error) {
	if anterior.CajaID != nuevo.cajaID {
		if err := revertirMovimientosTx(ctx, tx, []model.MovimientoCaja{anterior}); err != nil {
			return nil, err
		}
		return registrarMovimientoTx(ctx, tx, nuevo, now)
	}

	caja, err := tx.Cajas().FindByIDForUpdate(ctx, anterior.CajaID)
	if err != nil {
		return nil, asError(err, "caja no encontrada")
	}
	caja.Revertir(anterior.Tipo, anterior.Monto)
	if err := caja.Aplicar(nuevo.tipo, nuevo.monto); err != nil {
		return nil, &Error{
			Kind: KindInsufficientTillBalance,
			Msg:  fmt.Sprintf("saldo insuficiente en la caja %s", caja.Nombre),
			Err:  err,
		}
	}
	if caja.SaldoActual < 0 {
		log.Warn().
			Str("caja_id", caja.ID.String()).
			Str("movimiento_id", anterior.ID.String()).
			Int64("saldo", caja.SaldoActual).
			Msg("ajuste deja la caja en negativo")
	}
	if err := tx.Cajas().DeleteMovimiento(ctx, anterior.ID); err != nil {
		return nil, err
	}
	mov := &model.MovimientoCaja{
		ID:          uuid.New(),
		CajaID:      caja.ID,
		Tipo:        nuevo.tipo,
		Monto:       nuevo.monto,
		Descripcion: nuevo.descripcion,
		VentaID:     nuevo.ventaID,
		AbonoID:     nuevo.abonoID,
		UsuarioID:   nuevo.usuarioID,
		CreatedAt:   anterior.CreatedAt,
	}
	if err := tx.Cajas().CreateMovimiento(ctx, mov); err != nil {
		return nil, err
	}
	if err := tx.Cajas().UpdateSaldo(ctx, caja.ID, caja.SaldoActual); err != nil {
		return nil, err
	}
	return mov, nil
}
