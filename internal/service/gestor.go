package service

import (
	"context"
	"errors"

	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// resolverGestor returns the effective holder of v. The chain is: active current
// holder, active original seller, any active administrator, any active user.
// Every step past the expected holder is logged as a data-quality signal and
// reported through the fallback flag.
func resolverGestor(ctx context.Context, r repository.Repos, v *model.Venta) (*model.Usuario, bool, error) {
	aviso := func(paso string, u *model.Usuario) {
		log.Warn().
			Str("venta_id", v.ID.String()).
			Str("paso", paso).
			Str("usuario_id", u.ID.String()).
			Msg("gestor de venta resuelto por respaldo")
	}

	if v.Transferida && v.UsuarioActualID != nil {
		u, err := usuarioActivo(ctx, r, *v.UsuarioActualID)
		if err != nil {
			return nil, false, err
		}
		if u != nil {
			return u, false, nil
		}
	}

	u, err := usuarioActivo(ctx, r, v.VendedorID)
	if err != nil {
		return nil, false, err
	}
	if u != nil {
		if v.Transferida {
			aviso("vendedor_original", u)
			return u, true, nil
		}
		return u, false, nil
	}

	admin, err := r.Usuarios().FirstActivoByRol(ctx, model.RolAdministrador)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	if err == nil {
		aviso("administrador", admin)
		return admin, true, nil
	}

	cualquiera, err := r.Usuarios().FirstActivo(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	if err == nil {
		aviso("cualquier_usuario_activo", cualquiera)
		return cualquiera, true, nil
	}

	log.Error().Str("venta_id", v.ID.String()).Msg("venta sin gestor valido")
	return nil, false, newError(KindNoValidHolder, "no hay un usuario activo que pueda gestionar la venta")
}

// usuarioActivo returns nil without error when the user is missing or inactive.
func usuarioActivo(ctx context.Context, r repository.Repos, id uuid.UUID) (*model.Usuario, error) {
	u, err := r.Usuarios().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.Activo {
		return nil, nil
	}
	return u, nil
}

// cargarActor loads the acting user; unknown or inactive users are forbidden.
func cargarActor(ctx context.Context, r repository.Repos, id uuid.UUID) (*model.Usuario, error) {
	u, err := usuarioActivo(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errForbidden("usuario inactivo o inexistente")
	}
	return u, nil
}

func cargarAdmin(ctx context.Context, r repository.Repos, id uuid.UUID) (*model.Usuario, error) {
	u, err := cargarActor(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if !u.EsAdmin() {
		return nil, errForbidden("operacion reservada a administradores")
	}
	return u, nil
}
