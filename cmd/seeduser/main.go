// cmd/seeduser/main.go: crea/actualiza el administrador inicial y la configuracion por defecto.
// Uso: SEED_ADMIN_EMAIL=... SEED_ADMIN_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"strings"

	"github.com/hepuentes/creditappweb/internal/config"
	"github.com/hepuentes/creditappweb/internal/infra"
	"github.com/hepuentes/creditappweb/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	email := strings.ToLower(envOr("SEED_ADMIN_EMAIL", "admin@creditapp.local"))
	password := envOr("SEED_ADMIN_PASSWORD", "admin1234")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	admin := model.Usuario{
		Nombre:       envOr("SEED_ADMIN_NOMBRE", "Administrador"),
		Email:        email,
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "activo", "updated_at"}),
	}).Create(&admin).Error
	if err != nil {
		log.Fatal().Err(err).Msg("insert admin")
	}

	defaults := model.ConfiguracionPorDefecto()
	if err := db.WithContext(ctx).FirstOrCreate(&defaults, model.Configuracion{ID: defaults.ID}).Error; err != nil {
		log.Fatal().Err(err).Msg("insert configuracion")
	}

	log.Info().Str("email", email).Msg("administrador creado/actualizado")
}
