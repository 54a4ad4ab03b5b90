package worker

// cobros_cron.go
// Refreshes the company-wide collections summary on a cron schedule. A Redis
// lock makes sure only one instance runs each tick when several replicas share
// the same Redis.

import (
	"context"
	"errors"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	cobrosLockKey = "lock:cobros:resumen"
	cobrosLockTTL = 2 * time.Minute
)

// RefrescadorResumen recomputes and caches the summary; service.CobrosService implements it.
type RefrescadorResumen interface {
	RefrescarResumen(ctx context.Context) (*dto.ResumenCobrosSnapshot, error)
}

type CobrosCron struct {
	cron   *cron.Cron
	locker *redislock.Client
	cobros RefrescadorResumen
}

func NewCobrosCron(rdb *redis.Client, cobros RefrescadorResumen) *CobrosCron {
	return &CobrosCron{
		cron:   cron.New(),
		locker: redislock.New(rdb),
		cobros: cobros,
	}
}

// Start registers the refresh with spec (standard 5-field cron) and stops the
// scheduler when ctx is cancelled.
func (c *CobrosCron) Start(ctx context.Context, spec string) error {
	if _, err := c.cron.AddFunc(spec, func() { c.ejecutar(ctx) }); err != nil {
		return err
	}
	c.cron.Start()
	log.Info().Str("spec", spec).Msg("cobros_cron: started")

	go func() {
		<-ctx.Done()
		<-c.cron.Stop().Done()
		log.Info().Msg("cobros_cron: shutting down")
	}()
	return nil
}

func (c *CobrosCron) ejecutar(ctx context.Context) {
	lock, err := c.locker.Obtain(ctx, cobrosLockKey, cobrosLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Debug().Msg("cobros_cron: another instance holds the lock, skipping tick")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("cobros_cron: failed to obtain lock")
		return
	}
	defer func() { _ = lock.Release(ctx) }()

	snap, err := c.cobros.RefrescarResumen(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cobros_cron: refresh failed")
		return
	}
	log.Info().
		Int("para_hoy", snap.Resumen.ParaHoy.Cantidad).
		Int("vencidos", snap.Resumen.Vencidos.Cantidad).
		Int("proximos", snap.Resumen.Proximos.Cantidad).
		Msg("cobros_cron: resumen actualizado")
}
