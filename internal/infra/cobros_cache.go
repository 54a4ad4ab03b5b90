package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hepuentes/creditappweb/internal/dto"

	"github.com/redis/go-redis/v9"
)

const claveResumenCobros = "cobros:resumen"

// CobrosCache keeps the company-wide collections summary in Redis.
type CobrosCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCobrosCache(rdb *redis.Client, ttl time.Duration) *CobrosCache {
	return &CobrosCache{rdb: rdb, ttl: ttl}
}

// Get returns nil, nil when nothing is cached.
func (c *CobrosCache) Get(ctx context.Context) (*dto.ResumenCobrosSnapshot, error) {
	raw, err := c.rdb.Get(ctx, claveResumenCobros).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap dto.ResumenCobrosSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *CobrosCache) Set(ctx context.Context, snap *dto.ResumenCobrosSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, claveResumenCobros, raw, c.ttl).Err()
}
