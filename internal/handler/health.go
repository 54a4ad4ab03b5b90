package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hepuentes/creditappweb/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// EstadoSMTP reports the SMTP breaker state; infra.Mailer implements it.
type EstadoSMTP interface {
	EstadoSMTP() string
}

// Health checks DB and Redis connectivity and reports the dead letter backlog
// and the SMTP breaker. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, smtp EstadoSMTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq map[string]int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else if dlq, err = worker.DLQLengths(ctx, rdb); err != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"dlq":   dlq,
			"smtp":  smtp.EstadoSMTP(),
		})
	}
}
