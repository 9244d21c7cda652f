package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthModule exposes a public liveness endpoint that also pings the
// database so load balancers see real readiness.
type HealthModule struct {
	Pool *pgxpool.Pool
}

func NewHealthModule(pool *pgxpool.Pool) *HealthModule {
	return &HealthModule{Pool: pool}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if m.Pool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := m.Pool.Ping(ctx); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status})
	})
}
