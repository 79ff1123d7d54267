package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/scienceol/molbank/pkg/middleware/db"
	"github.com/scienceol/molbank/pkg/middleware/redis"
)

// Health is a simple health check (backward compatible).
func Health(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Live is a lightweight liveness probe, the process is alive.
func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports the structure engine and the store backend in use.
func Ready(g *gin.Context) {
	checks := gin.H{}
	healthy := true

	// 引擎加载中也算未就绪
	status := structure.EngineStatus()
	checks["engine"] = status.String()
	if status != structure.LoadDone {
		healthy = false
	}

	switch config.Global().Store.Backend {
	case config.StorePostgres:
		if ds := db.DB(); ds != nil {
			sqlDB, err := ds.DBIns().DB()
			if err != nil || sqlDB.PingContext(g.Request.Context()) != nil {
				checks["postgres"] = "unhealthy"
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		} else {
			checks["postgres"] = "not_initialized"
			healthy = false
		}
	case config.StoreRedis:
		if rc := redis.GetClient(); rc != nil {
			if err := rc.Ping(g.Request.Context()).Err(); err != nil {
				checks["redis"] = "unhealthy"
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		} else {
			checks["redis"] = "not_initialized"
			healthy = false
		}
	default:
		checks["store"] = string(config.Global().Store.Backend)
	}

	code := http.StatusOK
	msg := "ready"
	if !healthy {
		code = http.StatusServiceUnavailable
		msg = "not_ready"
	}

	g.JSON(code, gin.H{
		"status": msg,
		"checks": checks,
	})
}
