package web

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/internal/config"
	compoundImpl "github.com/scienceol/molbank/pkg/core/compound/compound"
	moleculeImpl "github.com/scienceol/molbank/pkg/core/molecule/molecule"
	"github.com/scienceol/molbank/pkg/core/notify/events"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo/molmim"
	"github.com/scienceol/molbank/pkg/web/views/compound"
	"github.com/scienceol/molbank/pkg/web/views/generate"
	"github.com/scienceol/molbank/pkg/web/views/health"
	"github.com/scienceol/molbank/pkg/web/views/molecule"
	"github.com/scienceol/molbank/pkg/web/views/sse"
	"github.com/scienceol/molbank/pkg/web/views/structure"
	"github.com/scienceol/molbank/pkg/web/views/ws"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter 注册全部路由，返回的 cleanup 在服务退出时调用
func NewRouter(ctx context.Context, g *gin.Engine) (func(), error) {
	installMiddleware(g)
	return installURL(ctx, g)
}

func installMiddleware(g *gin.Engine) {
	g.ContextWithFallback = true
	server := config.Global().Server
	g.Use(cors.Default())
	g.Use(otelgin.Middleware(fmt.Sprintf("%s-%s", server.Platform, server.Service)))
	g.Use(logger.LogWithWriter())
}

func installURL(ctx context.Context, g *gin.Engine) (func(), error) {
	api := g.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/health/live", health.Live)
	api.GET("/health/ready", health.Ready)

	msgCenter := events.NewEvents()
	mService, err := moleculeImpl.NewMolecule(ctx, moleculeImpl.WithMsgCenter(msgCenter))
	if err != nil {
		logger.Errorf(ctx, "init molecule service err: %+v", err)
		return nil, err
	}

	sHandle := structure.NewStructureHandle(ctx)
	mHandle := molecule.NewMoleculeHandle(mService)
	cHandle := compound.NewCompoundHandle(compoundImpl.NewCompound())
	gHandle := generate.NewGenerateHandle(molmim.NewMolMIMRepo())
	sseHandle := sse.NewSSEHandle()
	wsHandle := ws.NewWSHandle(ctx, mService, msgCenter, sseHandle.Publish)

	// MolMIM 代理
	api.POST("/generate-molecules", gHandle.Generate)

	v1 := api.Group("/v1")
	{
		structureRouter := v1.Group("/structure")
		structureRouter.GET("/svg", sHandle.SVG)
		structureRouter.GET("/png", sHandle.PNG)
		structureRouter.POST("/render", sHandle.Render)
		structureRouter.POST("/batch", sHandle.Batch)
	}
	{
		moleculeRouter := v1.Group("/molecule")
		moleculeRouter.GET("/list", mHandle.List)
		moleculeRouter.POST("/create", mHandle.Create)
		moleculeRouter.DELETE("/:id", mHandle.Delete)
	}
	{
		v1.GET("/compound/:name", cHandle.Lookup)
	}
	{
		wsRouter := v1.Group("/ws")
		wsRouter.GET("/molecule", wsHandle.Molecule)
	}
	{
		v1.GET("/notify/molecule", sseHandle.Notify)
	}

	return func() {
		sHandle.Close()
		sseHandle.Close()
		if err := wsHandle.Close(); err != nil {
			logger.Warnf(ctx, "close ws err: %+v", err)
		}
	}, nil
}
