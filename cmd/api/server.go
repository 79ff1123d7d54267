package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/core/notify/events"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/scienceol/molbank/pkg/middleware/db"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/middleware/redis"
	"github.com/scienceol/molbank/pkg/middleware/trace"
	migrate "github.com/scienceol/molbank/pkg/repo/migrate"
	"github.com/scienceol/molbank/pkg/utils"
	"github.com/scienceol/molbank/pkg/web"
	"github.com/spf13/cobra"
)

func NewWeb() *cobra.Command {
	return &cobra.Command{
		Use:          "apiserver",
		Long:         "Start the API server",
		SilenceUsage: true,
		PreRunE:      initWeb,
		RunE:         newRouter,
		PostRunE:     cleanWebResource,
	}
}

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Create the postgres store tables",
		SilenceUsage: true,
		PreRunE:      initMigrate,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Root().Context())
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			db.ClosePostgres(cmd.Context())
			return nil
		},
	}
}

func initPostgres(ctx context.Context) {
	conf := config.Global()
	db.InitPostgres(ctx, &db.Config{
		Host: conf.Database.Host, Port: conf.Database.Port,
		User: conf.Database.User, PW: conf.Database.Password,
		DBName: conf.Database.Name, LogConf: db.LogConf{Level: conf.Log.LogLevel},
	})
}

func initMigrate(cmd *cobra.Command, _ []string) error {
	initPostgres(cmd.Context())
	return nil
}

func initWeb(cmd *cobra.Command, _ []string) error {
	conf := config.Global()
	trace.InitTrace(cmd.Context(), &trace.InitConfig{
		ServiceName:    fmt.Sprintf("%s-%s", conf.Server.Service, conf.Server.Platform),
		Version:        conf.Trace.Version,
		Env:            conf.Server.Env,
		TraceEndpoint:  conf.Trace.TraceEndpoint,
		MetricEndpoint: conf.Trace.MetricEndpoint,
		TraceProject:   conf.Trace.TraceProject,
		Stdout:         conf.Trace.Stdout,
	})

	// 按存储后端初始化依赖
	if conf.Store.Backend == config.StorePostgres {
		initPostgres(cmd.Context())
	}
	if conf.Store.Backend == config.StoreRedis || conf.Redis.Enable {
		redis.InitRedis(cmd.Context(), &redis.Redis{
			Host: conf.Redis.Host, Port: conf.Redis.Port,
			Password: conf.Redis.Password, DB: conf.Redis.DB,
		})
	}

	// 引擎后台预热，首个请求不用等加载
	utils.SafelyGo(func() {
		if _, err := structure.GetEngine(cmd.Context()); err != nil {
			logger.Errorf(cmd.Context(), "structure engine load err: %+v", err)
			return
		}
		logger.Infof(cmd.Context(), "structure engine ready asset: %s", conf.Engine.AssetPath)
	}, func(err error) {
		logger.Errorf(cmd.Context(), "warm up engine err: %+v", err)
	})
	return nil
}

func newRouter(cmd *cobra.Command, _ []string) error {
	router := gin.New()
	router.Use(gin.Recovery())
	cleanup, err := web.NewRouter(cmd.Root().Context(), router)
	if err != nil {
		return err
	}
	defer cleanup()

	conf := config.Global()
	port := conf.Server.Port
	addr := ":" + strconv.Itoa(port)

	httpServer := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
	}

	fmt.Printf("API Server starting on http://0.0.0.0:%d\n", port)

	utils.SafelyGo(func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(cmd.Context(), "start server err: %v\n", err)
		}
	}, func(err error) {
		logger.Errorf(cmd.Context(), "run http server err: %+v", err)
		os.Exit(1)
	})

	fmt.Printf("Server started. Press Ctrl+C to shutdown.\n")
	<-cmd.Context().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("shut down server err: %+v", err)
	}
	return nil
}

func cleanWebResource(cmd *cobra.Command, _ []string) error {
	if err := events.NewEvents().Close(cmd.Context()); err != nil {
		logger.Warnf(cmd.Context(), "close events err: %+v", err)
	}
	redis.CloseRedis(cmd.Context())
	db.ClosePostgres(cmd.Context())
	trace.CloseTrace()
	return nil
}
