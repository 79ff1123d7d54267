package kv

import (
	"context"

	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/db"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/middleware/redis"
	"github.com/scienceol/molbank/pkg/repo"
)

// New 按 STORE_BACKEND 选择存储实现，redis / postgres 需先初始化对应客户端
func New(ctx context.Context) (repo.KVStore, error) {
	conf := config.Global().Store
	switch conf.Backend {
	case config.StoreFile, "":
		return NewFile(conf.FilePath), nil
	case config.StoreRedis:
		client := redis.GetClient()
		if client == nil {
			return nil, code.StoreBackendUnknownErr.WithMsg("redis client not initialized")
		}
		return NewRedis(client), nil
	case config.StorePostgres:
		d := db.DB()
		if d == nil {
			return nil, code.StoreBackendUnknownErr.WithMsg("postgres not initialized")
		}
		return NewPostgres(d), nil
	default:
		logger.Errorf(ctx, "unknown store backend: %s", conf.Backend)
		return nil, code.StoreBackendUnknownErr.WithMsgf("backend: %s", conf.Backend)
	}
}
