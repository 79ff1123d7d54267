package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/extra/rediscmd/v9"
	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

// cmdLogHook logs failed and slow commands.
type cmdLogHook struct {
	slow time.Duration
}

func (h *cmdLogHook) DialHook(next r.DialHook) r.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			logger.Errorf(ctx, "redis dial %s err: %+v", addr, err)
		}
		return conn, err
	}
}

func (h *cmdLogHook) ProcessHook(next r.ProcessHook) r.ProcessHook {
	return func(ctx context.Context, cmd r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		cost := time.Since(start)
		if err != nil && err != r.Nil {
			logger.Errorf(ctx, "redis cmd: %s err: %+v", rediscmd.CmdString(cmd), err)
		} else if cost > h.slow {
			logger.Warnf(ctx, "redis slow cmd: %s cost: %s", rediscmd.CmdString(cmd), cost)
		}
		return err
	}
}

func (h *cmdLogHook) ProcessPipelineHook(next r.ProcessPipelineHook) r.ProcessPipelineHook {
	return func(ctx context.Context, cmds []r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if cost := time.Since(start); err != nil || cost > h.slow {
			summary, _ := rediscmd.CmdsString(cmds)
			logger.Warnf(ctx, "redis pipeline: %s cost: %s err: %v", summary, cost, err)
		}
		return err
	}
}
