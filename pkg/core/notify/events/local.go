package events

import (
	"context"
	"sync"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

// LocalEvents delivers messages to handlers of the same process, in
// Broadcast's goroutine.
type LocalEvents struct {
	mu      sync.RWMutex
	actions map[notify.Action]notify.HandleFunc
}

func NewLocalEvents() *LocalEvents {
	return &LocalEvents{actions: map[notify.Action]notify.HandleFunc{}}
}

func (l *LocalEvents) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.actions[msgName]; ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	l.actions[msgName] = handleFunc
	logger.Infof(ctx, "registry local channel name: %s", msgName)
	return nil
}

func (l *LocalEvents) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	data, err := stamp(msg)
	if err != nil {
		return err
	}
	l.mu.RLock()
	handle, ok := l.actions[msg.Channel]
	l.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := handle(ctx, string(data)); err != nil {
		logger.Errorf(ctx, "handle local msg fail name: %s, err: %+v", msg.Channel, err)
	}
	return nil
}

func (l *LocalEvents) Close(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = map[notify.Action]notify.HandleFunc{}
	return nil
}
