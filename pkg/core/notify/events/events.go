package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/common/uuid"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/middleware/redis"
	"github.com/scienceol/molbank/pkg/utils"
)

/*
	使用 redis 的发布订阅实现多进程间广播通信，
	未配置 redis 时退化为进程内投递
*/

var (
	once   sync.Once
	center notify.MsgCenter
)

type Events struct {
	actions sync.Map
	subs    sync.Map
	client  *r.Client
	wait    sync.WaitGroup
}

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		if client := redis.GetClient(); client != nil {
			center = NewRedisEvents(client)
			return
		}
		center = NewLocalEvents()
	})

	return center
}

func NewRedisEvents(client *r.Client) *Events {
	return &Events{client: client}
}

func (e *Events) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	if _, ok := e.actions.LoadOrStore(msgName, handleFunc); ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}

	// 订阅消息
	sub := e.client.Subscribe(ctx, string(msgName))
	e.subs.Store(msgName, sub)

	e.wait.Add(1)
	utils.SafelyGo(func() {
		defer e.wait.Done()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
					e.actions.Delete(msgName)
					e.subs.Delete(msgName)
					return
				}
				if msg == nil {
					continue
				}
				if err := handleFunc(ctx, msg.Payload); err != nil {
					logger.Errorf(ctx, "handle redis msg fail name: %s, err: %+v", msgName, err)
				}
			case <-ctx.Done():
				logger.Infof(ctx, "exit redis channel name: %s", string(msgName))
				if err := sub.Close(); err != nil {
					logger.Errorf(ctx, "close subscription fail msg name: %s, err: %+v", msgName, err)
				}
				e.actions.Delete(msgName)
				e.subs.Delete(msgName)
				return
			}
		}
	}, func(err error) {
		logger.Errorf(ctx, "Registry handle msg err: %+v", err)
	})
	return nil
}

func (e *Events) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	data, err := stamp(msg)
	if err != nil {
		return err
	}
	ret := e.client.Publish(ctx, string(msg.Channel), data)
	if ret.Err() != nil {
		logger.Errorf(ctx, "send msg fail action: %s, err: %+v", msg.Channel, ret.Err())
		return code.NotifySendMsgErr.WithErr(ret.Err())
	}

	return nil
}

func (e *Events) Close(_ context.Context) error {
	e.subs.Range(func(_, value any) bool {
		if sub, ok := value.(*r.PubSub); ok {
			_ = sub.Close()
		}
		return true
	})
	e.wait.Wait()
	return nil
}

func stamp(msg *notify.SendMsg) ([]byte, error) {
	msg.Timestamp = time.Now().Unix()
	if msg.UUID.IsNil() {
		msg.UUID = uuid.NewV4()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, code.NotifySendMsgErr.WithErr(err)
	}
	return data, nil
}
