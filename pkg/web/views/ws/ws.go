package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/molecule"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

const maxMessageSize = 1 << 20

type WSAction string

const (
	ActionList     WSAction = "list"
	ActionSnapshot WSAction = "molecule-snapshot"
	ActionPing     WSAction = "ping"
	ActionPong     WSAction = "pong"
)

type WSMsg struct {
	Action WSAction `json:"action"`
	Data   any      `json:"data,omitempty"`
}

// Handle 把收藏变更推送给所有 websocket 客户端
type Handle struct {
	mService  molecule.Service
	wsClient  *melody.Melody
	msgCenter notify.MsgCenter
	// 其它订阅方，例如 sse
	forward []notify.HandleFunc
}

func NewWSHandle(ctx context.Context, mService molecule.Service, msgCenter notify.MsgCenter, forward ...notify.HandleFunc) *Handle {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = maxMessageSize

	h := &Handle{
		mService:  mService,
		wsClient:  wsClient,
		msgCenter: msgCenter,
		forward:   forward,
	}
	if err := msgCenter.Registry(ctx, notify.MoleculeModify, h.OnMoleculeNotify); err != nil {
		logger.Errorf(ctx, "Registry MoleculeModify fail err: %+v", err)
	}
	h.initWebSocket()
	return h
}

func (h *Handle) OnMoleculeNotify(ctx context.Context, msg string) error {
	for _, f := range h.forward {
		if err := f(ctx, msg); err != nil {
			logger.Warnf(ctx, "forward molecule notify err: %+v", err)
		}
	}
	return h.wsClient.Broadcast([]byte(msg))
}

func (h *Handle) Close() error {
	return h.wsClient.Close()
}

func (h *Handle) Molecule(ctx *gin.Context) {
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		"ctx": ctx,
	}); err != nil {
		logger.Errorf(ctx, "Molecule HandleRequestWithKeys err: %+v", err)
	}
}

func (h *Handle) sendSnapshot(ctx context.Context, s *melody.Session) error {
	items, err := h.mService.List(ctx)
	if err != nil {
		return err
	}
	return h.write(s, &WSMsg{Action: ActionSnapshot, Data: items})
}

func (h *Handle) write(s *melody.Session, msg *WSMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Write(data)
}

func (h *Handle) onMessage(ctx context.Context, s *melody.Session, b []byte) error {
	msg := &WSMsg{}
	if err := json.Unmarshal(b, msg); err != nil {
		return code.UnmarshalWSDataErr.WithErr(err)
	}
	switch msg.Action {
	case ActionPing:
		return h.write(s, &WSMsg{Action: ActionPong})
	case ActionList:
		return h.sendSnapshot(ctx, s)
	default:
		return code.UnmarshalWSDataErr.WithMsgf("unknown action: %s", msg.Action)
	}
}

func sessionCtx(s *melody.Session) context.Context {
	if v, ok := s.Get("ctx"); ok {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return context.Background()
}

func (h *Handle) initWebSocket() {
	h.wsClient.HandleClose(func(s *melody.Session, _ int, _ string) error {
		logger.Infof(sessionCtx(s), "molecule ws client close")
		return nil
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		logger.Infof(sessionCtx(s), "molecule ws client disconnected")
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseGoingAway {
			return
		}
		logger.Errorf(sessionCtx(s), "molecule ws error err: %+v", err)
	})

	h.wsClient.HandleConnect(func(s *melody.Session) {
		ctx := sessionCtx(s)
		logger.Infof(ctx, "molecule ws connect")
		if err := h.sendSnapshot(ctx, s); err != nil {
			logger.Errorf(ctx, "molecule ws snapshot err: %+v", err)
		}
	})

	h.wsClient.HandleMessage(func(s *melody.Session, b []byte) {
		ctx := sessionCtx(s)
		if err := h.onMessage(ctx, s, b); err != nil {
			logger.Errorf(ctx, "molecule handle msg err: %+v", err)
		}
	})
}
