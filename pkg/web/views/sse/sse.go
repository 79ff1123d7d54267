package sse

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

const bufferSize = 16

// Handle 以 server-sent events 推送收藏变更，供不方便使用 websocket 的客户端订阅
type Handle struct {
	mu     sync.Mutex
	subs   map[chan string]struct{}
	closed bool
}

func NewSSEHandle() *Handle {
	return &Handle{subs: map[chan string]struct{}{}}
}

// Publish 投递给所有订阅者，缓冲已满的订阅者丢弃本条
func (h *Handle) Publish(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			logger.Warnf(ctx, "sse subscriber buffer full, drop msg")
		}
	}
	return nil
}

func (h *Handle) subscribe() (chan string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan string, bufferSize)
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *Handle) unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Handle) Notify(ctx *gin.Context) {
	ch, ok := h.subscribe()
	if !ok {
		ctx.Status(http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(ch)

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.SSEvent("ready", "")
	ctx.Writer.Flush()

	ctx.Stream(func(_ io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			ctx.SSEvent(string(notify.MoleculeModify), msg)
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}
