package structure

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

type BatchItem struct {
	Index int    `json:"index"`
	SVG   string `json:"svg,omitempty"`
	Code  int    `json:"code"`
	Msg   string `json:"msg,omitempty"`
}

// Batch renders vector requests on a bounded worker pool.
type Batch struct {
	pool *ants.Pool
}

func NewBatch(ctx context.Context, size int) *Batch {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil || pool == nil {
		logger.Errorf(ctx, "failed to create render pool size: %d, err: %+v", size, err)
		pool, _ = ants.NewPool(ants.DefaultAntsPoolSize)
	}
	return &Batch{pool: pool}
}

// Render renders every request in vector mode; the result at i belongs to
// reqs[i]. Per-item failures are reported in the item, not as an error.
func (b *Batch) Render(ctx context.Context, eng Engine, reqs []RenderRequest) ([]*BatchItem, error) {
	out := make([]*BatchItem, len(reqs))
	wg := sync.WaitGroup{}
	for i := range reqs {
		req := reqs[i]
		req.normalize()
		req.SVGMode = true
		idx := i

		wg.Add(1)
		if err := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				out[idx] = item(idx, nil, code.RenderCanceledErr.WithErr(ctx.Err()))
				return
			}
			res, err := Render(ctx, eng, &req, nil)
			out[idx] = item(idx, res, err)
		}); err != nil {
			wg.Done()
			out[idx] = item(idx, nil, code.RenderErr.WithErr(err))
		}
	}
	wg.Wait()
	return out, ctx.Err()
}

func item(idx int, res *Result, err error) *BatchItem {
	it := &BatchItem{Index: idx}
	if err != nil {
		c, msg := code.Parse(err)
		it.Code, it.Msg = c.Int(), msg
		return it
	}
	it.SVG = res.SVG
	return it
}

func (b *Batch) Close() {
	b.pool.Release()
}
