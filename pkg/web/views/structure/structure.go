package structure

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/common"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

const renderTimeout = 30 * time.Second

type EngineFunc func(ctx context.Context) (structure.Engine, error)

type Handle struct {
	getEngine EngineFunc
	surfaces  *structure.Surfaces
	batch     *structure.Batch
	maxPixels int
}

func NewStructureHandle(ctx context.Context) *Handle {
	conf := config.Global().Engine
	return newHandle(ctx, structure.GetEngine, conf.RenderPool, conf.MaxDrawPixels)
}

func newHandle(ctx context.Context, getEngine EngineFunc, poolSize, maxPixels int) *Handle {
	return &Handle{
		getEngine: getEngine,
		surfaces:  structure.NewSurfaces(),
		batch:     structure.NewBatch(ctx, poolSize),
		maxPixels: maxPixels,
	}
}

func (h *Handle) Close() {
	h.batch.Close()
}

type RenderResp struct {
	Display *structure.Display `json:"display"`
	// PNG 像素模式下的 data url
	PNG string `json:"png,omitempty"`
}

type BatchReq struct {
	Items []structure.RenderRequest `json:"items" binding:"required"`
}

type BatchResp struct {
	Items []*structure.BatchItem `json:"items"`
}

// view runs one renderer to completion and returns its display. In pixel
// mode the surface is allocated here and handed back for encoding. ctx must
// be the request context: the renderer keeps it past the handler.
func (h *Handle) view(ctx context.Context, req structure.RenderRequest) (*structure.Display, []byte, error) {
	var surfaceID string
	if !req.SVGMode {
		w, hgt := req.Width, req.Height
		if w <= 0 {
			w = structure.DefaultWidth
		}
		if hgt <= 0 {
			hgt = structure.DefaultHeight
		}
		if h.maxPixels > 0 && w*hgt > h.maxPixels {
			return nil, nil, code.ParamErr.WithMsgf("surface %dx%d exceeds %d pixels", w, hgt, h.maxPixels)
		}
		req.Width, req.Height = w, hgt
		surfaceID, _ = h.surfaces.Allocate(w, hgt)
		defer h.surfaces.Release(surfaceID)
		req.SurfaceID = surfaceID
	}

	r := structure.New(ctx, req,
		structure.WithLoader(h.getEngine),
		structure.WithSurfaces(h.surfaces))
	defer r.Close()

	waitCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()
	if err := r.Wait(waitCtx); err != nil {
		return nil, nil, code.RenderCanceledErr.WithErr(err)
	}
	d := r.View()
	if req.SVGMode {
		return d, nil, nil
	}

	img, ok := h.surfaces.Get(surfaceID)
	if !ok {
		return nil, nil, code.SurfaceNotFoundErr
	}
	if d.Kind == structure.DisplayCanvas {
		paintScore(img, d.ScoreLabel)
	} else {
		paintPlaceholder(img, d)
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, nil, code.RenderErr.WithErr(err)
	}
	return d, buf.Bytes(), nil
}

func (h *Handle) SVG(ctx *gin.Context) {
	req := structure.RenderRequest{}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		logger.Errorf(ctx, "parse SVG param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.SVGMode = true
	d, _, err := h.view(ctx.Request.Context(), req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	ctx.Header("X-Render-Kind", string(d.Kind))
	markup := d.SVG
	if d.Kind != structure.DisplaySVG || markup == "" {
		markup = placeholderSVG(d)
	}
	ctx.Data(http.StatusOK, "image/svg+xml", []byte(markup))
}

func (h *Handle) PNG(ctx *gin.Context) {
	req := structure.RenderRequest{}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		logger.Errorf(ctx, "parse PNG param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.SVGMode = false
	d, data, err := h.view(ctx.Request.Context(), req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	ctx.Header("X-Render-Kind", string(d.Kind))
	ctx.Data(http.StatusOK, "image/png", data)
}

func (h *Handle) Render(ctx *gin.Context) {
	req := structure.RenderRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Errorf(ctx, "parse Render param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	d, data, err := h.view(ctx.Request.Context(), req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	resp := &RenderResp{Display: d}
	if data != nil {
		resp.PNG = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	}
	common.ReplyOk(ctx, resp)
}

func (h *Handle) Batch(ctx *gin.Context) {
	req := &BatchReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Batch param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	rctx := ctx.Request.Context()
	eng, err := h.getEngine(rctx)
	if err != nil {
		logger.Errorf(ctx, "Batch get engine err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	items, err := h.batch.Render(rctx, eng, req.Items)
	common.Reply(ctx, err, &BatchResp{Items: items})
}
