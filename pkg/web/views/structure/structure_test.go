package structure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/chem"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chemEngine(context.Context) (structure.Engine, error) {
	return structure.NewChemEngine(chem.New(chem.DefaultTable())), nil
}

func failingEngine(context.Context) (structure.Engine, error) {
	return nil, code.EngineUnavailableErr.WithErr(errors.New("asset missing"))
}

func setup(t *testing.T, get EngineFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := newHandle(context.Background(), get, 2, 1_000_000)
	t.Cleanup(h.Close)

	g := gin.New()
	g.ContextWithFallback = true
	s := g.Group("/api/v1/structure")
	s.GET("/svg", h.SVG)
	s.GET("/png", h.PNG)
	s.POST("/render", h.Render)
	s.POST("/batch", h.Batch)
	return g
}

func do(g *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Msg string `json:"msg"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) *envelope {
	t.Helper()
	e := &envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), e))
	return e
}

func TestSVG(t *testing.T) {
	g := setup(t, chemEngine)

	w := do(g, http.MethodGet, "/api/v1/structure/svg?structure=CCO&width=300&height=240", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "svg", w.Header().Get("X-Render-Kind"))
	assert.Contains(t, w.Body.String(), "width='300px' height='240px'")

	extra := url.QueryEscape(`{"legend":"ethanol"}`)
	w = do(g, http.MethodGet, "/api/v1/structure/svg?structure=CCO&subStructure=O&extra="+extra, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ethanol")
	assert.Contains(t, w.Body.String(), "<ellipse")
}

func TestSVG_Placeholders(t *testing.T) {
	g := setup(t, chemEngine)

	w := do(g, http.MethodGet, "/api/v1/structure/svg?structure="+url.QueryEscape("C1CC<"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid-structure", w.Header().Get("X-Render-Kind"))
	body := w.Body.String()
	assert.Contains(t, body, "Unable to render structure")
	assert.Contains(t, body, "Invalid SMILES format")
	assert.Contains(t, body, "C1CC&lt;")

	g = setup(t, failingEngine)
	w = do(g, http.MethodGet, "/api/v1/structure/svg?structure=CCO", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "engine-error", w.Header().Get("X-Render-Kind"))
	assert.Contains(t, w.Body.String(), "Error loading renderer")
}

func TestSVG_MissingStructure(t *testing.T) {
	g := setup(t, chemEngine)
	w := do(g, http.MethodGet, "/api/v1/structure/svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code.ParamErr.Int(), decode(t, w).Code)
}

func TestPNG(t *testing.T) {
	g := setup(t, chemEngine)

	w := do(g, http.MethodGet, "/api/v1/structure/png?structure=c1ccccc1O&width=120&height=100&score=0.5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "canvas", w.Header().Get("X-Render-Kind"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	w = do(g, http.MethodGet, "/api/v1/structure/png?structure=invalid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid-structure", w.Header().Get("X-Render-Kind"))
	img, err = png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, structure.DefaultWidth, img.Bounds().Dx())

	w = do(g, http.MethodGet, "/api/v1/structure/png?structure=CCO&width=5000&height=5000", nil)
	assert.Equal(t, code.ParamErr.Int(), decode(t, w).Code)
}

func TestRender(t *testing.T) {
	g := setup(t, chemEngine)

	w := do(g, http.MethodPost, "/api/v1/structure/render", map[string]any{
		"structure": "CCO",
		"svgMode":   true,
	})
	e := decode(t, w)
	require.Zero(t, e.Code)
	resp := &RenderResp{}
	require.NoError(t, json.Unmarshal(e.Data, resp))
	assert.Equal(t, structure.DisplaySVG, resp.Display.Kind)
	assert.Equal(t, "ready", resp.Display.State)
	assert.Contains(t, resp.Display.SVG, "<svg")
	assert.Empty(t, resp.PNG)

	w = do(g, http.MethodPost, "/api/v1/structure/render", map[string]any{
		"structure": "CCO",
		"score":     0.875,
	})
	e = decode(t, w)
	require.Zero(t, e.Code)
	resp = &RenderResp{}
	require.NoError(t, json.Unmarshal(e.Data, resp))
	assert.Equal(t, structure.DisplayCanvas, resp.Display.Kind)
	assert.Equal(t, "Score: 0.88", resp.Display.ScoreLabel)
	assert.True(t, strings.HasPrefix(resp.PNG, "data:image/png;base64,"))
}

func TestBatch(t *testing.T) {
	g := setup(t, chemEngine)

	w := do(g, http.MethodPost, "/api/v1/structure/batch", &BatchReq{Items: []structure.RenderRequest{
		{Structure: "CCO"},
		{Structure: "invalid"},
	}})
	e := decode(t, w)
	require.Zero(t, e.Code)
	resp := &BatchResp{}
	require.NoError(t, json.Unmarshal(e.Data, resp))
	require.Len(t, resp.Items, 2)
	assert.Contains(t, resp.Items[0].SVG, "<svg")
	assert.Equal(t, code.InvalidStructureErr.Int(), resp.Items[1].Code)

	g = setup(t, failingEngine)
	w = do(g, http.MethodPost, "/api/v1/structure/batch", &BatchReq{Items: []structure.RenderRequest{{Structure: "CCO"}}})
	assert.Equal(t, code.EngineUnavailableErr.Int(), decode(t, w).Code)
}

func TestRequestContextDetached(t *testing.T) {
	var calls, ginCtx atomic.Int32
	g := setup(t, func(ctx context.Context) (structure.Engine, error) {
		calls.Add(1)
		if ctx.Value(gin.ContextKey) != nil {
			ginCtx.Add(1)
		}
		return chemEngine(ctx)
	})

	do(g, http.MethodGet, "/api/v1/structure/svg?structure=CCO", nil)
	do(g, http.MethodGet, "/api/v1/structure/png?structure=CCO", nil)
	do(g, http.MethodPost, "/api/v1/structure/render", map[string]any{"structure": "CCO"})
	do(g, http.MethodPost, "/api/v1/structure/batch", &BatchReq{Items: []structure.RenderRequest{{Structure: "CCO"}}})

	assert.EqualValues(t, 4, calls.Load())
	assert.Zero(t, ginCtx.Load())
}
