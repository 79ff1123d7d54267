package structure

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/utils"
)

type Option func(*Renderer)

// WithLoader swaps the process-wide engine accessor, mostly for tests.
func WithLoader(get func(ctx context.Context) (Engine, error)) Option {
	return func(r *Renderer) {
		r.getEngine = get
	}
}

func WithSurfaces(s *Surfaces) Option {
	return func(r *Renderer) {
		r.surfaces = s
	}
}

// Renderer is one structure view: it waits for the shared engine, then
// renders its current request either to SVG markup or onto a registered
// pixel surface.
type Renderer struct {
	mu        sync.Mutex
	ctx       context.Context
	getEngine func(ctx context.Context) (Engine, error)
	surfaces  *Surfaces

	req     RenderRequest
	state   State
	engine  Engine
	loadErr error

	// pixel mode: first Update after ready draws exactly once
	drawn bool
	// vector mode: cached markup, invalidated by Update
	svg      string
	svgValid bool
	lastErr  error

	// delayed renders: only the newest scheduled one runs
	gen     uint64
	timer   *time.Timer
	pending int
	idle    chan struct{}
	closed  bool

	ready chan struct{}
}

// New enters loading and resolves the engine in the background. Once ready
// the initial render runs; its failure is logged and leaves the state
// ready.
func New(ctx context.Context, req RenderRequest, opts ...Option) *Renderer {
	req.normalize()
	r := &Renderer{
		ctx:       context.WithoutCancel(ctx),
		getEngine: GetEngine,
		surfaces:  DefaultSurfaces(),
		req:       req,
		state:     StateUninitialized,
		ready:     make(chan struct{}),
		idle:      make(chan struct{}),
	}
	close(r.idle)
	for _, opt := range opts {
		opt(r)
	}

	r.state = StateLoading
	utils.SafelyGo(func() {
		eng, err := r.getEngine(ctx)
		r.onEngine(eng, err)
	}, func(err error) {
		r.onEngine(nil, code.EngineUnavailableErr.WithErr(err))
	})
	return r
}

func (r *Renderer) onEngine(eng Engine, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.terminal() {
		return
	}
	defer close(r.ready)

	if err != nil {
		if !errors.Is(err, code.EngineUnavailableErr) {
			err = code.EngineUnavailableErr.WithErr(err)
		}
		r.state = StateError
		r.loadErr = err
		logger.Errorf(r.ctx, "structure renderer engine unavailable err: %+v", err)
		return
	}
	r.engine = eng
	r.state = StateReady
	if r.closed {
		return
	}
	if err := utils.SafelyRun(r.draw); err != nil {
		logger.Errorf(r.ctx, "initial structure render panic: %+v", err)
	}
}

// Update replaces the request. In pixel mode the first Update after ready
// draws once, later ones redraw only when a render input changed. In
// vector mode a change drops the cached markup and View recomputes it.
func (r *Renderer) Update(req RenderRequest) {
	req.normalize()
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.req
	r.req = req
	if r.state != StateReady || r.closed {
		return
	}

	changed := inputsChanged(&prev, &req)
	if req.SVGMode {
		if changed {
			r.svgValid = false
		}
		return
	}

	if !r.drawn {
		r.drawn = true
		r.draw()
		return
	}
	if changed {
		r.draw()
	}
}

func inputsChanged(a, b *RenderRequest) bool {
	return a.Structure != b.Structure ||
		a.SVGMode != b.SVGMode ||
		a.SubStructure != b.SubStructure ||
		a.Width != b.Width ||
		a.Height != b.Height ||
		!reflect.DeepEqual(a.Extra, b.Extra)
}

// draw runs the render now or after the request's delay. Caller holds mu.
func (r *Renderer) draw() {
	r.gen++
	gen := r.gen
	if r.timer != nil && r.timer.Stop() {
		r.settle()
	}
	r.timer = nil

	d := r.req.delay()
	if d <= 0 {
		r.renderNow()
		return
	}

	if r.pending == 0 {
		r.idle = make(chan struct{})
	}
	r.pending++
	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		defer r.settle()
		if r.closed || gen != r.gen {
			return
		}
		r.timer = nil
		r.renderNow()
	})
}

func (r *Renderer) settle() {
	r.pending--
	if r.pending == 0 {
		close(r.idle)
	}
}

// renderNow runs the render operation on the current request. Caller
// holds mu.
func (r *Renderer) renderNow() {
	req := r.req
	res, err := Render(r.ctx, r.engine, &req, r.surfaces)
	r.lastErr = err
	if err != nil {
		logger.Warnf(r.ctx, "render structure %q err: %+v", req.Structure, err)
	}
	if req.SVGMode {
		r.svgValid = true
		r.svg = ""
		if res != nil {
			r.svg = res.SVG
		}
	}
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastErr is the error of the most recent render, nil after a success.
func (r *Renderer) LastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateError {
		return r.loadErr
	}
	return r.lastErr
}

// View returns what to display for the current state and request.
func (r *Renderer) View() *Display {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := r.req
	d := &Display{
		State:  r.state.String(),
		Width:  req.Width,
		Height: req.Height,
		Input:  req.Structure,
	}
	switch r.state {
	case StateError:
		d.Kind = DisplayEngineError
		d.Title = "Error loading renderer"
		d.Detail = "Structure engine failed to initialize"
		return d
	case StateReady:
	default:
		d.Kind = DisplayLoading
		d.Title = "Loading renderer..."
		d.Detail = "Initializing structure engine"
		return d
	}

	if !r.validStructure(req.Structure) {
		d.Kind = DisplayInvalidStructure
		d.Title = "Unable to render structure"
		d.Detail = "Invalid SMILES format"
		return d
	}

	if req.SVGMode {
		if !r.svgValid {
			r.renderNow()
		}
		d.Kind = DisplaySVG
		d.SVG = r.svg
		return d
	}
	d.Kind = DisplayCanvas
	d.SurfaceID = req.SurfaceID
	d.ScoreLabel = scoreLabel(req.Score)
	return d
}

func (r *Renderer) validStructure(smiles string) bool {
	m, err := r.engine.GetMol(smiles)
	if err != nil {
		if m != nil {
			m.Delete()
		}
		return false
	}
	m.Delete()
	return true
}

// Wait blocks until the renderer is ready or failed and no delayed render
// is outstanding.
func (r *Renderer) Wait(ctx context.Context) error {
	select {
	case <-r.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	for {
		r.mu.Lock()
		if r.pending == 0 {
			r.mu.Unlock()
			return nil
		}
		idle := r.idle
		r.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close drops any scheduled render. The renderer must not be used after.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil && r.timer.Stop() {
		r.settle()
	}
	r.timer = nil
}
